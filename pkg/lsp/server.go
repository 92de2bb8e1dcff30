package lsp

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.protosketch.dev/pkg/diag"
	"src.protosketch.dev/pkg/errutil"
	"src.protosketch.dev/pkg/parse"
	"src.protosketch.dev/pkg/proto"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/formatting": s.formatting,

		"shutdown": noop,
		"exit":     exit,
		// Required by spec.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, conn.Close()
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unsupported method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously, so
// diagnostics are published in the order of the changes.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			DocumentFormattingProvider: true,
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) formatting(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DocumentFormattingParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri := params.TextDocument.URI
	content, ok := s.content[uri]
	if !ok {
		return []lsp.TextEdit{}, nil
	}
	p, err := parseDocument(uri, content)
	if err != nil {
		// Documents with errors are left alone; the errors are already shown
		// as diagnostics.
		return []lsp.TextEdit{}, nil
	}
	formatted := proto.Format(p)
	if formatted == content {
		return []lsp.TextEdit{}, nil
	}
	return []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{},
			End:   lspPositionFromIdx(content, len(content)),
		},
		NewText: formatted,
	}}, nil
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
	if err != nil {
		logger.Println("publishing diagnostics:", err)
	}
}

func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	_, err := parseDocument(uri, content)
	diags := []lsp.Diagnostic{}
	for _, e := range errutil.Unpack(err) {
		d := lsp.Diagnostic{Severity: lsp.Error, Source: "protosketch"}
		if pe, ok := e.(parse.ErrorWithPosition); ok {
			d.Range = lspRangeFromRange(content, pe)
			d.Message = message(pe)
		} else {
			d.Message = e.Error()
		}
		diags = append(diags, d)
	}
	return diags
}

func message(err parse.ErrorWithPosition) string {
	switch err := err.(type) {
	case *parse.LexError:
		return err.Message
	case *parse.SyntaxError:
		return err.Message
	}
	return err.Error()
}

// Parses a document, resolving relative picture paths against its directory.
// Only "\r\n" sequences are rewritten, which keeps every line and column
// unchanged.
func parseDocument(uri lsp.DocumentURI, content string) (*proto.Protocol, error) {
	code := strings.ReplaceAll(content, "\r\n", "\n")
	return parse.Parse(parse.Source{Name: string(uri), Code: code}, parse.Config{Dir: uriDir(uri)})
}

func uriDir(uri lsp.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return filepath.Dir(filepath.FromSlash(u.Path))
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
// Line breaks are "\n" and "\r\n"; a lone "\r" is whitespace to the lexer and
// counts as an ordinary character.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r' && strings.HasPrefix(s[i+1:], "\n"):
			// Part of a \r\n sequence; the \n ends the line
		case r == '\n':
			p.Line++
			p.Character = 0
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
	}
	f(len(s), p)
}
