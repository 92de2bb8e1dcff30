package sketch

import (
	"encoding/json"

	"src.protosketch.dev/pkg/errutil"
	"src.protosketch.dev/pkg/parse"
)

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
}

// An auxiliary struct for converting errors with only a message to JSON.
type simpleErrorInJSON struct {
	Message string `json:"message"`
}

// Converts the error into JSON. Each constituent of an error built with
// errutil.Multi becomes one element.
func errorToJSON(name string, err error) []byte {
	var errArr []any
	for _, e := range errutil.Unpack(err) {
		if pe, ok := e.(parse.ErrorWithPosition); ok {
			r := pe.Range()
			line, col := pe.Position()
			errArr = append(errArr, errorInJSON{name, r.From, r.To, line, col, message(pe)})
		} else {
			errArr = append(errArr, simpleErrorInJSON{e.Error()})
		}
	}
	jsonError, errMarshal := json.Marshal(errArr)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
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
