package testutil

import (
	"os"
	"path/filepath"
)

// TempDir returns a temporary directory for testing that has symlinks
// resolved. The directory is removed when the test finishes.
func TempDir(t TempDirer) string {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		panic(err)
	}
	return dir
}

// InTempDir is like TempDir, but also changes into the directory, and changes
// back to the working directory when the test finishes. It returns the
// temporary directory.
func InTempDir(t TempDirer) string {
	dir := TempDir(t)
	pwd := Must1(os.Getwd())
	Must(os.Chdir(dir))
	t.Cleanup(func() { Must(os.Chdir(pwd)) })
	return dir
}

// Dir describes the layout of a directory. The keys of the map represent
// filenames. Each value is either a string (for the content of a regular file
// with permission 0644), a []byte (same, for binary content), or another Dir
// (for a subdirectory).
type Dir map[string]any

// ApplyDir creates the given filesystem layout in the current directory.
func ApplyDir(dir Dir) {
	ApplyDirIn(dir, "")
}

// ApplyDirIn creates the given filesystem layout in a given directory.
func ApplyDirIn(dir Dir, root string) {
	for name, file := range dir {
		path := filepath.Join(root, name)
		switch file := file.(type) {
		case string:
			MustWriteFile(path, []byte(file))
		case []byte:
			MustWriteFile(path, file)
		case Dir:
			MustMkdirAll(path)
			ApplyDirIn(file, path)
		default:
			panic(file)
		}
	}
}
