package catalog

import (
	"embed"
	"io/fs"
)

//go:embed problems/*.yaml
var builtinFS embed.FS

// Builtin returns the problem pack compiled into the binary. It is the
// fallback catalog when no pack directory is configured.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "problems")
	if err != nil {
		// embed guarantees the directory exists
		panic(err)
	}
	return sub
}
