package defs

import (
	"embed"
	"io/fs"
)

//go:embed content
var contentFS embed.FS

// Content returns the definition bundle shipped with the binary.
func Content() fs.FS {
	sub, err := fs.Sub(contentFS, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadDefault loads the bundled definitions.
func LoadDefault(opts LoadOptions) (*Store, error) {
	return Load(Content(), opts)
}
