package rules

import (
	"embed"
	"io/fs"
)

//go:embed rulepacks/*.json
var bundled embed.FS

// Bundled returns the rule packs compiled into the binary, rooted so that
// names look like "US-2025.json".
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "rulepacks")
	if err != nil {
		panic(err)
	}
	return sub
}
