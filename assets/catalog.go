// Package assets resolves asset paths and loads models and the logo off the
// main thread.
package assets

import (
	"path/filepath"
	"strings"

	"grid-editor/config"
	"grid-editor/math"
)

// Entry is a loadable model and where its group is placed.
type Entry struct {
	Label    string
	Path     string // slash-separated, relative to the asset root
	Position math.Vec3
}

// Catalog converts the configured model list.
func Catalog(models []config.ModelEntry) []Entry {
	out := make([]Entry, len(models))
	for i, m := range models {
		out[i] = Entry{
			Label:    m.Label,
			Path:     m.Path,
			Position: math.NewVec3(m.Position[0], m.Position[1], m.Position[2]),
		}
	}
	return out
}

// Resolve maps a web-style asset path ("/TESTPI_02.gltf") into root.
// Paths cannot climb out of root.
func Resolve(root, assetPath string) string {
	clean := filepath.Clean("/" + strings.TrimLeft(assetPath, "/"))
	return filepath.Join(root, filepath.FromSlash(clean))
}
