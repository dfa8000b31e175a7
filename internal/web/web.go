// Package web holds the map page templates and static assets, embedded into the binary.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates static
var embedded embed.FS

// Assets is the pair of file systems the server renders and serves from.
type Assets struct {
	Templates fs.FS
	Static    fs.FS
}

// Load returns the embedded assets, or the templates/ and static/ folders
// under dir when dir is set, so pages can be edited without a rebuild.
func Load(dir string) (Assets, error) {
	if dir != "" {
		for _, sub := range []string{"templates", "static"} {
			st, err := os.Stat(filepath.Join(dir, sub))
			if err != nil {
				return Assets{}, fmt.Errorf("web dir: %w", err)
			}
			if !st.IsDir() {
				return Assets{}, fmt.Errorf("web dir: %s is not a directory", filepath.Join(dir, sub))
			}
		}
		return Assets{
			Templates: os.DirFS(filepath.Join(dir, "templates")),
			Static:    os.DirFS(filepath.Join(dir, "static")),
		}, nil
	}

	templates, err := fs.Sub(embedded, "templates")
	if err != nil {
		return Assets{}, err
	}
	static, err := fs.Sub(embedded, "static")
	if err != nil {
		return Assets{}, err
	}
	return Assets{Templates: templates, Static: static}, nil
}

// NewViews builds the Fiber view engine over templates. With reload set,
// templates are parsed again on every render.
func NewViews(templates fs.FS, reload bool) *html.Engine {
	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.Reload(reload)
	return engine
}
