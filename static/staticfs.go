// Package static bundles the stylesheet served under /static/.
package static

import (
	"embed"
	"net/http"
	"os"
)

//go:embed *.css
var assets embed.FS

// Handler serves the bundled assets, or the on-disk dir when it exists so
// stylesheet edits show up without a rebuild.
func Handler(dir string) http.Handler {
	fsys := http.FS(assets)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		fsys = http.Dir(dir)
	}
	files := http.FileServer(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, r)
	})
}
