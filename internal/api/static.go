package api

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// rendererHandler serves the browser renderer's build output. Paths that
// name no file fall through to index.html so client-side routes such as
// /canvas/{id} load the app.
func rendererHandler(fsys fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "."
		}
		if _, err := fs.Stat(fsys, name); errors.Is(err, fs.ErrNotExist) {
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}
