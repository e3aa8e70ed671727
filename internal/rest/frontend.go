package rest

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FrontendHandler serves a built single page application from dir. Paths that
// do not match a file fall back to the index page so client side routes work.
type FrontendHandler struct {
	dir   string
	index string
	files http.Handler
}

func NewFrontendHandler(dir, index string) *FrontendHandler {
	return &FrontendHandler{
		dir:   dir,
		index: index,
		files: http.FileServer(http.Dir(dir)),
	}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}
	cleaned := path.Clean("/" + r.URL.Path)
	info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(cleaned)))
	if err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, h.index))
		return
	}
	h.files.ServeHTTP(w, r)
}
