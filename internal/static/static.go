// Package static serves files from a document root for every path that is not
// a chat route.
package static

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const DefaultIndex = "index.html"

type Handler struct {
	fs    http.FileSystem
	index string
}

// New serves files under root. Directory paths, "/" included, resolve to
// their index document; directories are never listed. A directory requested
// without a trailing slash is redirected to the slash form first.
func New(root, index string) *Handler {
	if index == "" {
		index = DefaultIndex
	}
	return &Handler{fs: http.Dir(root), index: index}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	name = path.Clean(name)

	f, info, err := h.open(name)
	if err == nil && info.IsDir() {
		f.Close()
		if !strings.HasSuffix(r.URL.Path, "/") {
			redirectToDir(w, r, name)
			return
		}
		f, info, err = h.open(path.Join(name, h.index))
		if err == nil && info.IsDir() {
			f.Close()
			err = fs.ErrNotExist
		}
	}
	if err != nil {
		writeFileError(w, err)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) open(name string) (http.File, fs.FileInfo, error) {
	f, err := h.fs.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

func redirectToDir(w http.ResponseWriter, r *http.Request, name string) {
	target := name + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func writeFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}
