// Package site serves the embedded landing site.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrGenerate = errors.New("docs site generation failed")
	ErrServe    = errors.New("docs site serve failed")
)

// Register attaches the embedded landing site routes to mux. The site
// handles / and therefore catches every path no other route claims.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/", files)

}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests and serves the embedded landing site
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	files := http.FileServer(FS())
	files.ServeHTTP(w, r)
}
