package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/**
var staticFS embed.FS

// FS returns an http.FileSystem for the embedded landing site.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Should never happen with a well-formed embed.
		// Expose the unrooted FS on error.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
