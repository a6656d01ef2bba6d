// Package web holds the HTML templates and static assets compiled into the binary.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var funcs = template.FuncMap{
	// pathescape keeps a value inside one path segment (/, ? and # are escaped).
	"pathescape": url.PathEscape,
}

// Templates parses every page and partial. The index page is registered as "index".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// StaticFS is rooted at the static directory so files are served as /static/<name>.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
