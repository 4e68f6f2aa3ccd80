package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/pages/*.tpl templates/partials/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

//go:embed content/home.md
var homeMarkdown []byte

// StylesheetName is the base stylesheet shipped with the renderer.
const StylesheetName = "alohomora.css"

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the stylesheets so the server can publish them.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// HomeMarkdown returns a copy of the home page source.
func HomeMarkdown() []byte {
	return append([]byte(nil), homeMarkdown...)
}
