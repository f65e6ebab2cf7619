package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/components/*.tmpl templates/themes/*/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets
var embeddedAssets embed.FS

const (
	StylesheetName = "intake.css"
	LoaderIcon     = "icons/loader.svg"
	LogoIcon       = "icons/logo-full.svg"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the stylesheet and icons so callers can serve them.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
