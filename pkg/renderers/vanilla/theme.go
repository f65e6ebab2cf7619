package vanilla

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/renderers/vanilla/components"
)

// DefaultThemeName is the built-in theme.
const DefaultThemeName = "carepulse"

// Asset keys resolved through RendererConfig.AssetURL.
const (
	AssetStylesheet = "stylesheet"
	AssetLoader     = "loader"
	AssetLogo       = "logo"
)

// DefaultManifest describes the built-in dark theme plus its light and
// high-contrast variants.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#24AE7C",
			"surface": "#131619",
			"input":   "#1A1D21",
			"border":  "#363A3D",
			"text":    "#E8E9E9",
			"error":   "#F37877",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: StylesheetName,
				AssetLoader:     LoaderIcon,
				AssetLogo:       LogoIcon,
			},
		},
		Variants: map[string]theme.Variant{
			"light": {
				Tokens: map[string]string{
					"surface": "#FFFFFF",
					"input":   "#F5F7FA",
					"border":  "#D0D5DD",
					"text":    "#131619",
				},
			},
			"contrast": {
				Tokens: map[string]string{
					"brand":  "#FFD600",
					"border": "#FFFFFF",
				},
				Templates: map[string]string{
					components.PartialCheckbox: "templates/themes/contrast/checkbox.tmpl",
					components.PartialRadio:    "templates/themes/contrast/radio.tmpl",
				},
			},
		},
	}
}

// Selector resolves theme selections from manifests held in memory.
type Selector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector indexes manifests by name. Empty names passed to Select fall
// back to defaultTheme and defaultVariant.
func NewSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) *Selector {
	index := make(map[string]*theme.Manifest, len(manifests))
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			continue
		}
		index[manifest.Name] = manifest
	}
	if defaultTheme == "" {
		defaultTheme = DefaultThemeName
	}
	return &Selector{manifests: index, defaultTheme: defaultTheme, defaultVariant: defaultVariant}
}

// Select returns the manifest and variant to render with.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("vanilla theme: unknown theme %q", name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("vanilla theme: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection: built-in partials overlaid with the
// manifest and variant templates, merged tokens, CSS variables derived from
// the tokens, and an asset resolver.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Partials: components.DefaultPartials(),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	if selection == nil || selection.Manifest == nil {
		cfg.AssetURL = func(string) string { return "" }
		return cfg
	}

	manifest := selection.Manifest
	cfg.Theme = selection.Theme
	cfg.Variant = selection.Variant

	maps.Copy(cfg.Partials, manifest.Templates)
	maps.Copy(cfg.Tokens, manifest.Tokens)
	files := maps.Clone(manifest.Assets.Files)
	if files == nil {
		files = map[string]string{}
	}
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		maps.Copy(cfg.Partials, variant.Templates)
		maps.Copy(cfg.Tokens, variant.Tokens)
		maps.Copy(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
