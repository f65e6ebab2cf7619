// Package template defines the template engine seam the HTML renderer uses.
// The gotemplate subpackage provides the pongo2-backed implementation.
package template
