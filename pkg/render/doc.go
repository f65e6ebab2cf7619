// Package render defines the renderer contract shared by the HTML and JSON
// form renderers, plus helpers for hidden fields and inline error mapping.
package render
