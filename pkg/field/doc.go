// Package field defines the declarative field descriptors intake forms are
// built from. A Descriptor names one input, carries its kind tag and the
// kind-specific options, and is dispatched by renderers (HTML, terminal) to
// the matching control. Attributes that do not apply to a kind are ignored.
package field
