// Package form owns the state of one mounted form and drives its submission.
//
// A Controller is created per form instance (one HTTP request or one terminal
// session). It seeds an ordered State from defaults, binds submitted input
// through the field descriptors, validates before submitting, invokes exactly
// one Action, and navigates when the action reports a record. The loading
// flag is cleared once per Submit call by a deferred cleanup that becomes a
// no-op after the controller is disposed.
package form
