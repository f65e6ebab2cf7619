// Package validation evaluates form values against the request schemas of the
// intake OpenAPI contract.
package validation
