// Package physicians provides the physician directory behind the primary
// physician select, search helpers, and a net/http handler that returns JSON
// options for form inputs.
//
// The handler responds to GET and HEAD requests and supports query and limit
// parameters. The backing data is the embedded list under data/physicians.yaml.
package physicians
