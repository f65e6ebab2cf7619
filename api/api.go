// Package api embeds the OpenAPI contract describing the intake form
// submissions.
package api

import _ "embed"

// Contract is the OpenAPI 3 document for the intake endpoints.
//
//go:embed intake.yaml
var Contract []byte

// ContractName is the file name the contract is served under.
const ContractName = "intake.yaml"
