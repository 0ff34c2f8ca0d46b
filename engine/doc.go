// Package engine defines the boundary between the harness and a biometric
// template engine.
//
// An engine is initialized once per phase and then called with decoded media
// or templates. Per-record problems are reported through model.ReturnStatus
// and are never Go errors; model.NotImplemented declines a whole phase.
//
// # Registry
//
// Engines register a Factory under a name so the CLI and re-executed worker
// processes can construct them:
//
//	func init() { engine.Register("null", New) }
//
//	e, err := engine.New("null")
package engine
