// Package exitcodes defines the standard exit codes used by the adapter CLI.
//
// * Success (0): Used when all executed tests pass
// * TestFailure (1): Used when one or more tests fail or error
// * RuntimeErr (2): Used for configuration and runtime failures
package exitcodes

const (
	Success     = 0 // All tests pass
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime or configuration errors
)
