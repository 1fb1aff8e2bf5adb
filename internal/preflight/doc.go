// Package preflight provides readiness checks for the provider endpoints
// and filesystem paths that dubline depends on.
//
// These checks run in two contexts:
//   - The "dubline doctor" command runs RunAll and prints every result.
//   - The "dubline dub" command runs the local checks (directories, voices)
//     before starting a job so a doomed run fails before any provider call.
//
// Provider checks only run for providers listed in the translation or
// synthesis provider order.
package preflight
