// Package main hosts the dubline CLI entrypoint and command graph.
//
// The Cobra-based command tree runs dubbing jobs in the foreground, lists the
// voice catalog and its cross-provider fallbacks, inspects job history from
// the SQLite job store, checks provider readiness, and scaffolds
// configuration. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
