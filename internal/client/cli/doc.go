// Package cli provides the interactive PhoenixLocker command-line client.
//
// It wires configuration, the local profile store, API services and an
// interactive REPL. Typical flow: prompt for credentials, start a background
// connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout
//   - Deposit, per-cadence withdrawals and the confirmed emergency exit
//   - Balance, rate and history queries for any address
//   - Operator commands: reconcile and snapshot export
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
