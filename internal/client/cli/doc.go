// Package cli provides the interactive POS terminal.
//
// It wires configuration, the local store, the server-of-record client, the
// catalog sync engines, the POS session and the queue reconciler, then runs
// a REPL until the cashier exits. Connectivity is probed in the background;
// sales taken while offline are queued and delivered on reconnect.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
