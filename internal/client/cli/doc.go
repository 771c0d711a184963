// Package cli provides the interactive mymind command-line client.
//
// It wires configuration, the local sqlite database, the remote client and
// the item services into a small REPL. Typical flow: prompt for credentials,
// start a background connectivity watcher, then run user commands.
//
// Key features:
//   - Register / Login / Logout
//   - Save links and triage them through the review queue
//   - Browse the feed, spaces and trash
//   - Move, retitle and tag items
//   - Optional app lock, unlocked once per session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
