// Package app is the composition root of td2chat.
//
// Run loads config.toml (plus the legacy config.cfg secrets and API key
// environment variables), opens the rotating log file and prefs.toml, then
// builds the long-lived services: resources, the scenery name masker, one
// translator per configured backend, the dispatcher, metrics and the
// optional Stacjownik driver warner.
//
// It then starts
//
//   - the feed, which tails each open log on its own goroutine,
//   - a single consumer that applies feed events to the state store,
//   - the directory watch that opens the newest log and any log that
//     becomes active later,
//   - an optional GitHub release check and /metrics listener,
//
// and finally hands the store and feed to the Bubble Tea UI, which runs
// until the user quits or the context is cancelled.
//
// Settings precedence is command-line flags, then prefs.toml, then
// config.toml.
package app
