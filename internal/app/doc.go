// Package app is the composition root for the leadglass application.
//
// Run wires everything together in one place:
//
//  1. Load configuration from ~/.config/leadglass/config.toml
//  2. Open the structured log file and the on-disk cache
//  3. Create the backend REST client (its readiness probe starts immediately)
//  4. Create the shared state.Store and the sync controller
//  5. Kick off an initial sync of all datasets plus a periodic refresher
//  6. Start the TUI and block until the user exits or the context cancels
//
// Fatal errors (bad config, unwritable log or cache directory) are returned
// from Run. Sync failures after startup are recoverable: the controller logs
// them and records them on the affected dataset, and the UI keeps showing
// whatever data it already has.
//
// Data flows one way. The sync controller writes records into state.Store;
// the UI reads immutable snapshots from the store on its own tick and never
// talks to the backend directly except for user-initiated mutations.
package app
