// Package tasks keeps the signed-in user's playlist collection in step with the backend.
//
// # Operations
//
// [PlaylistEngine] exposes one method per user intent:
//
//  1. [PlaylistEngine.CreateFromCart] : create, attach each cart track in order, clear the cart, refresh
//  2. [PlaylistEngine.Edit] / [PlaylistEngine.Rename] : single update call, then refresh
//  3. [PlaylistEngine.Delete] : gated by a [Confirmer]; refresh and drop the selection on success
//  4. [PlaylistEngine.DetachTrack] / [PlaylistEngine.AttachTrack] : single call, then reload that playlist only
//
// A playlist that another session deleted is dropped from the collection, along
// with any selection of it, without an error.
//
// Failures leave the in-memory collection as it was. Every outcome the user must
// see goes to the [Notifier]; errors are also returned.
//
// # Refresh
//
// The playlist list endpoint does not embed tracks, so [PlaylistEngine.Refresh]
// fetches each playlist's tracks sequentially from a queue. Each refresh takes a
// generation number and results from a superseded refresh are dropped.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on the optional channel from [EngineOpts].
// Sends use select with default so reporting never blocks.
//
// # Bulk Export
//
// [PlaylistEngine.BulkExport] fetches tracks at a bounded rate and renders files
// through a worker pool, writing an export_manifest.json summary.
package tasks
