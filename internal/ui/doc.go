// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The top-level views are cycled with tab:
//  1. [SearchView] : Query the catalog by text or #genre
//  2. [ResultsView] : Toggle tracks into the cart with space
//  3. [CartView] : Remove (d), clear (c) or save (s) the cart as a playlist
//  4. [PlaylistsView] : Browse the signed-in user's playlists
//
// Selecting a playlist opens [DetailView], where tracks can be removed (x), the playlist renamed (e)
// through [EditView], or deleted (D). Deletion always passes through [ConfirmDeleteView].
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine calls run as commands; notices and progress updates flow through channels published by the PlaylistEngine
// and are shown in the status line.
package ui
