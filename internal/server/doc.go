// Package server provides HTTP routing, middleware and an in-memory Listify backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method patterns ("GET /music") on an [http.ServeMux],
// so path values like {id} are available through [http.Request.PathValue].
//
// # Middleware
//
//   - [RequestID] tags each request with a uuid in the X-Request-Id header
//   - [Logging] records method, path, status and duration
//   - [Recover] converts panics into a 500 failure envelope
//   - [Bearer] guards a route with an access token and stores the user number in the context
//
// # Backend
//
// [Backend] implements the music, auth, playlist and user endpoints against
// in-memory maps. Every response is a {success, message, data} envelope.
// Playlist writes require both a bearer token and an X-User-No header naming
// the token holder, and only the owner may modify a playlist.
//
// [Backend.FailOn] scripts failures for tests: the next n requests matching a
// method and path prefix receive a 500 envelope.
//
// `listify serve` runs the backend with [DemoCatalog] and the [SeedDemo] account.
package server
