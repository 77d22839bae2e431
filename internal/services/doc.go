// Package services implements the HTTP client for the Listify backend.
//
// # Envelope
//
// Every backend response is normalized into a [models.Envelope] of the form
// {success, message, data}. [APIService.Do] only fails for transport problems;
// a reachable server that reports failure yields an envelope with Success=false,
// which [Decode] turns into an [*EnvelopeError].
//
// # Authentication
//
// The bearer token is supplied by an [oauth2.TokenSource]. The session store
// implements [Identity] so requests carry both the Authorization header and the
// X-User-No header the backend uses to authorize playlist writes.
//
// # Endpoints
//
// [ListifyClient] wraps the catalog, auth, playlist and profile endpoints with
// typed methods. No timeouts or retries are applied beyond what the
// [http.Client] passed in is configured with.
package services
