// Package models defines domain entities and persistence interfaces for the Listify client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from the Listify backend
//   - [Track] : a catalog item keyed by its source URL
//   - [Playlist] : playlist metadata with a point-in-time track projection
//   - [User] : the signed-in account
//   - [Envelope] : the uniform success/message/data wrapper of every response
//
// 2. Persistent Entities: Database-backed models with lifecycle management
//   - [Setting] : a key/value row in local durable storage
//
// Persistent entities implement the Model interface providing IDs, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
