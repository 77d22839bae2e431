// Package repositories implements SQLite persistence for the client's durable state.
//
// Key Implementations:
//   - [SettingRepository] : key/value rows implementing models.Repository[*models.Setting]
//   - [SessionCacheAdapter] : adapts settings to the session store's key/value contract
//
// The session store keeps its bearer token and cached identity (user number, nickname,
// profile image) here so a signed-in session survives restarts.
package repositories
