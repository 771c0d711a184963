// Package client talks to the mymind backend.
//
// It provides:
//  1. The Client interface: the remote item store (FetchAll, Insert, Update,
//     Delete, DeleteMany), the profile path (GetProfile, UpdateProfile) and the
//     auth calls (Register, GetSalt, Login).
//  2. GRPCClient, which injects the access token on every call, refreshes it
//     once when the server reports it expired and maps status codes to
//     sentinel errors.
//  3. InitDatabase, which opens the local sqlite file and applies the embedded
//     migrations.
//
// Callers match failures with errors.Is against ErrUnavailable,
// ErrUnauthorized, common.ErrorNotFound and friends.
package client
