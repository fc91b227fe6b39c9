// Package server exposes the latest location availability over HTTP.
//
// Endpoints:
//
//   - GET /api/status: JSON array of every known location, ordered by key
//   - GET /api/sse: Server-Sent Events stream of location updates
//
// The server only reads from a [store.Store]; it never talks to the exam
// registration service, so running it alongside the watcher does not add
// remote calls.
package server
