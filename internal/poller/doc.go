// Package poller provides the sequential, rate-limited HTTP plumbing that
// drives slot checks.
//
// The main components are:
//
//   - [Client]: HTTP client that serializes calls and pauses after each one
//   - [Response]: Result of a single call, with errors captured in-band
//   - [Scheduler]: Repeats a full check at a fixed interval until cancelled
//
// Nothing in this package knows about exams; the registration API is built
// on top of [Client] in the hsa package.
package poller
