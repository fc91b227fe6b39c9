// Package store keeps the latest availability of every checked location and
// fans updates out to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [LocationStatus]: Storage representation of one location check
//
// The store is safe for concurrent access. Subscribers receive updates via
// channels with non-blocking sends (slow subscribers miss updates rather than
// stall the check loop that feeds the store).
package store
