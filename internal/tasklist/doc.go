// Package tasklist holds the client's in-memory task collection and applies
// mutations optimistically.
//
// Every mutation computes the next collection, installs it locally, and then
// pushes the entire collection through a Backend. Mutations are serialized
// per List. A failed save is retried with exponential backoff and full
// jitter; if it still fails the List either restores the previous collection
// (rollback) or keeps the local change (keep), depending on configuration.
package tasklist
