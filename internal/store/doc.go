// Package store persists the task collection as a single JSON document.
//
// Two backends implement Store: a JSON file guarded by an advisory flock and
// written through a temp file + rename, and a SQLite database holding the
// document in one row. Neither validates the document's shape; the endpoint
// stores whatever valid JSON it is given.
package store
