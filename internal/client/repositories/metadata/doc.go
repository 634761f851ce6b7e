// Package metadata stores small opaque values (the sealed session and its
// key salt) in the metadata table of the client's SQLite database.
package metadata
