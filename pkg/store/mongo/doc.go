// Package mongo implements the persistent artist graph store on MongoDB.
//
// Two collections are used:
//
//	artists       one document per artist, unique on name_lower
//	similarities  one document per directed edge, unique on (source_id, target_id)
//
// Artist IDs are UUID strings assigned on first insert and kept on every
// later upsert. Upserts are keyed on the unique indexes, so concurrent
// builds writing the same artists and edges converge on one document each.
//
// [Provider] connects lazily and pings the server on every Acquire, which
// is how a graph build detects that it has to run without the store.
package mongo
