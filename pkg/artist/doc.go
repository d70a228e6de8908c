// Package artist defines the data model shared by the similarity graph engine,
// its metadata sources and its persistent store.
//
// An [Artist] is identified by its name, compared case-insensitively through
// [Key]. A [GraphData] value is the result of one graph build: the resolved
// nodes, the similarity edges discovered between them and the center artist
// the build started from.
//
// All types carry both json and bson tags so the same values can be returned
// by the HTTP boundary and persisted by the MongoDB store.
package artist
