// Package similarity builds bounded artist similarity graphs.
//
// Starting from a seed artist, a [Builder] walks the "similar artists"
// relation of a [MetadataSource] breadth-first up to a maximum hop depth and
// returns the artists it could resolve together with the weighted edges
// between them.
//
// # Modes
//
// [Builder.Build] runs in full mode when the persistent store can be
// acquired: artists and computed neighbour lists are read from the store
// first and newly fetched ones are written back. Candidates of one expansion
// are resolved concurrently in batches of [Options.Concurrency]. Full mode
// caps the depth at [MaxDepthFull].
//
// If the store cannot be acquired, or any store operation fails during the
// traversal, the full-mode attempt is discarded and the whole traversal is
// re-run in degraded mode: API only, sequential, at most
// [Options.DegradedSimilarLimit] candidates per artist and depth capped at
// [MaxDepthDegraded]. [Builder.BuildDegraded] runs degraded mode directly.
//
// # Failures
//
// A lookup that fails for one artist drops that artist and the build goes on
// with a smaller graph. Only two failures are returned to the caller: the
// seed artist itself could not be resolved in any mode (ARTIST_NOT_FOUND),
// or the metadata source rejected its configuration, such as an invalid API
// key (see errors.IsFatal).
//
// # Caching
//
// Every build owns a fresh [RequestCache], so each distinct artist name is
// looked up at most once per build and nothing is shared between concurrent
// builds. The persistent store and the metadata client's response cache are
// the longer-lived tiers below it.
//
// # Progress
//
// A context prepared with [WithProgress] receives a [Progress] snapshot each
// time the traversal adds an artist.
package similarity
