// Package cached makes a single-pass source traversable any number of
// times, by any number of goroutines, without running the source twice.
//
// Wrap a source.Source with Wrap (or Lazy, or Decorate) and take one Cursor
// per traversal from the resulting Iterable. Every element the source
// produces is cached. A cursor that is behind reads from the cache without
// locking; a cursor at the front pulls the next element while every other
// cursor at the front waits for it. The source is pulled at most once per
// element and never concurrently.
//
// The end of the source, and its failure, are cached too. Every cursor,
// including ones created later, sees source.Done or the same *SourceError
// at the same position. A failed source is never retried.
//
// AsyncIterable is the same thing for a source.AsyncSource. Waiting for the
// lock and pulling from the source both take a context, so a cursor can give
// up without damaging the shared state.
//
// Nothing is ever evicted: the cache grows with the number of elements
// produced, for as long as the Iterable is reachable.
package cached
