// Package userdir resolves opaque user identifiers to display profiles owned
// by a remote service.
//
// The package exposes a narrow Directory interface with two implementations
// meant to be stacked:
//
//   - HTTPClient: the transport, one bounded-timeout HTTP call per lookup
//   - CachedDirectory: the deduplicating, cached proxy production code uses
//
// CachedDirectory is backed by a sturdyc client with missing-record storage:
// concurrent lookups for one id share a single upstream call, batch lookups
// only fetch the uncached remainder, and ids the service does not know are
// remembered so they stop generating traffic. Profiles are near-static, so
// the proxy TTL defaults to a year.
//
// Callers must tolerate holes: an unresolvable id is simply absent from the
// batch result (or nil from Resolve), never an error. Errors mean the
// directory itself was unreachable, and the feed aggregator treats that as a
// degraded render, not a failure.
package userdir
