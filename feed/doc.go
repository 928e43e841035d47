// Package feed holds the entity models, the denormalized payload records,
// and the Aggregator that turns one into the other.
//
// # Rendering pipeline
//
// The aggregator works on entity graphs the store already loaded; it never
// queries on its own. A render runs three phases:
//
//  1. Collect: walk every root entity and everything nested under it
//     (comments with children, likes, reactions, one level of reshare) and
//     gather the distinct author ids in stable first-seen order.
//  2. Resolve: one batched user-directory lookup for the whole id set. Holes
//     are tolerated; an unreachable directory degrades the render to null
//     profiles instead of failing it.
//  3. Build: render each entity into a plain record. Nested previews keep the
//     first N entries of the collection's natural order, reshares nest at
//     most one level, and thread children recurse behind a depth guard.
//
// # Viewer state
//
// isReacted carries the type of the first reaction authored by the viewer,
// or null. With no viewer the field is null without scanning, which is what
// lets the anonymous payload be cached once for everyone.
//
// # Payload shape
//
// Record field names mirror the existing API wire contract (a deliberate mix
// of snake_case and camelCase). Whether a comment record carries likes_count
// or a children tree is an explicit RenderOptions choice at the call site.
package feed
