// Package models defines the request, job and asset types shared by the acquisition pipeline.
//
// The package contains two categories of types:
//
// 1. Request-scoped values, rebuilt for every submission and never persisted
//   - [JobRequest] : Client payload naming a provider, URL and quality
//   - [Job] : Public record returned to the client
//   - [StrategyResult] : Output of the single strategy that resolved a job
//
// 2. Process-scoped values with a managed lifetime
//   - [CachedAsset] : File committed to the downloads directory, owned by the asset cache until its TTL passes
//   - [TrackMetadata] : oEmbed description of a source URL, memoized in SQLite
//
// [NormalizeQuality] and [ParseProvider] are total over their inputs so validation never depends on the network.
package models
