// Package server exposes the acquisition pipeline over HTTP.
//
// # Routes
//
//	POST    /api/tools/download        → resolve a job, 200 {"job":...} | 400 | 502 {"error":...}
//	GET     /api/tools/downloads/{id}  → stream a cached asset, 200 | 404 | 410
//	OPTIONS any route                  → 204 with CORS headers
//
// Unmatched paths answer 404 "Route not found"; unexpected failures answer 500 "Internal server error".
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. [NewRouter] installs
// [Recover], [RequestLogger], [CORS] and [RateLimit] in that order.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [DownloadsHandler] uses it for the asset route and the bare prefix.
//
// # Streaming
//
// [DownloadsHandler] checks the file on disk for every request. Missing files are evicted from the cache
// and reported as 410, so a second request for the same id is a 404. Once the status line is sent, a
// read failure aborts the connection with [http.ErrAbortHandler] rather than writing an error body.
package server
