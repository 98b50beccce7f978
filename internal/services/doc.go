// Package services implements the upstream collaborators the acquisition pipeline talks to.
//
// Nothing in this package decides which collaborator runs first; ordering and failure aggregation
// belong to the tasks package. Each client here does one request shape and reports failures as
// wrapped errors.
//
// # Capture Client
//
// [SpotifyCaptureClient] implements [MediaClient]. It exchanges the web player's sp_dc cookie for a
// short-lived bearer token and wraps it in a [CaptureSession]. The session carries an
// [oauth2.StaticTokenSource]-backed HTTP client, so metadata and audio requests are authorized without
// touching headers by hand. [CaptureSession.Valid] reports expiry so callers can re-authenticate.
//
// Only track URLs can be streamed. [SpotifyEntity] splits a share URL into kind and id.
//
// # Lookup Mirrors
//
// [PrimaryLookup] and [SecondaryLookup] implement [LookupClient] against unauthenticated third-party
// APIs. Both decode a loose [LookupResponse] and call [LookupResponse.Hydrate], which picks the first
// usable audio URL out of the shapes these services are known to return.
//
// # Metadata
//
// [OEmbedClient] implements [MetadataClient]. [NormalizeTitle] and [SearchQuery] turn the oEmbed
// payload into a display title and a search query for the extractor.
//
// # Extractor
//
// [YTDLPExtractor] implements [Extractor] by running yt-dlp as a subprocess. Output lands at
// "<dir>/<stem>.<ext>"; [ResolveOutput] walks [ExtractorExtensions] to find it.
//
// # Error Handling
//
// Clients wrap the sentinels from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx upstream status
//   - [shared.ErrMissingCredentials] : no capture cookie configured
//   - [shared.ErrInvalidCredentials] : the cookie was rejected or produced an anonymous token
//   - [shared.ErrInvalidInput] : the source URL cannot be handled by this client
//   - [shared.ErrExtractorUnavailable] : yt-dlp is not installed
//   - [shared.ErrTimeout] : the extractor exceeded its deadline
package services
