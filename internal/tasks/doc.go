// Package tasks resolves media jobs into playable audio.
//
// # Jobs
//
// [JobBuilder.Build] is the single entry point. It validates the provider and URL with [Validate],
// normalizes the quality, mints a job id and dispatches:
//
//  1. Spotify : the [Chain] built by [NewSpotifyChain]
//     - [CaptureStrategy] streams audio through a cookie-authenticated session (only with a cookie)
//     - [LookupStrategy] asks each third-party lookup mirror for a hosted URL
//     - [SearchStrategy] searches YouTube by oEmbed title and downloads with yt-dlp
//
//  2. YouTube : [YoutubeLinkBuilder] returns a proxy link; nothing runs over the network
//
// # Fallback
//
// [Chain.Run] stops at the first strategy that returns a download URL. When every strategy fails it
// returns a [*ChainError] listing each reason in attempt order, optionally followed by a hint.
//
// # Local Assets
//
// Strategies that write bytes go through a [Committer]. It streams into "<dir>/<id>.<ext>", renames
// the file to its final name (copying across filesystems when rename cannot) and registers it in the
// asset cache. Commit is the only path that registers an asset.
//
// # Progress Reporting
//
// A [Request] may carry a progress channel. [ProgressUpdate] values are sent with select/default so a
// slow or absent reader never blocks a job.
package tasks
