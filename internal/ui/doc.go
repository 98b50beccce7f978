// Package ui renders command-line output with lipgloss styles.
//
// A [Palette] maps output roles (title, success, error, warning, help) onto [lipgloss.Style]
// values; [Styles] returns the colored default and [PlainPalette] an unstyled one for pipes and tests.
//
// Renderers:
//   - [Job] prints a resolved job with its download reference and, for local assets, the file on disk and time to expiry
//   - [Progress] colors one [tasks.ProgressUpdate] by phase
//   - [Failure] expands a [tasks.ChainError] into one line per attempted strategy, followed by its hint
//
// [WatchModel] is a bubbletea program that follows a single job live, with a spinner on the
// running step. Quitting cancels the job.
package ui
