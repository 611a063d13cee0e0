// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI switches between three views with tab:
//  1. [RegimentList] : Browse regiments by week, with per-piece max BPM and a sparkline, and mark a piece active
//  2. [RegimentForm] : Enter a date and piece names, then save a new regiment
//  3. [LiveBPM] : Display the latest BPM sample pushed by the backend
//
// Every backend call runs as a [tea.Cmd] against a [services.Service] and its result comes back through the Msg union.
// Failures are wrapped in [shared.Failure] and rendered as a single line per view, except a failed save, which blocks the
// form with an alert until dismissed.
//
// Keyboard navigation uses vim-style bindings (j/k, a, r, q) outside the form, with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
