// Package show provides the domain types shared by every cuesheet package.
//
// This package contains type definitions and the error taxonomy only. All
// other internal packages import show; show imports nothing internal.
//
// Key design constraints:
//   - Sequence numbers are dense and 1-based within a script
//   - A nil CurrentCueID means "no position set"
//   - All JSON tags use snake_case
//   - Text entering the system is NFC normalized (see NormalizeText)
package show
