/*
Package domain contains the core models of the math session controller.

It defines the session, its dirty flags, the fixed preference table with its
persisted key=value; form, the closed set of commands a host can dispatch, key
events, and the errors shared across packages. The package is pure: no I/O,
no persistence, no engine calls.

# Key Entities

  - Session: raw input, canonical markup, focus, speech and braille artifacts.
  - Flags: speech/braille staleness plus the edge-triggered speak-now flag.
  - Preferences: eight preferences with closed domains and defaults.
  - Command: SubmitInput, SetPreference, KeyPress, RuleFileLoaded.
*/
package domain
