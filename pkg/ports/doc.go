/*
Package ports defines the driven ports (interfaces) of the math session controller.

These interfaces decouple the controller from the accessibility engine, the
display surface, and the storage medium of persisted preferences.

# Key Interfaces

  - AccessibilityEngine: notation conversion, markup registration, speech, braille, navigation.
  - Typesetter: visual rendering of canonical markup and of error messages.
  - Effects: speech output, highlighting, and focus changes.
  - PreferenceStore: persistence of the serialized preference blob.
*/
package ports
