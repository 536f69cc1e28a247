// Package scaffold creates a Kingdom Come: Deliverance Lua mod workspace. It
// powers the "modkit create" command: the Engine normalizes the mod name,
// writes the skeleton from templates, fetches the companion library from its
// latest GitHub release, and merges Lua language server settings into both
// the library's and the mod's .vscode folders.
//
// The Engine is a small state machine. Every run ends in Done, Aborted or
// Failed; an Aborted run has written nothing.
package scaffold
