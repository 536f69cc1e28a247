// Package workspace writes VS Code multi-root workspace files and checks them
// against an embedded JSON schema before they are handed to the editor.
package workspace
