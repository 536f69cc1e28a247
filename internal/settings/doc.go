// Package settings merges proposed keys into editor configuration documents
// such as .vscode/settings.json. Sequences are unioned, everything else is
// replaced, and keys the patch does not mention are never touched.
//
// Existing documents are read as JSONC, the dialect VS Code writes. A document
// that cannot be parsed at all is treated as empty and the merge proceeds; the
// caller is told through Outcome.Recovered because the original content is lost
// on the next write.
package settings
