// Package naming derives the two identifiers a mod is known by from the free-form
// name a user types: a lowercase slug used for folders and file names, and a
// capitalized symbol used as the Lua table name.
package naming
