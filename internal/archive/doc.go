// Package archive downloads a zip archive and extracts it into a directory,
// preserving the archive's own layout. The archive's top-level folder becomes a
// subfolder of the destination; nothing is stripped.
//
// Entries are consumed as a pull-based sequence (see Entries), one entry's
// content at a time. A failed extraction leaves whatever was already written in
// place; the destination is expected to be disposable.
package archive
