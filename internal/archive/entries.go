package archive

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/kcd-modkit/modkit/internal/fault"
)

// Entry is one record of an archive: a directory marker or a file.
type Entry struct {
	Name  string // slash-separated, cleaned path inside the archive
	IsDir bool
	Mode  fs.FileMode
	Size  uint64

	file *zip.File
}

// Open returns the entry's content. Directories have none.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.IsDir || e.file == nil {
		return nil, fmt.Errorf("%s is a directory", e.Name)
	}
	return e.file.Open()
}

// Root returns the first path component of the entry.
func (e Entry) Root() string {
	root, _, _ := strings.Cut(e.Name, "/")
	return root
}

// Entries yields the records of zr in archive order. Names are normalized to
// forward slashes; a name that would escape the extraction root yields an
// archive_decode error and ends the sequence. The sequence is finite and is
// meant to be consumed once.
func Entries(zr *zip.Reader) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for _, f := range zr.File {
			name := strings.ReplaceAll(f.Name, "\\", "/")
			isDir := strings.HasSuffix(name, "/") || f.FileInfo().IsDir()

			clean := path.Clean(strings.TrimSuffix(name, "/"))
			if clean == "." || clean == "" {
				continue
			}
			if !filepath.IsLocal(filepath.FromSlash(clean)) || strings.HasPrefix(name, "/") {
				yield(Entry{}, &fault.OpError{
					Op:   "archive.entry",
					Kind: fault.KindArchiveDecode,
					Err:  fmt.Errorf("entry %q escapes the destination directory", f.Name),
				})
				return
			}

			e := Entry{
				Name:  clean,
				IsDir: isDir,
				Mode:  f.Mode(),
				Size:  f.UncompressedSize64,
				file:  f,
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}
