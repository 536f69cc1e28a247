package archive

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/kcd-modkit/modkit/internal/fault"
	"github.com/kcd-modkit/modkit/internal/platform"
)

// Result lists what an extraction created.
type Result struct {
	Dirs   []string // absolute paths of directory entries
	Files  []string // absolute paths of file entries
	Roots  []string // distinct top-level names, in archive order
	Bytes  int64    // archive size
	Digest string   // "blake3:<hex>" of the archive, set by FetchAndExtract

	topLevelFile bool
}

// RootDir returns the archive's single top-level directory, or "" when the
// archive has several top-level entries or a top-level file.
func (r *Result) RootDir() string {
	if len(r.Roots) != 1 || r.topLevelFile {
		return ""
	}
	return r.Roots[0]
}

// Extract unpacks the zip archive in r into destDir.
func Extract(r io.ReaderAt, size int64, destDir string) (*Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &fault.OpError{Op: "archive.open", Kind: fault.KindArchiveDecode, Err: err}
	}

	if err := os.MkdirAll(destDir, platform.DirPerm); err != nil {
		return nil, fault.FileSystem("archive.mkdir", destDir, err)
	}

	result := &Result{Bytes: size}
	seenRoots := make(map[string]bool)

	for entry, err := range Entries(zr) {
		if err != nil {
			return result, err
		}

		if root := entry.Root(); !seenRoots[root] {
			seenRoots[root] = true
			result.Roots = append(result.Roots, root)
		}

		target := filepath.Join(destDir, filepath.FromSlash(entry.Name))

		if entry.IsDir {
			if err := os.MkdirAll(target, platform.DirPerm); err != nil {
				return result, fault.FileSystem("archive.mkdir", target, err)
			}
			result.Dirs = append(result.Dirs, target)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), platform.DirPerm); err != nil {
			return result, fault.FileSystem("archive.mkdir", filepath.Dir(target), err)
		}
		if err := writeEntry(entry, target); err != nil {
			return result, err
		}
		result.Files = append(result.Files, target)
		if entry.Name == entry.Root() {
			result.topLevelFile = true
		}
	}

	return result, nil
}

// writeEntry copies one file entry to target, separating decode failures
// (corrupt data, bad checksum) from write failures.
func writeEntry(entry Entry, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return &fault.OpError{Op: "archive.read", Kind: fault.KindArchiveDecode, Path: entry.Name, Err: err}
	}
	defer rc.Close()

	perm := platform.FilePerm
	if entry.Mode.Perm()&0o111 != 0 {
		perm = 0o755
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fault.FileSystem("archive.create", target, err)
	}

	src := &readErrReader{r: rc}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		if src.err != nil {
			return &fault.OpError{Op: "archive.read", Kind: fault.KindArchiveDecode, Path: entry.Name, Err: src.err}
		}
		return fault.FileSystem("archive.write", target, err)
	}
	if err := out.Close(); err != nil {
		return fault.FileSystem("archive.write", target, err)
	}
	return nil
}

// readErrReader remembers the first non-EOF read error.
type readErrReader struct {
	r   io.Reader
	err error
}

func (r *readErrReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
