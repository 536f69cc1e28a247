package fault

import (
	"errors"
	"fmt"
)

// Sentinels returned by prompt adapters to express user intent.
var (
	ErrCanceled = errors.New("canceled by user")
	ErrDeclined = errors.New("declined by user")
)

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	KindInvalidName          Kind = "invalid_name"
	KindCollisionDeclined    Kind = "collision_declined"
	KindCanceled             Kind = "canceled"
	KindNetwork              Kind = "network"
	KindAssetNotFound        Kind = "asset_not_found"
	KindArchiveDecode        Kind = "archive_decode"
	KindConfigParseRecovered Kind = "config_parse_recovered"
	KindFileSystem           Kind = "filesystem"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind Kind
	Path string // optional: relevant file path
	URL  string // optional: relevant remote URL
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.URL != "" {
		base += fmt.Sprintf(" (url=%s)", e.URL)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether any *OpError in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *OpError in err's chain, or "".
func KindOf(err error) Kind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

// FileSystem wraps a filesystem failure at path.
func FileSystem(op, path string, err error) *OpError {
	return &OpError{Op: op, Kind: KindFileSystem, Path: path, Err: err}
}

// Network wraps a transport or status failure against url.
func Network(op, url string, err error) *OpError {
	return &OpError{Op: op, Kind: KindNetwork, URL: url, Err: err}
}
