package fault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestOpErrorMessage(t *testing.T) {
	err := &OpError{
		Op:   "release.latest",
		Kind: KindNetwork,
		URL:  "https://api.github.com/repos/a/b/releases/latest",
		Err:  errors.New("status 500"),
	}

	msg := err.Error()
	for _, want := range []string{"release.latest", "network", "url=https://api.github.com", "status 500"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}

func TestOpErrorNil(t *testing.T) {
	var err *OpError
	if err.Error() != "<nil>" {
		t.Errorf("nil Error() = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("nil Unwrap() should be nil")
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	base := FileSystem("settings.write", "/tmp/x", errors.New("disk full"))
	wrapped := fmt.Errorf("merging mod settings: %w", base)

	if !IsKind(wrapped, KindFileSystem) {
		t.Error("IsKind should see through fmt.Errorf wrapping")
	}
	if IsKind(wrapped, KindNetwork) {
		t.Error("IsKind matched the wrong kind")
	}
	if got := KindOf(wrapped); got != KindFileSystem {
		t.Errorf("KindOf = %q, want %q", got, KindFileSystem)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

func TestUnwrapReachesSentinel(t *testing.T) {
	err := &OpError{Op: "scaffold.name", Kind: KindCanceled, Err: ErrCanceled}
	if !errors.Is(err, ErrCanceled) {
		t.Error("errors.Is should reach ErrCanceled")
	}
}
