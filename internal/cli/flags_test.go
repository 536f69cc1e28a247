package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/kcd-modkit/modkit/internal/config"
)

func TestNetworkFlagsApply(t *testing.T) {
	base := config.Settings{
		APIBase:     "https://api.github.com",
		Mirror:      "",
		HTTPTimeout: 10 * time.Minute,
	}

	tests := []struct {
		name        string
		args        []string
		wantTimeout time.Duration
		wantMirror  string
	}{
		{"unset keeps config", nil, 10 * time.Minute, ""},
		{"explicit zero disables", []string{"--timeout", "0"}, 0, ""},
		{"explicit value", []string{"--timeout", "30s"}, 30 * time.Second, ""},
		{"mirror only", []string{"--mirror", "https://mirror.example.com"}, 10 * time.Minute, "https://mirror.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags networkFlags
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.AddFlags(flagSet)
			if err := flagSet.Parse(tt.args); err != nil {
				t.Fatalf("Parse(%v) error: %v", tt.args, err)
			}

			s := base
			flags.apply(flagSet, &s)
			if s.HTTPTimeout != tt.wantTimeout {
				t.Errorf("HTTPTimeout = %v, want %v", s.HTTPTimeout, tt.wantTimeout)
			}
			if s.Mirror != tt.wantMirror {
				t.Errorf("Mirror = %q, want %q", s.Mirror, tt.wantMirror)
			}
			if s.APIBase != base.APIBase {
				t.Errorf("APIBase = %q, want unchanged", s.APIBase)
			}
		})
	}
}
