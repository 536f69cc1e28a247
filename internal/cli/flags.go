package cli

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/kcd-modkit/modkit/internal/archive"
	"github.com/kcd-modkit/modkit/internal/branding"
	"github.com/kcd-modkit/modkit/internal/config"
	"github.com/kcd-modkit/modkit/internal/release"
)

// networkFlags are the remote-access overrides shared by commands that talk
// to GitHub. Unset flags keep the configured value.
type networkFlags struct {
	apiBase string
	mirror  string
	timeout time.Duration
}

func (f *networkFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.apiBase, "api-base", "", "GitHub API base URL (default from config)")
	flagSet.StringVar(&f.mirror, "mirror", "", "Download assets from this mirror instead of GitHub")
	flagSet.DurationVar(&f.timeout, "timeout", 0, "Abort network work after this long (0 disables; unset keeps the configured http_timeout)")
}

// apply overlays the flags that were set onto s.
func (f *networkFlags) apply(flagSet *pflag.FlagSet, s *config.Settings) {
	if flagSet.Changed("api-base") {
		s.APIBase = f.apiBase
	}
	if flagSet.Changed("mirror") {
		s.Mirror = f.mirror
	}
	if flagSet.Changed("timeout") {
		s.HTTPTimeout = f.timeout
	}
}

func releaseClient(s config.Settings) *release.Client {
	return release.New(
		release.WithAPIBase(s.APIBase),
		release.WithMirror(s.Mirror),
		release.WithToken(s.GitHubToken),
		release.WithUserAgent(branding.UserAgent(buildVersion)),
	)
}

func archiveFetcher(opts ...archive.Option) *archive.Fetcher {
	opts = append([]archive.Option{
		archive.WithUserAgent(branding.UserAgent(buildVersion)),
		archive.WithLogger(logger),
	}, opts...)
	return archive.NewFetcher(opts...)
}

// commandContext cancels on SIGINT and, when timeout is positive, after timeout.
func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
