package archive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/kcd-modkit/modkit/internal/fault"
)

// Fetcher downloads and extracts archives.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	progress   io.Writer
	tempDir    string
	logger     *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithProgress reports download percentage to w when the server sends a
// Content-Length.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// WithTempDir sets where the download is spooled. Defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(f *Fetcher) {
		f.tempDir = dir
	}
}

// WithLogger sets the logger for per-entry debug output.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		userAgent:  "modkit",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAndExtract downloads the zip archive at url and extracts it into
// destDir. A non-success status fails before any byte is processed.
func (f *Fetcher) FetchAndExtract(ctx context.Context, url, destDir string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fault.Network("archive.fetch", url, fmt.Errorf("creating download request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fault.Network("archive.fetch", url, fmt.Errorf("downloading: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fault.Network("archive.fetch", url, fmt.Errorf("download returned status %d", resp.StatusCode))
	}

	spool, err := os.CreateTemp(f.tempDir, "modkit-archive-*.zip")
	if err != nil {
		return nil, fault.FileSystem("archive.spool", f.tempDir, err)
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	hasher := blake3.New()
	size, err := f.copyWithProgress(io.MultiWriter(spool, hasher), resp.Body, resp.ContentLength)
	if err != nil {
		var oe *fault.OpError
		if !errors.As(err, &oe) {
			err = fault.Network("archive.fetch", url, err)
		}
		return nil, err
	}

	f.logger.Debug("archive downloaded",
		zap.String("url", url),
		zap.Int64("bytes", size),
		zap.String("spool", spool.Name()),
	)

	result, err := Extract(spool, size, destDir)
	if result != nil {
		result.Digest = "blake3:" + hex.EncodeToString(hasher.Sum(nil))
	}
	if err != nil {
		return result, fmt.Errorf("extracting %s: %w", url, err)
	}

	f.logger.Debug("archive extracted",
		zap.String("dest", destDir),
		zap.Int("dirs", len(result.Dirs)),
		zap.Int("files", len(result.Files)),
		zap.Strings("roots", result.Roots),
	)
	return result, nil
}

// copyWithProgress streams src into dst, printing a percentage when the total
// is known and a progress writer is configured.
func (f *Fetcher) copyWithProgress(dst io.Writer, src io.Reader, total int64) (int64, error) {
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return downloaded, fault.FileSystem("archive.spool", "", fmt.Errorf("writing download: %w", writeErr))
			}
			downloaded += int64(n)
			if f.progress != nil && total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(f.progress, "\rDownloading... %d%%", percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return downloaded, fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	if f.progress != nil && total > 0 {
		fmt.Fprintln(f.progress)
	}
	return downloaded, nil
}
