// Package fetch downloads pretrained model files.
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/paths"
)

// Fetcher downloads files over HTTP with retries, falling back to curl
// when the built-in client fails. A file already present at its
// destination is never re-downloaded.
type Fetcher struct {
	client *retryablehttp.Client
	runner execx.Runner
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. The runner is used only for the curl
// fallback.
func NewFetcher(runner execx.Runner, logger *slog.Logger) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil // retry noise goes through our own logger

	return &Fetcher{
		client: client,
		runner: runner,
		logger: logger,
	}
}

// Download fetches url into dest. If dest already exists the download is
// skipped. The file is written to a temp sibling and renamed into place so
// an interrupted transfer never leaves a truncated model behind.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		f.logger.Info("model already present, skipping", "file", filepath.Base(dest))
		return nil
	}

	if err := paths.EnsureDir(filepath.Dir(dest), paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(dest))
	}

	f.logger.Info("downloading", "file", filepath.Base(dest), "url", url)

	if err := f.httpDownload(ctx, url, dest); err != nil {
		f.logger.Warn("download failed, retrying with curl", "error", err)
		return f.curlDownload(ctx, url, dest)
	}
	return nil
}

func (f *Fetcher) httpDownload(ctx context.Context, url, dest string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("fetching %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".vcinstall-download-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing download")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing download")
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return errors.Wrap(err, "moving download into place")
	}

	f.logger.Debug("download complete", "file", filepath.Base(dest), "bytes", n)
	return nil
}

// curlDownload is the single fallback after the HTTP client has exhausted
// its retries. No further retry happens after curl fails. curl writes to
// the same temp-sibling scheme as the HTTP path, so an interrupted
// transfer never leaves a partial file at dest for the skip check to
// accept.
func (f *Fetcher) curlDownload(ctx context.Context, url, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".vcinstall-download-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	cmd := execx.Cmd{Name: "curl", Args: []string{"-L", "--fail", "-o", tmpName, url}}
	if err := f.runner.Run(ctx, cmd); err != nil {
		return errors.Wrapf(err, "curl fallback for %s", url)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return errors.Wrap(err, "moving download into place")
	}
	return nil
}
