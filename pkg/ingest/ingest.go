// Package ingest acquires the raw dataset from its remote location into the
// staging area. The transfer itself is delegated to a plain HTTP client; any
// failure aborts the run, there is no partial staging.
package ingest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type Fetcher struct {
	client *http.Client
	fs     afero.Fs
}

func NewFetcher(fs afero.Fs) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 5 * time.Minute},
		fs:     fs,
	}
}

// Fetch downloads the document at the given URL into the destination path.
// The destination is written only after the transfer succeeds in full.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build the download request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download the dataset from '%s'", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("failed to download the dataset from '%s', status code %d", url, resp.StatusCode)
	}

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read the dataset body")
	}

	if err := afero.WriteFile(f.fs, dest, contents, 0o644); err != nil {
		return errors.Wrapf(err, "failed to stage the dataset at '%s'", dest)
	}

	return nil
}
