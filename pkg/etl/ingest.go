package etl

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/starling-data/starling/pkg/ingest"
	"github.com/starling-data/starling/pkg/logger"
	"github.com/starling-data/starling/pkg/scheduler"
)

type fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// IngestOperator downloads the raw orders dataset into the staging directory.
type IngestOperator struct {
	logger     logger.Logger
	fs         afero.Fs
	fetcher    fetcher
	sourceURL  string
	stagingDir string
}

func NewIngestOperator(log logger.Logger, fs afero.Fs, sourceURL, stagingDir string) *IngestOperator {
	return &IngestOperator{
		logger:     log,
		fs:         fs,
		fetcher:    ingest.NewFetcher(fs),
		sourceURL:  sourceURL,
		stagingDir: stagingDir,
	}
}

func (o *IngestOperator) Run(ctx context.Context, ti *scheduler.TaskInstance) error {
	if err := o.fs.MkdirAll(o.stagingDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create the staging directory")
	}

	dest := datasetPath(o.stagingDir)
	o.logger.Debugf("fetching the dataset from '%s' into '%s'", o.sourceURL, dest)

	if err := o.fetcher.Fetch(ctx, o.sourceURL, dest); err != nil {
		return errors.Wrap(err, "failed to fetch the dataset")
	}

	return nil
}
