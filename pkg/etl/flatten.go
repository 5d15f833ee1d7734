package etl

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/starling-data/starling/pkg/dataset"
	"github.com/starling-data/starling/pkg/flatten"
	"github.com/starling-data/starling/pkg/logger"
	"github.com/starling-data/starling/pkg/scheduler"
)

// FlattenOperator unrolls the nested orders document into the single wide
// table every downstream transform reads from.
type FlattenOperator struct {
	logger     logger.Logger
	fs         afero.Fs
	stagingDir string
}

func NewFlattenOperator(log logger.Logger, fs afero.Fs, stagingDir string) *FlattenOperator {
	return &FlattenOperator{
		logger:     log,
		fs:         fs,
		stagingDir: stagingDir,
	}
}

func (o *FlattenOperator) Run(ctx context.Context, ti *scheduler.TaskInstance) error {
	doc, err := dataset.Load(o.fs, datasetPath(o.stagingDir))
	if err != nil {
		return errors.Wrap(err, "failed to load the staged dataset")
	}

	flat, err := flatten.Flatten(doc)
	if err != nil {
		return errors.Wrap(err, "failed to flatten the dataset")
	}

	o.logger.Debugf("flattened %d orders into %d rows", len(doc.Orders), flat.Len())

	if err := flat.WriteCSV(o.fs, flattenedPath(o.stagingDir)); err != nil {
		return errors.Wrap(err, "failed to stage the flattened dataset")
	}

	return nil
}
