package etl

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/starling-data/starling/pkg/frame"
	"github.com/starling-data/starling/pkg/logger"
	"github.com/starling-data/starling/pkg/scheduler"
	"github.com/starling-data/starling/pkg/warehouse"
)

type connectionGetter interface {
	GetWarehouse(name string) (warehouse.Client, warehouse.Dialect, error)
}

// LoadOperator bulk-upserts a staged table into the warehouse. Re-running a
// load leaves already present rows untouched, so the pipeline can be replayed
// end to end without duplicating data.
type LoadOperator struct {
	logger      logger.Logger
	fs          afero.Fs
	connections connectionGetter
	connection  string
	stagingDir  string
}

func NewLoadOperator(log logger.Logger, fs afero.Fs, connections connectionGetter, connection, stagingDir string) *LoadOperator {
	return &LoadOperator{
		logger:      log,
		fs:          fs,
		connections: connections,
		connection:  connection,
		stagingDir:  stagingDir,
	}
}

func (o *LoadOperator) Run(ctx context.Context, ti *scheduler.TaskInstance) error {
	client, dialect, err := o.connections.GetWarehouse(o.connection)
	if err != nil {
		return errors.Wrapf(err, "failed to get the connection '%s'", o.connection)
	}

	table := tableForAsset(ti.Asset.Name)
	staged, err := frame.ReadCSV(o.fs, tablePath(o.stagingDir, table))
	if err != nil {
		return errors.Wrapf(err, "failed to read the staged '%s' table", table)
	}

	query, err := warehouse.BuildUpsertQuery(dialect, table, staged.Columns, staged.Rows)
	if err != nil {
		return errors.Wrapf(err, "failed to build the upsert query for '%s'", table)
	}

	if query == "" {
		o.logger.Warnf("the staged '%s' table is empty, nothing to load", table)
		return nil
	}

	o.logger.Debugf("loading %d rows into '%s'", staged.Len(), table)

	if err := client.RunQueryWithoutResult(ctx, query); err != nil {
		return errors.Wrapf(err, "failed to load '%s'", table)
	}

	return nil
}
