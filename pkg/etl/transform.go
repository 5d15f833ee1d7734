package etl

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/starling-data/starling/pkg/frame"
	"github.com/starling-data/starling/pkg/logger"
	"github.com/starling-data/starling/pkg/scheduler"
	"github.com/starling-data/starling/pkg/transform"
)

// TransformOperator builds one dimension, bridge, or fact table from the
// staged flattened dataset and writes it back to the staging directory. The
// product and bridge transforms additionally read the staged dimensions they
// resolve their foreign keys against.
type TransformOperator struct {
	logger     logger.Logger
	fs         afero.Fs
	stagingDir string
}

func NewTransformOperator(log logger.Logger, fs afero.Fs, stagingDir string) *TransformOperator {
	return &TransformOperator{
		logger:     log,
		fs:         fs,
		stagingDir: stagingDir,
	}
}

func (o *TransformOperator) Run(ctx context.Context, ti *scheduler.TaskInstance) error {
	flat, err := frame.ReadCSV(o.fs, flattenedPath(o.stagingDir))
	if err != nil {
		return errors.Wrap(err, "failed to read the staged flattened dataset")
	}

	assetName := ti.Asset.Name
	var result *frame.Frame
	switch assetName {
	case "transform_dim_category":
		result, err = transform.Category(flat)
	case "transform_dim_tag":
		result, err = transform.Tag(flat)
	case "transform_dim_product":
		var category *frame.Frame
		category, err = o.readStaged("dim_category")
		if err == nil {
			result, err = transform.Product(flat, category)
		}
	case "transform_dim_product_review":
		result, err = transform.ProductReview(flat)
	case "transform_dim_customer_demo":
		result, err = transform.Demographics(flat)
	case "transform_dim_address":
		result, err = transform.Address(flat)
	case "transform_dim_customer":
		result, err = transform.Customer(flat)
	case "transform_bridge_product_tag":
		var tag *frame.Frame
		tag, err = o.readStaged("dim_tag")
		if err == nil {
			result, err = transform.BridgeProductTag(flat, tag)
		}
	case "transform_fact_sales":
		result, err = transform.FactSales(flat)
	default:
		return errors.Errorf("unknown transform asset '%s'", assetName)
	}

	if err != nil {
		return errors.Wrapf(err, "failed to build '%s'", assetName)
	}

	table := tableForAsset(assetName)
	o.logger.Debugf("built '%s' with %d rows", table, result.Len())

	if err := result.WriteCSV(o.fs, tablePath(o.stagingDir, table)); err != nil {
		return errors.Wrapf(err, "failed to stage '%s'", table)
	}

	return nil
}

func (o *TransformOperator) readStaged(table string) (*frame.Frame, error) {
	f, err := frame.ReadCSV(o.fs, tablePath(o.stagingDir, table))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the staged '%s' table", table)
	}

	return f, nil
}
