// Package etl implements the operators that run the warehouse pipeline,
// from raw dataset ingestion to the bulk upserts into the star schema.
package etl

import (
	"path/filepath"
	"strings"
)

const (
	datasetFile   = "dataset.json"
	flattenedFile = "flattened_dataset.csv"
)

func datasetPath(stagingDir string) string {
	return filepath.Join(stagingDir, datasetFile)
}

func flattenedPath(stagingDir string) string {
	return filepath.Join(stagingDir, flattenedFile)
}

func tablePath(stagingDir, table string) string {
	return filepath.Join(stagingDir, table+".csv")
}

// tableForAsset derives the warehouse table name from an asset name by
// stripping the stage prefix, e.g. "load_dim_product" becomes "dim_product".
func tableForAsset(assetName string) string {
	parts := strings.SplitN(assetName, "_", 2)
	if len(parts) != 2 {
		return assetName
	}

	return parts[1]
}
