package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configFixture = `
default_environment: default
environments:
  default:
    connections:
      mysql:
        - name: dwh-conn
          username: warehouse
          password: secret
          host: localhost
          port: 3306
          database: dwh
  production:
    connections:
      postgres:
        - name: dwh-conn
          username: warehouse
          password: secret
          host: warehouse.internal
          database: dwh
          ssl_mode: require
pipeline:
  name: orders_etl
  schedule: "@daily"
  source_url: https://datasets.internal/orders.json
  staging_dir: /tmp/orders
  connection: dwh-conn
  alert_email: data-alerts@example.com
  workers: 4
`

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".starling.yml", []byte(configFixture), 0o644))

	cfg, err := LoadFromFile(fs, ".starling.yml")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.SelectedEnvironmentName)
	require.Len(t, cfg.SelectedEnvironment.Connections.MySQL, 1)
	assert.Equal(t, "dwh-conn", cfg.SelectedEnvironment.Connections.MySQL[0].Name)
	assert.Equal(t, "orders_etl", cfg.Pipeline.Name)
	assert.Equal(t, "@daily", cfg.Pipeline.Schedule)
	assert.Equal(t, "/tmp/orders", cfg.Pipeline.StagingDir)
	assert.Equal(t, "data-alerts@example.com", cfg.Pipeline.AlertEmail)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	contents := `
environments:
  default:
    connections: {}
pipeline:
  name: orders_etl
`
	require.NoError(t, afero.WriteFile(fs, ".starling.yml", []byte(contents), 0o644))

	cfg, err := LoadFromFile(fs, ".starling.yml")
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkerCount, cfg.Pipeline.Workers)
	assert.Equal(t, DefaultStagingDir, cfg.Pipeline.StagingDir)
}

func TestConfig_SelectEnvironment(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".starling.yml", []byte(configFixture), 0o644))

	cfg, err := LoadFromFile(fs, ".starling.yml")
	require.NoError(t, err)

	require.NoError(t, cfg.SelectEnvironment("production"))
	assert.Equal(t, "production", cfg.SelectedEnvironmentName)
	require.Len(t, cfg.SelectedEnvironment.Connections.Postgres, 1)

	require.Error(t, cfg.SelectEnvironment("staging"))
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	_, err := LoadFromFile(fs, "missing.yml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "broken.yml", []byte("a: [b"), 0o644))
	_, err = LoadFromFile(fs, "broken.yml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "noenv.yml", []byte("default_environment: prod\nenvironments: {}"), 0o644))
	_, err = LoadFromFile(fs, "noenv.yml")
	require.Error(t, err)
}
