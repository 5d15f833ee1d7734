// Package connection resolves configured connection names to live warehouse
// clients for the selected environment.
package connection

import (
	"context"

	"github.com/pkg/errors"
	"github.com/starling-data/starling/pkg/config"
	"github.com/starling-data/starling/pkg/mysql"
	"github.com/starling-data/starling/pkg/postgres"
	"github.com/starling-data/starling/pkg/warehouse"
)

type Manager struct {
	clients  map[string]warehouse.Client
	dialects map[string]warehouse.Dialect
}

func NewManagerFromConfig(ctx context.Context, cm *config.Config) (*Manager, error) {
	if cm.SelectedEnvironment == nil {
		return nil, errors.New("no environment is selected in the configuration")
	}

	manager := &Manager{
		clients:  make(map[string]warehouse.Client),
		dialects: make(map[string]warehouse.Dialect),
	}

	for _, conn := range cm.SelectedEnvironment.Connections.MySQL {
		client, err := mysql.NewClient(conn)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to set up the MySQL connection '%s'", conn.Name)
		}

		if err := manager.add(conn.Name, client, warehouse.DialectMySQL); err != nil {
			return nil, err
		}
	}

	for _, conn := range cm.SelectedEnvironment.Connections.Postgres {
		client, err := postgres.NewClient(ctx, conn)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to set up the Postgres connection '%s'", conn.Name)
		}

		if err := manager.add(conn.Name, client, warehouse.DialectPostgres); err != nil {
			return nil, err
		}
	}

	return manager, nil
}

func (m *Manager) add(name string, client warehouse.Client, dialect warehouse.Dialect) error {
	if name == "" {
		return errors.New("connections must have a name")
	}

	if _, exists := m.clients[name]; exists {
		return errors.Errorf("connection '%s' is defined more than once", name)
	}

	m.clients[name] = client
	m.dialects[name] = dialect
	return nil
}

// GetWarehouse returns the client and dialect registered under the given
// connection name.
func (m *Manager) GetWarehouse(name string) (warehouse.Client, warehouse.Dialect, error) {
	client, ok := m.clients[name]
	if !ok {
		return nil, "", errors.Errorf("connection '%s' is not defined in the selected environment", name)
	}

	return client, m.dialects[name], nil
}

// All returns every registered connection, keyed by name.
func (m *Manager) All() map[string]warehouse.Client {
	out := make(map[string]warehouse.Client, len(m.clients))
	for name, client := range m.clients {
		out[name] = client
	}

	return out
}
