// Package pipeline declares the static shape of a run: named assets, their
// types, and the partial order between them. The scheduler consumes this
// declaration; the operators give each asset its behavior.
package pipeline

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/yourbasic/graph"
)

type AssetType string

const (
	AssetTypeIngest    = AssetType("ingest")
	AssetTypeFlatten   = AssetType("flatten")
	AssetTypeTransform = AssetType("transform")
	AssetTypeLoad      = AssetType("load")
)

type Upstream struct {
	Value string
}

type Asset struct {
	Name      string
	Type      AssetType
	Upstreams []Upstream
}

func (a *Asset) AddUpstream(name string) {
	a.Upstreams = append(a.Upstreams, Upstream{Value: name})
}

type Pipeline struct {
	Name     string
	Schedule string
	Assets   []*Asset
}

func (p *Pipeline) GetAssetByName(name string) *Asset {
	for _, asset := range p.Assets {
		if asset.Name == name {
			return asset
		}
	}

	return nil
}

// Validate checks the declared graph: unique asset names, resolvable
// upstream references, an acyclic dependency structure, and a parseable
// schedule when one is set.
func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return errors.New("the pipeline must have a name")
	}

	if p.Schedule != "" {
		if _, err := cron.ParseStandard(p.Schedule); err != nil {
			return errors.Wrapf(err, "the schedule '%s' is not a valid cron expression", p.Schedule)
		}
	}

	indexByName := make(map[string]int, len(p.Assets))
	for i, asset := range p.Assets {
		if _, exists := indexByName[asset.Name]; exists {
			return errors.Errorf("asset '%s' is declared more than once", asset.Name)
		}
		indexByName[asset.Name] = i
	}

	for _, asset := range p.Assets {
		for _, upstream := range asset.Upstreams {
			if upstream.Value == asset.Name {
				return errors.Errorf("asset '%s' depends on itself", asset.Name)
			}

			if _, ok := indexByName[upstream.Value]; !ok {
				return errors.Errorf("asset '%s' depends on unknown asset '%s'", asset.Name, upstream.Value)
			}
		}
	}

	g := graph.New(len(p.Assets))
	for _, asset := range p.Assets {
		for _, upstream := range asset.Upstreams {
			g.Add(indexByName[asset.Name], indexByName[upstream.Value])
		}
	}

	for _, component := range graph.StrongComponents(g) {
		if len(component) == 1 {
			continue
		}

		names := make([]string, 0, len(component))
		for _, idx := range component {
			names = append(names, p.Assets[idx].Name)
		}

		return errors.Errorf("the pipeline contains a dependency cycle: %s", strings.Join(names, ", "))
	}

	return nil
}
