package plugin

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/icrus-dev/irsplugin/pkg/skins"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// itemDefFile is the YAML shape of one item definition entry.
type itemDefFile struct {
	ItemID           int32   `yaml:"item_id"`
	Shortname        string  `yaml:"shortname"`
	HasCondition     bool    `yaml:"has_condition"`
	MaxCondition     float64 `yaml:"max_condition"`
	ContentsCapacity int     `yaml:"contents_capacity"`
	IsProjectile     bool    `yaml:"is_projectile"`
	MagazineCapacity int     `yaml:"magazine_capacity"`
}

// LoadItemDefs reads an item definition list from a YAML file. The
// standalone binary feeds this to world.NewDefs; an embedded host reports
// item definitions through its own item manager instead.
func LoadItemDefs(path string) ([]*world.ItemDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read item defs %s: %w", path, err)
	}
	var raw []itemDefFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("plugin: parse item defs %s: %w", path, err)
	}
	defs := make([]*world.ItemDef, 0, len(raw))
	for _, r := range raw {
		defs = append(defs, &world.ItemDef{
			ItemID:           r.ItemID,
			Shortname:        r.Shortname,
			HasCondition:     r.HasCondition,
			MaxCondition:     r.MaxCondition,
			ContentsCapacity: r.ContentsCapacity,
			IsProjectile:     r.IsProjectile,
			MagazineCapacity: r.MagazineCapacity,
		})
	}
	return defs, nil
}

// LoadCatalogEntries reads the approved-skin list from a YAML file.
func LoadCatalogEntries(path string) ([]skins.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read skin catalog %s: %w", path, err)
	}
	var entries []skins.CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("plugin: parse skin catalog %s: %w", path, err)
	}
	return entries, nil
}
