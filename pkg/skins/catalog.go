package skins

import (
	"log"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

// CatalogEntry is one approved skin as enumerated by the host workshop
// catalog: the shortname of the item it applies to and the skin id.
type CatalogEntry struct {
	Shortname string `yaml:"shortname"`
	SkinID    uint64 `yaml:"skin_id"`
}

// Catalog is the process-wide skin index: item id to its ordered skin ids,
// plus a shortname resolver. Built once at startup and read-only after;
// sessions share it without synchronization because nothing writes to it.
type Catalog struct {
	variants    map[int32][]uint64
	byShortname map[string]int32
	skins       int
}

// BuildCatalog groups catalog entries by the item they skin, preserving
// catalog enumeration order within each item. Entries whose shortname
// resolves to no known item are logged and skipped. Shortname collisions
// are first-write-wins: the earliest entry decides the mapping.
func BuildCatalog(defs *world.Defs, entries []CatalogEntry) *Catalog {
	c := &Catalog{
		variants:    make(map[int32][]uint64),
		byShortname: make(map[string]int32),
	}
	skipped := 0
	for _, e := range entries {
		def, ok := defs.ByShortname(e.Shortname)
		if !ok {
			log.Printf("skins: skipping skin %d: unknown item %q", e.SkinID, e.Shortname)
			skipped++
			continue
		}
		if _, exists := c.byShortname[e.Shortname]; !exists {
			c.byShortname[e.Shortname] = def.ItemID
		}
		c.variants[def.ItemID] = append(c.variants[def.ItemID], e.SkinID)
		c.skins++
	}
	log.Printf("skins: catalog built: %d items, %d skins (%d entries skipped)", len(c.variants), c.skins, skipped)
	return c
}

// Variants returns the ordered skin ids for an item id. ok is false when
// the item has no skins.
func (c *Catalog) Variants(itemID int32) ([]uint64, bool) {
	v, ok := c.variants[itemID]
	return v, ok
}

// ResolveItemID maps a shortname to its canonical item id.
func (c *Catalog) ResolveItemID(shortname string) (int32, bool) {
	id, ok := c.byShortname[shortname]
	return id, ok
}

// Items returns the number of items that have at least one skin.
func (c *Catalog) Items() int { return len(c.variants) }

// Skins returns the total number of indexed skins.
func (c *Catalog) Skins() int { return c.skins }
