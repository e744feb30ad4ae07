package skins

import (
	"testing"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

func testDefs() *world.Defs {
	return world.NewDefs([]*world.ItemDef{
		{ItemID: 100, Shortname: "wall.frame"},
		{ItemID: 200, Shortname: "rifle.ak", HasCondition: true, MaxCondition: 100, IsProjectile: true},
		{ItemID: 300, Shortname: "box.wooden", ContentsCapacity: 30},
	})
}

func TestBuildCatalogGroupsInOrder(t *testing.T) {
	defs := testDefs()
	catalog := BuildCatalog(defs, []CatalogEntry{
		{Shortname: "rifle.ak", SkinID: 11},
		{Shortname: "wall.frame", SkinID: 21},
		{Shortname: "rifle.ak", SkinID: 12},
		{Shortname: "rifle.ak", SkinID: 13},
	})

	skins, ok := catalog.Variants(200)
	if !ok {
		t.Fatal("no variants for item 200")
	}
	if len(skins) != 3 || skins[0] != 11 || skins[1] != 12 || skins[2] != 13 {
		t.Errorf("variants(200) = %v, want [11 12 13] in catalog order", skins)
	}

	id, ok := catalog.ResolveItemID("wall.frame")
	if !ok || id != 100 {
		t.Errorf("ResolveItemID(wall.frame) = %d (ok=%v), want 100", id, ok)
	}
	if catalog.Items() != 2 {
		t.Errorf("Items() = %d, want 2", catalog.Items())
	}
}

func TestBuildCatalogSkipsUnknownItems(t *testing.T) {
	catalog := BuildCatalog(testDefs(), []CatalogEntry{
		{Shortname: "rifle.ak", SkinID: 11},
		{Shortname: "no.such.item", SkinID: 99},
	})

	if catalog.Skins() != 1 {
		t.Errorf("Skins() = %d, want 1 (unresolvable entry must be skipped)", catalog.Skins())
	}
	if _, ok := catalog.ResolveItemID("no.such.item"); ok {
		t.Error("unresolvable shortname was indexed")
	}
}

func TestDefsShortnameCollisionFirstWriteWins(t *testing.T) {
	defs := world.NewDefs([]*world.ItemDef{
		{ItemID: 1, Shortname: "dup"},
		{ItemID: 2, Shortname: "dup"},
	})
	catalog := BuildCatalog(defs, []CatalogEntry{{Shortname: "dup", SkinID: 5}})

	id, ok := catalog.ResolveItemID("dup")
	if !ok || id != 1 {
		t.Errorf("ResolveItemID(dup) = %d, want 1 (first definition wins)", id)
	}
	if _, ok := catalog.Variants(2); ok {
		t.Error("losing definition acquired variants")
	}
}

func TestVariantsAbsentForUnknownItem(t *testing.T) {
	catalog := BuildCatalog(testDefs(), nil)
	if _, ok := catalog.Variants(100); ok {
		t.Error("Variants reported ok for an item with no skins")
	}
}
