package world

import "testing"

func TestDuplicateCopiesFieldsNotReferences(t *testing.T) {
	def := &ItemDef{
		ItemID:           200,
		Shortname:        "rifle.ak",
		HasCondition:     true,
		MaxCondition:     100,
		ContentsCapacity: 4,
		IsProjectile:     true,
	}
	src := NewItem(def, 5, 1234)
	src.Condition = 40
	src.Magazine.AmmoType = 9
	src.Magazine.Contents = 17

	dup := src.Duplicate(1, 5678)

	if dup.Amount != 1 || dup.SkinID != 5678 {
		t.Errorf("dup amount/skin = %d/%d, want 1/5678", dup.Amount, dup.SkinID)
	}
	if dup.Condition != 40 || dup.MaxCondition != 100 {
		t.Errorf("dup condition = %v/%v, want 40/100", dup.Condition, dup.MaxCondition)
	}
	if dup.Contents == nil || dup.Contents.Capacity() != 4 {
		t.Error("dup sub-container capacity not copied")
	}
	if dup.Contents == src.Contents {
		t.Error("dup shares the source sub-container")
	}
	if dup.Magazine == nil || dup.Magazine.Contents != 17 || dup.Magazine.AmmoType != 9 {
		t.Errorf("dup magazine = %+v, want contents 17 ammo 9", dup.Magazine)
	}
	if dup.Magazine == src.Magazine {
		t.Error("dup shares the source magazine")
	}

	// amount 0 keeps the source amount.
	if d := src.Duplicate(0, 0); d.Amount != 5 {
		t.Errorf("Duplicate(0, _) amount = %d, want source amount 5", d.Amount)
	}
}

func TestContainerCapacityBound(t *testing.T) {
	def := &ItemDef{ItemID: 1, Shortname: "rock"}
	c := NewContainer(7, 2)

	if !c.Insert(NewItem(def, 1, 0)) || !c.Insert(NewItem(def, 1, 0)) {
		t.Fatal("inserts below capacity failed")
	}
	if c.Insert(NewItem(def, 1, 0)) {
		t.Error("insert beyond capacity succeeded")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len = %d after clear, want 0", c.Len())
	}
	if c.Capacity() != 2 {
		t.Errorf("Capacity = %d after clear, want 2", c.Capacity())
	}
}

func TestBlockFlagsIdempotent(t *testing.T) {
	b := &BuildingBlock{ID: 1, Health: 500, MaxHealth: 500}

	b.SetDemolishable(true)
	b.SetDemolishable(true)
	if !b.Demolishable() {
		t.Error("demolishable flag lost")
	}
	b.SetDemolishable(false)
	b.SetDemolishable(false)
	if b.Demolishable() {
		t.Error("demolishable flag stuck")
	}

	if !b.AtFullHealth() {
		t.Error("undamaged block not at full health")
	}
	b.Health = 400
	if b.AtFullHealth() {
		t.Error("damaged block reported full health")
	}
}

func TestStateArenaLookups(t *testing.T) {
	s := NewState()
	s.AddBlock(&BuildingBlock{ID: 10})
	s.AddPlayer(&Player{ID: 1, Name: "otto"})

	if _, ok := s.Block(10); !ok {
		t.Error("block 10 missing")
	}
	s.RemoveBlock(10)
	if _, ok := s.Block(10); ok {
		t.Error("block 10 survived removal")
	}

	if p, ok := s.PlayerByName("otto"); !ok || p.ID != 1 {
		t.Error("PlayerByName failed")
	}
	if _, ok := s.PlayerByName("nobody"); ok {
		t.Error("PlayerByName matched a ghost")
	}

	if a, b := s.NextContainerUID(), s.NextContainerUID(); a == b || a == 0 {
		t.Errorf("container uids not unique: %d, %d", a, b)
	}
}
