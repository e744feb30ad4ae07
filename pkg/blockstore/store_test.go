package blockstore

import (
	"path/filepath"
	"testing"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "plugin.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBlockRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := BlockRecord{BuildingID: 42, CreatedAt: 1700000000}
	if err := s.PutBlock(1001, rec); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	records, err := s.LoadBlocks()
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	got, ok := records[1001]
	if !ok {
		t.Fatal("record 1001 missing after reload")
	}
	if got.BuildingID != 42 || got.CreatedAt != 1700000000 {
		t.Errorf("record = %+v, want BuildingID 42 CreatedAt 1700000000", got)
	}
}

func TestDeleteBlockIsDefensive(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutBlock(5, BlockRecord{CreatedAt: 10}); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}
	if err := s.DeleteBlock(5); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	// Deleting again must not error.
	if err := s.DeleteBlock(5); err != nil {
		t.Fatalf("DeleteBlock on absent id: %v", err)
	}
	if n := s.BlockCount(); n != 0 {
		t.Errorf("BlockCount = %d, want 0", n)
	}
}

func TestSaveBlocksReplacesTable(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutBlock(1, BlockRecord{CreatedAt: 1}); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	table := map[world.EntityID]BlockRecord{
		2: {BuildingID: 7, CreatedAt: 100},
		3: {BuildingID: 7, CreatedAt: 200},
	}
	if err := s.SaveBlocks(table, 500); err != nil {
		t.Fatalf("SaveBlocks: %v", err)
	}

	records, err := s.LoadBlocks()
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records after SaveBlocks, want 2", len(records))
	}
	if _, ok := records[1]; ok {
		t.Error("stale record 1 survived SaveBlocks")
	}
	if records[3].CreatedAt != 200 {
		t.Errorf("record 3 CreatedAt = %d, want 200", records[3].CreatedAt)
	}
}

func TestUserPrefsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	user := world.UserID(76561198000000001)
	if _, ok, err := s.LoadUserPrefs(user); err != nil || ok {
		t.Fatalf("LoadUserPrefs on empty store: ok=%v err=%v", ok, err)
	}

	prefs := NewUserPrefs()
	prefs.DefaultSkins[12345] = 887700
	if err := s.PutUserPrefs(user, prefs); err != nil {
		t.Fatalf("PutUserPrefs: %v", err)
	}

	got, ok, err := s.LoadUserPrefs(user)
	if err != nil || !ok {
		t.Fatalf("LoadUserPrefs after put: ok=%v err=%v", ok, err)
	}
	if got.DefaultSkins[12345] != 887700 {
		t.Errorf("DefaultSkins[12345] = %d, want 887700", got.DefaultSkins[12345])
	}
}
