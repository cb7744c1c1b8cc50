package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/outpost/internal/catalog"
	"github.com/talgya/outpost/internal/colony"
	"github.com/talgya/outpost/internal/events"
	"github.com/talgya/outpost/internal/sim"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "save.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot(t *testing.T) colony.Snapshot {
	t.Helper()
	clock := sim.NewFakeClock(time.UnixMilli(1_000_000_000))
	c := colony.New(clock, events.Nop{})
	c.Wire(nil)
	if res := c.QueueBuild(catalog.Sawmill); !res.OK {
		t.Fatalf("queue sawmill: %+v", res)
	}
	return c.Serialize()
}

func TestLoadWithoutSave(t *testing.T) {
	s := testStore(t)

	_, savedAt, ok, err := s.LoadColony()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("empty store must report no save")
	}
	if !savedAt.IsZero() {
		t.Fatalf("savedAt = %v, want zero", savedAt)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	snap := testSnapshot(t)
	stamp := time.UnixMilli(1_000_123_456)

	if err := s.SaveColony(snap, stamp); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, savedAt, ok, err := s.LoadColony()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("save not found after write")
	}
	if !savedAt.Equal(stamp) {
		t.Fatalf("savedAt = %v, want %v", savedAt, stamp)
	}

	want, _ := json.Marshal(snap)
	got, _ := json.Marshal(loaded)
	if string(got) != string(want) {
		t.Fatalf("snapshot drifted through store:\n want: %s\n got:  %s", want, got)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	s := testStore(t)
	snap := testSnapshot(t)

	if err := s.SaveColony(snap, time.UnixMilli(1_000_000_000)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	snap.Buildings[catalog.Sawmill] = 3
	later := time.UnixMilli(2_000_000_000)
	if err := s.SaveColony(snap, later); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, savedAt, ok, err := s.LoadColony()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Buildings[catalog.Sawmill] != 3 {
		t.Fatal("load returned the stale snapshot")
	}
	if !savedAt.Equal(later) {
		t.Fatalf("savedAt = %v, want %v", savedAt, later)
	}

	var count int
	if err := s.conn.Get(&count, "SELECT COUNT(*) FROM snapshots"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("snapshot rows = %d, want 1", count)
	}
}

// Saves written before compression was introduced hold plain JSON; they must
// still load.
func TestLoadLegacyPlainJSON(t *testing.T) {
	s := testStore(t)
	snap := testSnapshot(t)
	raw, _ := json.Marshal(snap)

	if _, err := s.conn.Exec(
		"INSERT OR REPLACE INTO snapshots (id, data, checksum) VALUES (1, ?, ?)",
		raw, "",
	); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	loaded, _, ok, err := s.LoadColony()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("legacy save must load")
	}
	got, _ := json.Marshal(loaded)
	if string(got) != string(raw) {
		t.Fatal("legacy snapshot content drifted")
	}
}

func TestCorruptBlobDegradesToFreshStart(t *testing.T) {
	s := testStore(t)

	if _, err := s.conn.Exec(
		"INSERT OR REPLACE INTO snapshots (id, data, checksum) VALUES (1, ?, ?)",
		[]byte("not json at all"), "deadbeef",
	); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	_, _, ok, err := s.LoadColony()
	if err != nil {
		t.Fatalf("corrupt save must not error: %v", err)
	}
	if ok {
		t.Fatal("corrupt save must report no save")
	}
}
