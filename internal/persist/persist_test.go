package persist

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lofbot/client/internal/config"
	"go.uber.org/zap/zaptest"
)

// openTestDB connects to LOFBOT_TEST_DSN and migrates it. The tables are
// emptied before each test.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("LOFBOT_TEST_DSN")
	if dsn == "" {
		t.Skip("LOFBOT_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE sightings, listeners`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestSightingRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewSightingRepo(db)
	ctx := context.Background()

	if row, err := repo.Load(ctx, "nobody"); err != nil || row != nil {
		t.Fatalf("Load(nobody) = %+v, %v", row, err)
	}

	for _, id := range []uint32{10, 11, 12} {
		if err := repo.Record(ctx, "Alice", id); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := repo.Record(ctx, "bob", 3000000000); err != nil {
		t.Fatalf("Record: %v", err)
	}

	row, err := repo.Load(ctx, "ALICE")
	if err != nil || row == nil {
		t.Fatalf("Load(ALICE) = %+v, %v", row, err)
	}
	if row.Name != "alice" || row.BeingID != 12 || row.Count != 3 {
		t.Errorf("row = %+v", row)
	}
	if row.LastSeen.Before(row.FirstSeen) {
		t.Errorf("last seen %v before first seen %v", row.LastSeen, row.FirstSeen)
	}

	top, err := repo.MostSeen(ctx, 1)
	if err != nil {
		t.Fatalf("MostSeen: %v", err)
	}
	if len(top) != 1 || top[0].Name != "alice" {
		t.Errorf("MostSeen = %+v", top)
	}

	bob, _ := repo.Load(ctx, "bob")
	if bob == nil || bob.BeingID != 3000000000 {
		t.Errorf("bob = %+v", bob)
	}
}

func TestLongNamesFit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	long := strings.Repeat("x", 40)

	sightings := NewSightingRepo(db)
	if err := sightings.Record(ctx, long, 7); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if row, err := sightings.Load(ctx, long); err != nil || row == nil || row.Name != long {
		t.Errorf("Load(long) = %+v, %v", row, err)
	}

	listeners := NewListenerRepo(db)
	if err := listeners.Set(ctx, long, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if on, found, err := listeners.Get(ctx, long); err != nil || !found || !on {
		t.Errorf("Get(long) listening=%v found=%v err=%v", on, found, err)
	}
}

func TestListenerRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewListenerRepo(db)
	ctx := context.Background()

	if _, found, err := repo.Get(ctx, "Dave"); err != nil || found {
		t.Fatalf("Get(Dave) found=%v err=%v", found, err)
	}
	if err := repo.Set(ctx, "Dave", true); err != nil {
		t.Fatal(err)
	}
	if err := repo.Set(ctx, "Carol", true); err != nil {
		t.Fatal(err)
	}
	if err := repo.Set(ctx, "Carol", false); err != nil {
		t.Fatal(err)
	}

	if on, found, _ := repo.Get(ctx, "Carol"); !found || on {
		t.Errorf("Carol listening=%v found=%v", on, found)
	}
	names, err := repo.Listening(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Dave" {
		t.Errorf("Listening = %v", names)
	}
}
