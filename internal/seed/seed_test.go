package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/louisbranch/feastly/internal/storage/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "feastly.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRunSeedsEmptyDatabase(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	restaurants, items, err := Run(ctx, store)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if restaurants != 3 || items != 6 {
		t.Fatalf("seeded (%d restaurants, %d items), want (3, 6)", restaurants, items)
	}

	listed, err := store.ListRestaurants(ctx)
	if err != nil {
		t.Fatalf("list restaurants: %v", err)
	}
	if len(listed) != 3 || listed[0].Name != "Italian Pizza House" {
		t.Fatalf("unexpected restaurants: %+v", listed)
	}

	menu, err := store.ListMenu(ctx, listed[2].ID)
	if err != nil {
		t.Fatalf("list menu: %v", err)
	}
	if len(menu) != 2 || menu[0].Name != "Chicken Biryani" {
		t.Fatalf("unexpected menu: %+v", menu)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, _, err := Run(ctx, store); err != nil {
		t.Fatalf("first run: %v", err)
	}
	restaurants, items, err := Run(ctx, store)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if restaurants != 0 || items != 0 {
		t.Fatalf("second run seeded (%d, %d), want (0, 0)", restaurants, items)
	}

	listed, err := store.ListRestaurants(ctx)
	if err != nil {
		t.Fatalf("list restaurants: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("restaurants = %d, want 3", len(listed))
	}
}
