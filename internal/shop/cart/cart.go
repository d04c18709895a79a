// Package cart implements the storefront's persistent shopping cart.
//
// The cart is stored as a flat JSON array under one key: one entry per unit,
// no quantity field. Quantity is derived by grouping entries that share an
// id. Mutations work on the raw stored sequence so that entries a repair
// pass would drop are still preserved until the next Load.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageKey is the key the cart array is persisted under.
const StorageKey = "cart"

// KV is the slice of local storage the cart needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LineItem is one unit of one dish in the cart.
type LineItem struct {
	ID    ItemID `json:"id"`
	Name  string `json:"name,omitempty"`
	Price Price  `json:"price,omitzero"`
	Image string `json:"image,omitempty"`
}

// Grouped is a run of identical line items collapsed into a quantity.
type Grouped struct {
	Item LineItem
	Qty  int
}

// Store reads and mutates the persisted cart.
type Store struct {
	kv KV
}

// NewStore wires the cart to its backing storage.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the cart and repairs it: entries without a usable id are
// dropped, and when anything was dropped the cleaned array is persisted
// before returning. An unreadable or missing payload is an empty cart,
// not an error. The second return value reports how many entries were
// removed.
func (s *Store) Load(ctx context.Context) ([]LineItem, int, error) {
	if s == nil || s.kv == nil {
		return nil, 0, fmt.Errorf("cart storage is not configured")
	}

	raws, err := s.loadRaw(ctx)
	if err != nil {
		return nil, 0, err
	}

	items := make([]LineItem, 0, len(raws))
	removed := 0
	for _, raw := range raws {
		var item LineItem
		if err := json.Unmarshal(raw, &item); err != nil || !item.ID.Valid() {
			removed++
			continue
		}
		items = append(items, item)
	}

	if removed > 0 {
		if err := s.persist(ctx, items); err != nil {
			return nil, 0, fmt.Errorf("persist repaired cart: %w", err)
		}
	}
	return items, removed, nil
}

// Add appends one unit to the cart.
func (s *Store) Add(ctx context.Context, item LineItem) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("cart storage is not configured")
	}

	raws, err := s.loadRaw(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode cart item: %w", err)
	}
	return s.persistRaw(ctx, append(raws, encoded))
}

// Increment duplicates the first entry matching id, adding one unit with
// the stored fields exactly as they were persisted. No match is a no-op.
func (s *Store) Increment(ctx context.Context, id string) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("cart storage is not configured")
	}

	if id == "" {
		return nil
	}

	raws, err := s.loadRaw(ctx)
	if err != nil {
		return err
	}
	for _, raw := range raws {
		if entryID(raw) == id {
			return s.persistRaw(ctx, append(raws, cloneRaw(raw)))
		}
	}
	return nil
}

// Decrement removes the first entry matching id. No match is a no-op.
func (s *Store) Decrement(ctx context.Context, id string) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("cart storage is not configured")
	}

	if id == "" {
		return nil
	}

	raws, err := s.loadRaw(ctx)
	if err != nil {
		return err
	}
	for i, raw := range raws {
		if entryID(raw) == id {
			return s.persistRaw(ctx, append(raws[:i], raws[i+1:]...))
		}
	}
	return nil
}

// RemoveAll removes every entry matching id, regardless of quantity.
func (s *Store) RemoveAll(ctx context.Context, id string) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("cart storage is not configured")
	}

	raws, err := s.loadRaw(ctx)
	if err != nil {
		return err
	}
	kept := make([]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		if entryID(raw) != id {
			kept = append(kept, raw)
		}
	}
	return s.persistRaw(ctx, kept)
}

// Clear discards the cart entirely.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("cart storage is not configured")
	}
	return s.kv.Delete(ctx, StorageKey)
}

// Count reports the number of stored entries, including ones a repair pass
// would drop. This is the badge count.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.kv == nil {
		return 0, fmt.Errorf("cart storage is not configured")
	}
	raws, err := s.loadRaw(ctx)
	if err != nil {
		return 0, err
	}
	return len(raws), nil
}

// loadRaw reads the stored array without interpreting its entries.
// A missing or undecodable payload is an empty cart.
func (s *Store) loadRaw(ctx context.Context) ([]json.RawMessage, error) {
	value, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if !found {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raws); err != nil {
		return nil, nil
	}
	return raws, nil
}

func (s *Store) persist(ctx context.Context, items []LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(ctx, StorageKey, string(payload))
}

func (s *Store) persistRaw(ctx context.Context, raws []json.RawMessage) error {
	payload, err := json.Marshal(raws)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(ctx, StorageKey, string(payload))
}

// entryID extracts the normalized id of a raw entry, or "" when the entry
// has no usable id.
func entryID(raw json.RawMessage) string {
	var probe struct {
		ID ItemID `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || !probe.ID.Valid() {
		return ""
	}
	return probe.ID.String()
}

// Group collapses the flat sequence into one row per distinct id, in first
// occurrence order. The first entry's fields represent the group.
func Group(items []LineItem) []Grouped {
	index := make(map[string]int, len(items))
	groups := make([]Grouped, 0, len(items))
	for _, item := range items {
		key := item.ID.String()
		if pos, ok := index[key]; ok {
			groups[pos].Qty++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Grouped{Item: item, Qty: 1})
	}
	return groups
}

// Total sums price times quantity over grouped rows.
func Total(groups []Grouped) float64 {
	var total float64
	for _, g := range groups {
		total += g.Item.Price.Amount() * float64(g.Qty)
	}
	return total
}
