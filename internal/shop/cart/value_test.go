package cart

import (
	"encoding/json"
	"testing"
)

func TestItemIDRoundTripPreservesRepresentation(t *testing.T) {
	for _, raw := range []string{`"1"`, `1`, `"abc-42"`, `3.5`} {
		var id ItemID
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		out, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal %s: %v", raw, err)
		}
		if string(out) != raw {
			t.Fatalf("round trip %s = %s", raw, out)
		}
	}
}

func TestItemIDNormalizesStringsAndNumbers(t *testing.T) {
	var fromString, fromNumber ItemID
	if err := json.Unmarshal([]byte(`"1"`), &fromString); err != nil {
		t.Fatalf("unmarshal string id: %v", err)
	}
	if err := json.Unmarshal([]byte(`1`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number id: %v", err)
	}
	if fromString.String() != fromNumber.String() {
		t.Fatalf("keys differ: %q vs %q", fromString.String(), fromNumber.String())
	}
}

func TestItemIDValidity(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{`"1"`, true},
		{`42`, true},
		{`"x"`, true},
		{`null`, false},
		{`0`, false},
		{`""`, false},
	}
	for _, tt := range tests {
		var id ItemID
		if err := json.Unmarshal([]byte(tt.raw), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if id.Valid() != tt.valid {
			t.Fatalf("valid(%s) = %v, want %v", tt.raw, id.Valid(), tt.valid)
		}
	}
}

func TestItemIDRejectsObjectsAndArrays(t *testing.T) {
	for _, raw := range []string{`{}`, `[1]`, `true`} {
		var id ItemID
		if err := json.Unmarshal([]byte(raw), &id); err == nil {
			t.Fatalf("expected error for id %s", raw)
		}
	}
}

func TestPriceAmountCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`1200`, 1200},
		{`3.5`, 3.5},
		{`"200"`, 200},
		{`"200 rs"`, 200},
		{`"  -2.5kg"`, -2.5},
		{`"abc"`, 0},
		{`""`, 0},
		{`"."`, 0},
		{`null`, 0},
		{`true`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		var price Price
		if err := json.Unmarshal([]byte(tt.raw), &price); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if got := price.Amount(); got != tt.want {
			t.Fatalf("amount(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestPriceRoundTripPreservesRepresentation(t *testing.T) {
	for _, raw := range []string{`"200"`, `100`, `null`, `"abc"`} {
		var price Price
		if err := json.Unmarshal([]byte(raw), &price); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		out, err := json.Marshal(price)
		if err != nil {
			t.Fatalf("marshal %s: %v", raw, err)
		}
		if string(out) != raw {
			t.Fatalf("round trip %s = %s", raw, out)
		}
	}
}
