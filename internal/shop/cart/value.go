package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ItemID is a line item identifier as found in persisted carts.
//
// Legacy data mixes JSON numbers and strings for the same dish, so identity
// comparison always goes through the normalized string form while the
// original representation is preserved on re-marshal.
type ItemID struct {
	raw   json.RawMessage
	text  string
	valid bool
}

// StringID builds an identifier that persists as a JSON string.
func StringID(value string) ItemID {
	raw, _ := json.Marshal(value)
	return ItemID{raw: raw, text: value, valid: value != ""}
}

// NumericID builds an identifier that persists as a JSON number.
func NumericID(value int64) ItemID {
	text := strconv.FormatInt(value, 10)
	return ItemID{raw: json.RawMessage(text), text: text, valid: value != 0}
}

// String returns the normalized key used for identity comparison.
func (id ItemID) String() string {
	return id.text
}

// Valid reports whether the identifier can act as a stable key.
// Mirrors the storefront's truthiness rule: null, missing, empty strings,
// and the number zero are not identities.
func (id ItemID) Valid() bool {
	return id.valid
}

// UnmarshalJSON accepts string and number identifiers. Anything else is an
// error so the surrounding entry is treated as malformed and repaired away.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*id = ItemID{}
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*id = ItemID{raw: cloneRaw(trimmed), text: value, valid: value != ""}
		return nil
	}
	number, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return fmt.Errorf("item id must be a string or number, got %s", trimmed)
	}
	*id = ItemID{raw: cloneRaw(trimmed), text: formatNumber(number, string(trimmed)), valid: number != 0}
	return nil
}

// MarshalJSON re-emits the original representation.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// IsZero lets omitzero drop identifiers that were never set.
func (id ItemID) IsZero() bool {
	return len(id.raw) == 0
}

// Price is a number-like value: a JSON number, a numeric string, or junk.
// Junk coerces to zero instead of failing; totals silently undercount
// rather than blocking checkout.
type Price struct {
	raw json.RawMessage
}

// PriceOf builds a price that persists as a JSON number.
func PriceOf(value float64) Price {
	return Price{raw: json.RawMessage(strconv.FormatFloat(value, 'f', -1, 64))}
}

// Amount coerces the price to a number, defaulting to zero.
func (p Price) Amount() float64 {
	trimmed := bytes.TrimSpace(p.raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return 0
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return 0
		}
		return parseNumberPrefix(value)
	}
	value, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return 0
	}
	return value
}

// UnmarshalJSON keeps whatever shape the stored price has.
func (p *Price) UnmarshalJSON(data []byte) error {
	p.raw = cloneRaw(bytes.TrimSpace(data))
	return nil
}

// MarshalJSON re-emits the original representation.
func (p Price) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// IsZero lets omitzero drop prices that were never set.
func (p Price) IsZero() bool {
	return len(p.raw) == 0
}

func cloneRaw(data []byte) json.RawMessage {
	clone := make(json.RawMessage, len(data))
	copy(clone, data)
	return clone
}

// formatNumber prefers the literal digits for integral ids so "1" and 1
// normalize to the same key.
func formatNumber(value float64, literal string) string {
	if !strings.ContainsAny(literal, ".eE") {
		return literal
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// parseNumberPrefix reads the longest leading numeric prefix, the way the
// storefront's number coercion treats strings like "200" or "200 rs".
func parseNumberPrefix(value string) float64 {
	value = strings.TrimSpace(value)
	end := 0
	seenDigit := false
	seenDot := false
	for end < len(value) {
		c := value[end]
		switch {
		case c == '+' || c == '-':
			if end != 0 {
				goto done
			}
		case c == '.':
			if seenDot {
				goto done
			}
			seenDot = true
		case c >= '0' && c <= '9':
			seenDigit = true
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return 0
	}
	parsed, err := strconv.ParseFloat(strings.TrimRight(value[:end], "."), 64)
	if err != nil {
		return 0
	}
	return parsed
}
