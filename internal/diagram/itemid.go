package diagram

import (
	"encoding/json"
	"fmt"
)

// ItemID is an assignable item identifier. Clients historically sent item
// ids as either JSON strings or numbers; both decode to the same canonical
// string form so membership comparison is always string-based.
type ItemID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ItemID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = ItemID(n.String())
		return nil
	}
	return fmt.Errorf("item id must be a string or number, got %s", b)
}

// NormalizeIDs converts ids to their canonical string form and drops
// duplicates, preserving first-seen order.
func NormalizeIDs(ids []ItemID) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s := string(id)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
