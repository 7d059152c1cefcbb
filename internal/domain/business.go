package domain

import (
	"encoding/json"
	"fmt"
)

// CandidateItem is a business staged in the queue. Identity is ID; the value
// is never modified once enqueued.
type CandidateItem struct {
	ID      int64
	Address string
	// Attributes carries every other catalog field verbatim.
	Attributes map[string]any
}

const (
	fieldBusinessID = "business_id"
	fieldAddress    = "address"
)

// MarshalJSON flattens the item back into the catalog's wire shape.
func (c CandidateItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Attributes)+2)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out[fieldBusinessID] = c.ID
	out[fieldAddress] = c.Address
	return json.Marshal(out)
}

// UnmarshalJSON reads a catalog business object. business_id is required.
func (c *CandidateItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode business: %w", err)
	}

	idRaw, ok := raw[fieldBusinessID]
	if !ok {
		return fmt.Errorf("decode business: missing %s", fieldBusinessID)
	}
	var id int64
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return fmt.Errorf("decode business: %s: %w", fieldBusinessID, err)
	}

	var address string
	if addrRaw, ok := raw[fieldAddress]; ok {
		// null and non-string addresses are tolerated as empty.
		_ = json.Unmarshal(addrRaw, &address)
	}

	attrs := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == fieldBusinessID || k == fieldAddress {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("decode business: %s: %w", k, err)
		}
		attrs[k] = val
	}

	*c = CandidateItem{ID: id, Address: address, Attributes: attrs}
	return nil
}
