package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultESIURL is the public identity service.
const DefaultESIURL = "https://esi.evetech.net/latest"

// CorporationHistoryEntry is one row of a character's corporation history.
type CorporationHistoryEntry struct {
	CorporationID int64     `json:"corporation_id"`
	RecordID      int64     `json:"record_id"`
	StartDate     time.Time `json:"start_date"`
	IsDeleted     bool      `json:"is_deleted,omitempty"`
}

// ESIClient reads character data from the identity service.
type ESIClient struct {
	client *Client
	base   string
}

// NewESIClient creates an identity service client.
func NewESIClient(client *Client, base string) *ESIClient {
	if base == "" {
		base = DefaultESIURL
	}
	return &ESIClient{client: client, base: strings.TrimRight(base, "/")}
}

// CorporationHistory returns the corporation history of a character.
func (c *ESIClient) CorporationHistory(ctx context.Context, characterID int64) ([]CorporationHistoryEntry, error) {
	url := fmt.Sprintf("%s/characters/%d/corporationhistory/?datasource=tranquility", c.base, characterID)
	body, err := c.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	var history []CorporationHistoryEntry
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return history, nil
}

// TenureStart returns the start of the character's most recent continuous
// membership interval in corporationID. Consecutive history records for the
// same corporation are treated as one interval.
func TenureStart(history []CorporationHistoryEntry, corporationID int64) (time.Time, bool) {
	sorted := make([]CorporationHistoryEntry, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RecordID != sorted[j].RecordID {
			return sorted[i].RecordID < sorted[j].RecordID
		}
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	latest := -1
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].CorporationID == corporationID {
			latest = i
			break
		}
	}
	if latest < 0 {
		return time.Time{}, false
	}
	start := latest
	for start > 0 && sorted[start-1].CorporationID == corporationID {
		start--
	}
	return sorted[start].StartDate, true
}

// HasTenure reports whether any of the character's intervals in the
// corporation began strictly before cutoff, compared at hour resolution.
// An earlier stint counts even when the character has since left and rejoined.
func HasTenure(history []CorporationHistoryEntry, corporationID int64, cutoff time.Time) bool {
	key := TimeKey(cutoff)
	for _, entry := range history {
		if entry.CorporationID == corporationID && TimeKey(entry.StartDate) < key {
			return true
		}
	}
	return false
}
