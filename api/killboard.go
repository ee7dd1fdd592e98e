package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultKillboardURL is the public killboard API.
const DefaultKillboardURL = "https://zkillboard.com/api"

// TimeKey normalizes t to the killboard's YYYYMMDDHH00 form. Keys of the
// same width compare lexicographically in time order.
func TimeKey(t time.Time) string {
	return t.UTC().Format("2006010215") + "00"
}

// Kill is the part of a killboard entry the bot reads.
type Kill struct {
	KillmailID   int64     `json:"killmail_id"`
	KillmailTime time.Time `json:"killmail_time"`
}

// KillboardClient queries the third-party killboard.
type KillboardClient struct {
	client    *Client
	base      string
	userAgent string
}

// NewKillboardClient creates a killboard client. The killboard asks API users
// to identify a maintainer in the User-Agent.
func NewKillboardClient(client *Client, base, maintainer string) *KillboardClient {
	if base == "" {
		base = DefaultKillboardURL
	}
	return &KillboardClient{
		client:    client,
		base:      strings.TrimRight(base, "/"),
		userAgent: "Maintainer: " + maintainer,
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// KillsSinceURL builds the single request covering all characterIDs.
func (c *KillboardClient) KillsSinceURL(characterIDs []int64, since time.Time) string {
	return fmt.Sprintf("%s/characterID/%s/startTime/%s/limit/1/", c.base, joinIDs(characterIDs), TimeKey(since))
}

func (c *KillboardClient) kills(ctx context.Context, url string) ([]Kill, error) {
	// The transport negotiates gzip itself.
	body, err := c.client.Get(ctx, url, map[string]string{"User-Agent": c.userAgent})
	if err != nil {
		return nil, err
	}
	var kills []Kill
	if err := json.Unmarshal(body, &kills); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return kills, nil
}

// HasKillsSince reports whether any of characterIDs has a kill since the given time.
func (c *KillboardClient) HasKillsSince(ctx context.Context, characterIDs []int64, since time.Time) (bool, error) {
	if len(characterIDs) == 0 {
		return false, fmt.Errorf("no character ids")
	}
	kills, err := c.kills(ctx, c.KillsSinceURL(characterIDs, since))
	if err != nil {
		return false, err
	}
	return len(kills) > 0, nil
}

// LatestKill returns the most recent kill of a character, or nil if it has none.
func (c *KillboardClient) LatestKill(ctx context.Context, characterID int64) (*Kill, error) {
	url := fmt.Sprintf("%s/characterID/%d/limit/1/", c.base, characterID)
	kills, err := c.kills(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(kills) == 0 {
		return nil, nil
	}
	return &kills[0], nil
}
