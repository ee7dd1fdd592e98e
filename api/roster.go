package api

import (
	"context"
	"corp-bot/model"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrMalformedResponse is returned when a response body is not in the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

// RosterClient talks to the auth site's roster endpoints.
type RosterClient struct {
	client *Client
	root   string
	secret string
}

// NewRosterClient creates a roster client for the endpoints under root.
func NewRosterClient(client *Client, root, secret string) *RosterClient {
	return &RosterClient{
		client: client,
		root:   strings.TrimRight(root, "/"),
		secret: secret,
	}
}

// SyncResult is the body returned by the sync endpoint.
type SyncResult struct {
	ExistingMembers []string
	NewMembers      []string
	LeftMembers     []string
}

// IsEmpty reports whether nothing changed.
func (r SyncResult) IsEmpty() bool {
	return len(r.ExistingMembers) == 0 && len(r.NewMembers) == 0 && len(r.LeftMembers) == 0
}

func (r SyncResult) String() string {
	return fmt.Sprintf("Existing members added to roster: %s\nAccepted applicants: %s\nCharacters who left the corp: %s",
		joinOrNone(r.ExistingMembers), joinOrNone(r.NewMembers), joinOrNone(r.LeftMembers))
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func (c *RosterClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.client.Get(ctx, c.root+"/"+path, map[string]string{"REST-SECRET": c.secret})
}

// Sync asks the auth site to reconcile its roster. It returns Empty when no
// membership changed.
func (c *RosterClient) Sync(ctx context.Context) model.Result {
	body, err := c.get(ctx, "sync")
	if err != nil {
		log.Printf("Exception syncing membership: %v", err)
		return model.Failed(err)
	}

	result, err := parseSync(body)
	if err != nil {
		log.Printf("Exception syncing membership: %v", err)
		return model.Failed(err)
	}
	if result.IsEmpty() {
		log.Println("No membership changes")
		return model.Empty()
	}
	return model.Ok(result.String())
}

func parseSync(body []byte) (SyncResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return SyncResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var result SyncResult
	fields := []struct {
		key  string
		dest *[]string
	}{
		{"existing_members", &result.ExistingMembers},
		{"new_members", &result.NewMembers},
		{"left_members", &result.LeftMembers},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			return SyncResult{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, f.key)
		}
		if err := json.Unmarshal(value, f.dest); err != nil {
			return SyncResult{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, f.key, err)
		}
	}
	return result, nil
}

// Apps returns the pending applications. It returns Empty when there are none.
func (c *RosterClient) Apps(ctx context.Context) model.Result {
	body, err := c.get(ctx, "apps")
	if err != nil {
		log.Printf("Exception checking applications: %v", err)
		return model.Failed(err)
	}

	var apps []string
	if err := json.Unmarshal(body, &apps); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		log.Printf("Exception checking applications: %v", err)
		return model.Failed(err)
	}
	if len(apps) == 0 {
		return model.Empty()
	}
	return model.Ok("New applications: " + strings.Join(apps, ", "))
}
