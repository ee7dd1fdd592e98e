package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultPasteURL is the paste host's upload endpoint.
const DefaultPasteURL = "https://pastebin.com/api/api_post.php"

// PasteClient uploads private, day-long pastes.
type PasteClient struct {
	client *Client
	url    string
	key    string
}

// NewPasteClient creates a paste client. It returns nil when key is empty.
func NewPasteClient(client *Client, endpoint, key string) *PasteClient {
	if key == "" {
		return nil
	}
	if endpoint == "" {
		endpoint = DefaultPasteURL
	}
	return &PasteClient{client: client, url: endpoint, key: key}
}

// Upload posts content and returns the raw-view link of the new paste.
func (c *PasteClient) Upload(ctx context.Context, content string) (string, error) {
	form := url.Values{
		"api_dev_key":           {c.key},
		"api_paste_expire_date": {"1D"},
		"api_option":            {"paste"},
		"api_paste_private":     {"1"},
		"api_paste_code":        {content},
	}
	body, err := c.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload paste: %w", err)
	}

	link := strings.TrimSpace(string(body))
	if !strings.HasPrefix(link, "http") {
		return "", fmt.Errorf("failed to upload paste: %s", link)
	}
	return strings.Replace(link, "pastebin.com/", "pastebin.com/raw/", 1), nil
}
