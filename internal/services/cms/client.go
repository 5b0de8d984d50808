package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storyvault/internal/config"
	"storyvault/internal/story"
)

// HTTPDoer describes the HTTP client used for API requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher defines the remote story operations used by the CLI.
type Fetcher interface {
	FetchStory(ctx context.Context, id int64) (*story.Story, error)
	ListStories(ctx context.Context) ([]*story.Story, error)
}

// Client provides access to the remote content-management API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	timeout    time.Duration
	httpClient HTTPDoer
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a CMS API client from configuration.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	baseURL := strings.TrimSpace(cfg.CMS.BaseURL)
	if baseURL == "" {
		return nil, errors.New("cms base url required")
	}

	timeout := 30 * time.Second
	if cfg.CMS.RequestTimeout > 0 {
		timeout = time.Duration(cfg.CMS.RequestTimeout) * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(cfg.CMS.APIToken),
		userAgent:  cfg.Downloads.UserAgent,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchStory retrieves one story by id.
func (c *Client) FetchStory(ctx context.Context, id int64) (*story.Story, error) {
	var envelope struct {
		Data storyPayload `json:"data"`
	}
	endpoint := c.baseURL + "/stories/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	st, err := envelope.Data.toDomain()
	if err != nil {
		return nil, fmt.Errorf("story %d: %w", id, err)
	}
	return st, nil
}

// ListStories retrieves the story collection. Stories whose payload cannot be
// converted are skipped; a remote listing with one bad entry should still be
// browsable.
func (c *Client) ListStories(ctx context.Context) ([]*story.Story, error) {
	var envelope struct {
		Data []storyPayload `json:"data"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/stories", &envelope); err != nil {
		return nil, err
	}

	stories := make([]*story.Story, 0, len(envelope.Data))
	for _, payload := range envelope.Data {
		st, err := payload.toDomain()
		if err != nil {
			continue
		}
		stories = append(stories, st)
	}
	return stories, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", endpoint, ErrStoryNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", endpoint, ErrUnauthorized)
	default:
		return fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Sentinel errors surfaced by the API client.
var (
	ErrStoryNotFound = errors.New("story not found on remote")
	ErrUnauthorized  = errors.New("remote rejected credentials")
)

// DecodeStory reads a single story payload from r. Used by offline imports
// where the payload comes from a file rather than the API.
func DecodeStory(r io.Reader) (*story.Story, error) {
	var payload storyPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode story payload: %w", err)
	}
	return payload.toDomain()
}
