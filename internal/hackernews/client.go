// Package hackernews is a client for the Hacker News new stories and item
// endpoints.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Bixxler/nextech/internal/config"
	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/story"
)

// maxBodyBytes bounds a single upstream response; the new stories list is
// about 500 IDs and an item is a few hundred bytes.
const maxBodyBytes = 4 << 20

// Observer is told about every item that was dropped from a batch.
type Observer interface {
	ItemFailed(id int, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(id int, err error)

func (f ObserverFunc) ItemFailed(id int, err error) { f(id, err) }

type nopObserver struct{}

func (nopObserver) ItemFailed(int, error) {}

// StatusError is returned when upstream answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d from %s", e.StatusCode, e.URL)
}

// Client talks to the Hacker News API.
type Client struct {
	client         *http.Client
	baseURL        string
	newStoriesPath string
	itemPath       string
	userAgent      string
	observer       Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client built from the upstream timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithObserver registers the side channel for per-item soft failures.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewClient builds a Client for cfg with an http.Client using cfg.HTTPTimeout.
func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		newStoriesPath: cfg.NewStoriesPath,
		itemPath:       cfg.ItemPath,
		userAgent:      cfg.UserAgent,
		observer:       nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStoriesURL is the endpoint listing the newest story IDs.
func (c *Client) NewStoriesURL() string {
	return c.baseURL + c.newStoriesPath
}

// ItemURL substitutes id into the item path template.
func (c *Client) ItemURL(id int) string {
	return c.baseURL + strings.ReplaceAll(c.itemPath, config.ItemIDPlaceholder, strconv.Itoa(id))
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// NewStoryIDs fetches the list of new story IDs. A JSON null body is an
// empty list. Any transport, status or decode failure is returned.
func (c *Client) NewStoryIDs(ctx context.Context) ([]int, error) {
	resp, err := c.get(ctx, c.NewStoriesURL())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decoding story IDs: %w", err)
	}
	if ids == nil {
		ids = []int{}
	}

	debuglog.WithFields(map[string]interface{}{"count": len(ids)}).Debugf("fetched new story IDs")
	return ids, nil
}

// Item fetches one story. It never fails: bad statuses, transport and decode
// errors are reported to the observer and come back as (nil, false).
func (c *Client) Item(ctx context.Context, id int) (*story.Story, bool) {
	s, err := c.fetchItem(ctx, id)
	if err != nil {
		debuglog.WithFields(map[string]interface{}{
			"item_id": id,
			"error":   err,
		}).Warnf("skipping story")
		c.observer.ItemFailed(id, err)
		return nil, false
	}
	if s == nil {
		return nil, false
	}
	return s, true
}

func (c *Client) fetchItem(ctx context.Context, id int) (s *story.Story, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("panic fetching item %d: %v", id, r)
		}
	}()

	resp, err := c.get(ctx, c.ItemURL(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// deleted or unknown items are served as a literal null
	var decoded *story.Story
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding item %d: %w", id, err)
	}
	return decoded, nil
}
