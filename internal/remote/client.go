// Package remote talks to the inventory service over HTTP. Every call is a
// single attempt: no retries, no idempotency keys.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/benpsk/stockview/internal/config"
	"github.com/benpsk/stockview/internal/inventory"
	"github.com/pkg/errors"
)

const userAgent = "stockview"

type Client struct {
	httpClient *http.Client
	endpoint   string
}

var _ inventory.Client = (*Client)(nil)

// New returns a client for the collection at endpoint, e.g.
// http://localhost:8080/fruits. A nil httpClient uses one without timeout.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
	}
}

func FromConfig(cfg config.InventoryConfig) *Client {
	return New(cfg.APIURL+"/"+cfg.Resource, &http.Client{Timeout: cfg.Timeout})
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) FetchAll(ctx context.Context) ([]inventory.Item, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	var items []inventory.Item
	if err := c.doJSON(req, "fetch all", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []inventory.Item{}
	}
	return items, nil
}

func (c *Client) FetchOne(ctx context.Context, id int64) (inventory.Item, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint+"/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return inventory.Item{}, err
	}
	var item inventory.Item
	if err := c.doJSON(req, "fetch one", &item); err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

func (c *Client) Add(ctx context.Context, in inventory.NewItemInput) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint+"/add", in)
	if err != nil {
		return err
	}
	return c.doJSON(req, "add", nil)
}

// Delete posts req to the delete endpoint as is.
func (c *Client) Delete(ctx context.Context, payload inventory.DeleteRequest) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint+"/delete", payload)
	if err != nil {
		return err
	}
	return c.doJSON(req, "delete", nil)
}

func (c *Client) newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(inventory.ErrNetwork, "build %s %s: %v", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON sends req and decodes a 2xx body into dst. A nil dst discards the
// body and only checks the status.
func (c *Client) doJSON(req *http.Request, op string, dst any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(inventory.ErrNetwork, "%s %s %s: %v", op, req.Method, req.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return &inventory.RejectedError{Op: op, Status: res.StatusCode}
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(inventory.ErrNetwork, "%s: read body: %v", op, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(inventory.ErrDecode, "%s: %v", op, err)
	}
	return nil
}
