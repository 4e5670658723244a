// Package backend implements the typed HTTP client fronting the ticket
// REST API (C1), grounded on mcp_server/shared/api_client.py's APIClient:
// same method surface (GET/POST/PUT), same header injection, same
// non-2xx-is-an-error contract, collapsed to Go's single async (blocking,
// context-aware) calling convention per the spec's redesign note about
// duplicated sync/async surfaces.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viant/mcp-ticket-gateway/internal/ticket"
)

// StatusError is returned when the backend replies with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend request failed with status %d: %s", e.StatusCode, string(e.Body))
}

// Client is a typed HTTP client to the ticket REST backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New constructs a Client bound to baseURL, optionally authenticating every
// call with apiKey via the x-api-key header.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		h["x-api-key"] = c.apiKey
	}
	return h
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Get issues a GET request and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response.
func (c *Client) Put(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// ListTickets fans out to the ticket listing endpoint with the search/
// filter parameters supported by the backend.
func (c *Client) ListTickets(ctx context.Context, filters url.Values) (*ticket.ListResponse, error) {
	var out ticket.ListResponse
	if err := c.Get(ctx, "tickets", filters, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTicket fetches a single ticket's detail.
func (c *Client) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	var out ticket.Ticket
	if err := c.Get(ctx, "tickets/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTicketHistory fetches a ticket's activity history. Kept separate from
// GetTicket so callers can tolerate a failing history call independently
// (mirrors shared/tools.py swallowing history errors on ticket detail).
func (c *Client) GetTicketHistory(ctx context.Context, id string) ([]ticket.HistoryEntry, error) {
	var out []ticket.HistoryEntry
	if err := c.Get(ctx, "tickets/"+url.PathEscape(id)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTicket creates a new ticket.
func (c *Client) CreateTicket(ctx context.Context, in ticket.CreateTicketInput) (*ticket.Ticket, error) {
	var out ticket.Ticket
	if err := c.Post(ctx, "tickets", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTicket updates an existing ticket.
func (c *Client) UpdateTicket(ctx context.Context, id string, in ticket.UpdateTicketInput) (*ticket.Ticket, error) {
	var out ticket.Ticket
	if err := c.Put(ctx, "tickets/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddTicketHistory appends a history entry to a ticket.
func (c *Client) AddTicketHistory(ctx context.Context, id string, in ticket.AddHistoryInput) error {
	return c.Post(ctx, "tickets/"+url.PathEscape(id)+"/history", in, nil)
}

// GetUsers, GetAccounts, GetCategories, GetCategoryDetails, GetStatuses and
// GetRequestChannels expose the backend's master-data surface, mirroring
// shared/tools.py's get_users_sync / get_accounts_sync / ... family.

func (c *Client) GetUsers(ctx context.Context) ([]ticket.User, error) {
	var out []ticket.User
	err := c.Get(ctx, "tickets/master/users", nil, &out)
	return out, err
}

func (c *Client) GetAccounts(ctx context.Context) ([]ticket.Account, error) {
	var out []ticket.Account
	err := c.Get(ctx, "tickets/master/accounts", nil, &out)
	return out, err
}

func (c *Client) GetCategories(ctx context.Context) ([]ticket.Category, error) {
	var out []ticket.Category
	err := c.Get(ctx, "tickets/master/categories", nil, &out)
	return out, err
}

func (c *Client) GetCategoryDetails(ctx context.Context) ([]ticket.CategoryDetail, error) {
	var out []ticket.CategoryDetail
	err := c.Get(ctx, "tickets/master/category-details", nil, &out)
	return out, err
}

func (c *Client) GetStatuses(ctx context.Context) ([]ticket.Status, error) {
	var out []ticket.Status
	err := c.Get(ctx, "tickets/master/statuses", nil, &out)
	return out, err
}

func (c *Client) GetRequestChannels(ctx context.Context) ([]ticket.RequestChannel, error) {
	var out []ticket.RequestChannel
	err := c.Get(ctx, "tickets/master/request-channels", nil, &out)
	return out, err
}
