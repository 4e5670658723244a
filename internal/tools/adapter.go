// Package tools adapts ticket-backend operations to the fixed Deep-Research
// search/fetch tool surface (C2), grounded on
// mcp_server/shared/tools.py's get_ticket_list / get_ticket_detail text
// building, reshaped to the SearchResult/FetchResult JSON contract spec.md
// §3 and §4.2 fix.
package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/viant/mcp-ticket-gateway/internal/backend"
	"github.com/viant/mcp-ticket-gateway/internal/pointer"
)

// SearchResult is one element of a search response.
type SearchResult struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Text  string  `json:"text"`
	URL   *string `json:"url"`
}

// SearchResponse is the top-level search tool result.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// FetchResponse is the fetch tool result.
type FetchResponse struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	URL      *string           `json:"url"`
	Metadata map[string]string `json:"metadata"`
}

// Adapter wraps a backend client with the search/fetch contract.
type Adapter struct {
	Backend *backend.Client
}

// NewAdapter constructs an Adapter over the given backend client.
func NewAdapter(b *backend.Client) *Adapter {
	return &Adapter{Backend: b}
}

const searchLimit = 20

// Search fans out to the ticket listing endpoint. Any backend error or
// empty result yields an empty result set rather than propagating, per
// spec.md §4.2 and invariant 7.
func (a *Adapter) Search(ctx context.Context, query string) SearchResponse {
	filters := url.Values{}
	filters.Set("searchQuery", query)
	filters.Set("limit", strconv.Itoa(searchLimit))

	listResp, err := a.Backend.ListTickets(ctx, filters)
	if err != nil || listResp == nil {
		return SearchResponse{Results: []SearchResult{}}
	}

	results := make([]SearchResult, 0, len(listResp.Tickets))
	for _, t := range listResp.Tickets {
		parts := []string{}
		for _, p := range []string{
			t.Description,
			labelIfPresent("Status", t.StatusName),
			labelIfPresent("Category", t.CategoryName),
			labelIfPresent("Account", t.AccountName),
		} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		results = append(results, SearchResult{
			ID:    t.ID,
			Title: t.Title,
			Text:  strings.Join(parts, " | "),
			URL:   ticketURL(t.URL),
		})
	}
	return SearchResponse{Results: results}
}

func labelIfPresent(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// ticketURL lifts the backend's optional permalink into the pointer shape
// the search/fetch contract expects, nil when the backend didn't return one.
func ticketURL(raw string) *string {
	if raw == "" {
		return nil
	}
	return pointer.Ref(raw)
}

// ErrNotFound is returned by Fetch when the backend cannot resolve id.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("Failed to fetch ticket: %s", e.ID)
}

// Fetch calls the backend's ticket-detail endpoint and reshapes the result
// into the Deep-Research fetch contract.
func (a *Adapter) Fetch(ctx context.Context, id string) (*FetchResponse, error) {
	t, err := a.Backend.GetTicket(ctx, id)
	if err != nil || t == nil || t.ID == "" {
		return nil, &ErrNotFound{ID: id}
	}

	history, err := a.Backend.GetTicketHistory(ctx, id)
	if err != nil {
		// History is best-effort: the original swallows a failing history
		// call and continues with an empty list.
		history = nil
	}

	var text strings.Builder
	text.WriteString("Description: ")
	text.WriteString(t.Description)
	if len(history) > 0 {
		text.WriteString("\n\nHistory:")
		for _, h := range history {
			text.WriteString(fmt.Sprintf("\n- %s: %s (by %s)", h.CreatedAt, h.Content, h.UserName))
		}
	}

	metadata := map[string]string{}
	for k, v := range map[string]string{
		"status_name":             t.StatusName,
		"category_name":           t.CategoryName,
		"account_name":            t.AccountName,
		"person_in_charge_name":   t.PersonInChargeName,
		"priority":                t.Priority,
		"created_at":              t.CreatedAt,
		"updated_at":              t.UpdatedAt,
	} {
		if v != "" {
			metadata[k] = v
		}
	}

	resp := &FetchResponse{
		ID:    t.ID,
		Title: t.Title,
		Text:  text.String(),
		URL:   ticketURL(t.URL),
	}
	if len(metadata) > 0 {
		resp.Metadata = metadata
	}
	if link := pointer.Deref(resp.URL); link != "" {
		resp.Text += "\n\nURL: " + link
	}
	return resp, nil
}
