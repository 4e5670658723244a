// Package ticket defines the wire shapes exchanged with the ticket REST
// backend, grounded on mcp_server/shared/tools.py's field usage.
package ticket

import "encoding/json"

// Ticket mirrors the subset of fields the backend's listing/detail
// endpoints return that the tool adapter depends on.
type Ticket struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	StatusName         string `json:"status_name"`
	CategoryName       string `json:"category_name"`
	AccountName        string `json:"account_name"`
	PersonInChargeName string `json:"person_in_charge_name"`
	Priority           string `json:"priority"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
	URL                string `json:"url"`
}

// HistoryEntry is one row of a ticket's activity history.
type HistoryEntry struct {
	CreatedAt string `json:"created_at"`
	Content   string `json:"content"`
	UserName  string `json:"user_name"`
}

// ListResponse tolerates both the `{"tickets": [...]}` envelope and a bare
// top-level array, per the backend's two observed response shapes.
type ListResponse struct {
	Tickets []Ticket
}

// UnmarshalJSON accepts either {"tickets":[...]} or a bare [...] array.
func (r *ListResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Tickets []Ticket `json:"tickets"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tickets != nil {
		r.Tickets = wrapped.Tickets
		return nil
	}
	var bare []Ticket
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	r.Tickets = bare
	return nil
}

// User, Account, Category, CategoryDetail, Status and RequestChannel back
// the backend client's master-data accessors; they are not part of the
// search/fetch tool surface.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryDetail struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
}

type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RequestChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateTicketInput is the request body for POST tickets.
type CreateTicketInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	AccountID      string `json:"accountId,omitempty"`
	CategoryID     string `json:"categoryId,omitempty"`
	PersonInChargeID string `json:"personInChargeId,omitempty"`
	Priority       string `json:"priority,omitempty"`
}

// UpdateTicketInput is the request body for PUT tickets/{id}.
type UpdateTicketInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	StatusID    string `json:"statusId,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// AddHistoryInput is the request body for POST tickets/{id}/history.
type AddHistoryInput struct {
	Content string `json:"content"`
}
