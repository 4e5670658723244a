package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viant/mcp-ticket-gateway/internal/backend"
)

func TestAdapter_Search_BuildsTextAndFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tickets":[{"id":"T1","title":"Login error","description":"Cannot log in","status_name":"Open","category_name":"Bug","account_name":"ACME"}]}`))
	}))
	defer srv.Close()

	a := NewAdapter(backend.New(srv.URL, "", 0))
	resp := a.Search(context.Background(), "login")
	require.Len(t, resp.Results, 1)
	r := resp.Results[0]
	require.Equal(t, "T1", r.ID)
	require.Equal(t, "Login error", r.Title)
	require.Equal(t, "Cannot log in | Status: Open | Category: Bug | Account: ACME", r.Text)
	require.Nil(t, r.URL)
}

func TestAdapter_Search_EmptyOnBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAdapter(backend.New(srv.URL, "", 0))
	resp := a.Search(context.Background(), "login")
	require.Empty(t, resp.Results)
}

func TestAdapter_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewAdapter(backend.New(srv.URL, "", 0))
	_, err := a.Fetch(context.Background(), "MISSING")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Failed to fetch ticket: MISSING")
}

func TestAdapter_Fetch_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tickets/T1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"T1","title":"Login error","description":"Cannot log in","status_name":"Open","created_at":"2025-01-01"}`))
	})
	mux.HandleFunc("/tickets/T1/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"created_at":"2025-01-02","content":"looked into it","user_name":"alice"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAdapter(backend.New(srv.URL, "", 0))
	resp, err := a.Fetch(context.Background(), "T1")
	require.NoError(t, err)
	require.Equal(t, "T1", resp.ID)
	require.Contains(t, resp.Text, "Description: Cannot log in")
	require.Contains(t, resp.Text, "History:")
	require.Contains(t, resp.Text, "- 2025-01-02: looked into it (by alice)")
	require.Equal(t, "Open", resp.Metadata["status_name"])
	require.NotContains(t, resp.Metadata, "category_name")
}

func TestAdapter_Fetch_HistoryFailureIsSwallowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tickets/T1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"T1","title":"Login error","description":"Cannot log in"}`))
	})
	mux.HandleFunc("/tickets/T1/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAdapter(backend.New(srv.URL, "", 0))
	resp, err := a.Fetch(context.Background(), "T1")
	require.NoError(t, err)
	require.NotContains(t, resp.Text, "History:")
}
