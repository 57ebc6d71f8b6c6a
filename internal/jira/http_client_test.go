package jira

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func pagedSearchServer(t *testing.T, total, pageSize int, wantAuth string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/search" {
			http.NotFound(w, r)
			return
		}
		if wantAuth != "" && r.Header.Get("Authorization") != wantAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("expand") != "changelog" {
			t.Errorf("Expected changelog expansion, got %q", r.URL.Query().Get("expand"))
		}

		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		resp := SearchResponse{StartAt: startAt, MaxResults: pageSize, Total: total}
		for i := startAt; i < total && i < startAt+pageSize; i++ {
			resp.Issues = append(resp.Issues, IssueDTO{Key: fmt.Sprintf("PROJ-%d", i+1)})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestSearchAllIssuesPagesThroughResults(t *testing.T) {
	srv := pagedSearchServer(t, 7, 3, "")
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, PageSize: 3})
	issues, err := client.SearchAllIssues("project = PROJ")
	if err != nil {
		t.Fatalf("SearchAllIssues returned error: %v", err)
	}

	if len(issues) != 7 {
		t.Fatalf("Expected 7 issues, got %d", len(issues))
	}
	for i, issue := range issues {
		want := fmt.Sprintf("PROJ-%d", i+1)
		if issue.Key != want {
			t.Errorf("Issue %d = %q, want %q (pages must reassemble in order)", i, issue.Key, want)
		}
	}
}

func TestSearchAllIssuesSinglePage(t *testing.T) {
	srv := pagedSearchServer(t, 2, 25, "")
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	issues, err := client.SearchAllIssues("project = PROJ")
	if err != nil {
		t.Fatalf("SearchAllIssues returned error: %v", err)
	}
	if len(issues) != 2 {
		t.Errorf("Expected 2 issues, got %d", len(issues))
	}
}

func TestTokenAuthHeader(t *testing.T) {
	srv := pagedSearchServer(t, 1, 25, "Bearer secret")
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Token: "secret"})
	if _, err := client.SearchAllIssues("project = PROJ"); err != nil {
		t.Fatalf("Expected PAT auth to succeed, got %v", err)
	}

	badClient := NewClient(Config{BaseURL: srv.URL, Token: "wrong"})
	if _, err := badClient.SearchAllIssues("project = PROJ"); err == nil {
		t.Fatal("Expected error for rejected credentials")
	}
}

func TestMyself(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/myself" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(MyselfDTO{DisplayName: "Jane Analyst"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	me, err := client.Myself()
	if err != nil {
		t.Fatalf("Myself returned error: %v", err)
	}
	if me.DisplayName != "Jane Analyst" {
		t.Errorf("DisplayName = %q, want Jane Analyst", me.DisplayName)
	}
}

func TestParseTime(t *testing.T) {
	ts, err := ParseTime("2024-01-02T10:30:00.000+0000")
	if err != nil {
		t.Fatalf("ParseTime returned error: %v", err)
	}
	if ts.Year() != 2024 || ts.Hour() != 10 {
		t.Errorf("Unexpected parse result %s", ts)
	}

	if _, err := ParseTime("2024-01-02"); err == nil {
		t.Error("Expected error for non-Jira timestamp format")
	}
}
