// Package jira fetches issues and their changelogs from the Jira REST API.
// It deals exclusively in raw DTOs; all interpretation of changelog history
// happens downstream in the stagedates package.
package jira

import (
	"time"
)

// Client is the interface for interacting with Jira.
type Client interface {
	SearchIssues(jql string, startAt int, maxResults int) (*SearchResponse, error)
	SearchAllIssues(jql string) ([]IssueDTO, error)
	Myself() (*MyselfDTO, error)
}

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string

	// Basic auth (Jira Cloud: email + API token)
	Username string
	Password string

	// Personal Access Token (Jira Data Center)
	Token string

	// Performance Settings
	RequestDelay time.Duration
	PageSize     int
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return newHTTPClient(cfg)
}
