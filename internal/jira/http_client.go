package jira

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 25

// maxParallelPages bounds the concurrent page fetches after the first page
// has revealed the total result count.
const maxParallelPages = 4

type httpClient struct {
	cfg        Config
	httpClient *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
}

func newHTTPClient(cfg Config) Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	return &httpClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (c *httpClient) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *httpClient) authenticateRequest(req *http.Request) {
	// Prioritize Personal Access Token (PAT)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
		return
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
}

func (c *httpClient) get(path string, query url.Values, out interface{}) error {
	c.throttle()

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	c.authenticateRequest(req)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Jira request completed")

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("jira rejected credentials for %s (HTTP %d)", path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira returned HTTP %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// SearchIssues fetches a single page of search results with changelogs expanded.
func (c *httpClient) SearchIssues(jql string, startAt int, maxResults int) (*SearchResponse, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("startAt", fmt.Sprintf("%d", startAt))
	query.Set("maxResults", fmt.Sprintf("%d", maxResults))
	query.Set("expand", "changelog")
	query.Set("fields", "status,created")

	var result SearchResponse
	if err := c.get("/rest/api/2/search", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchAllIssues pages through the full result set for a JQL query. The
// first page is fetched synchronously to learn the total; the remaining
// pages are fetched with bounded parallelism and reassembled in order.
func (c *httpClient) SearchAllIssues(jql string) ([]IssueDTO, error) {
	pageSize := c.cfg.PageSize

	first, err := c.SearchIssues(jql, 0, pageSize)
	if err != nil {
		return nil, err
	}

	total := first.Total
	log.Info().Int("total", total).Str("jql", jql).Msg("Fetching issues from Jira")

	if total <= len(first.Issues) {
		return first.Issues, nil
	}

	pageCount := (total + pageSize - 1) / pageSize
	pages := make([][]IssueDTO, pageCount)
	pages[0] = first.Issues

	var g errgroup.Group
	g.SetLimit(maxParallelPages)
	for p := 1; p < pageCount; p++ {
		p := p
		g.Go(func() error {
			resp, err := c.SearchIssues(jql, p*pageSize, pageSize)
			if err != nil {
				return err
			}
			pages[p] = resp.Issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	issues := make([]IssueDTO, 0, total)
	for _, page := range pages {
		issues = append(issues, page...)
	}
	return issues, nil
}

// Myself verifies the configured credentials against the current-user endpoint.
func (c *httpClient) Myself() (*MyselfDTO, error) {
	var me MyselfDTO
	if err := c.get("/rest/api/2/myself", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
