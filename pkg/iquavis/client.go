// Package iquavis is a lightweight client for the iQUAVIS project
// management API: password-grant auth, project and task listing, and
// partial task updates.
package iquavis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL points at the internal iQUAVIS API endpoint.
const DefaultBaseURL = "http://rdgpm0701/iquavis-api"

// DefaultTimeout bounds each HTTP call.
const DefaultTimeout = 30 * time.Second

// DefaultPageSize is the `count` query parameter sent on list calls.
const DefaultPageSize = 10000

const bodySnippetLimit = 200

// Record is a task or project object as returned by the service. The
// shape is service-defined and treated as opaque nested data.
type Record map[string]any

// ClientOptions configures a Client. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	PageSize   int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the iQUAVIS API with a bearer token obtained via
// Login. Methods are safe for sequential use from a single goroutine.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
	token      string
}

// NewClient constructs a Client from options, applying defaults for any
// zero fields.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		pageSize:   pageSize,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Login authenticates via password grant against /token and stores the
// access token for subsequent calls.
func (c *Client) Login(ctx context.Context, userID, password string) error {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {userID},
		"password":   {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	c.logger.Debug("login response", zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Status: resp.StatusCode, Message: snippet(body)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return &AuthError{Message: "no access_token in response"}
	}
	c.token = token.AccessToken
	return nil
}

// ListProjects returns projects, optionally filtered by name.
func (c *Client) ListProjects(ctx context.Context, name string) ([]Record, error) {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	return c.getList(ctx, "/v1/projects", query)
}

// ListTasksOptions filters a task listing.
type ListTasksOptions struct {
	// Name filters tasks by name.
	Name string
	// Include names related resources to embed. Sent comma-separated;
	// the endpoints expect a single joined value, not repeated keys.
	Include []string
	// Count overrides the default page size.
	Count int
}

// ListTasks returns the tasks of a project. Items wrapped in a {"Task":
// {...}} envelope are unwrapped.
func (c *Client) ListTasks(ctx context.Context, projectID string, opts ListTasksOptions) ([]Record, error) {
	query := url.Values{}
	if opts.Name != "" {
		query.Set("name", opts.Name)
	}
	if len(opts.Include) > 0 {
		query.Set("include", strings.Join(opts.Include, ","))
	}
	if opts.Count > 0 {
		query.Set("count", strconv.Itoa(opts.Count))
	}
	items, err := c.getList(ctx, "/v1/projects/"+url.PathEscape(projectID)+"/tasks", query)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		items[i] = UnwrapTask(item)
	}
	return items, nil
}

// UpdateTask submits a partial task update. Fields absent from payload
// are left untouched by the service.
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, payload map[string]any) error {
	op := fmt.Sprintf("update task %s", taskID)
	body, err := json.Marshal(payload)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	path := "/v1/projects/" + url.PathEscape(projectID) + "/tasks/" + url.PathEscape(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	c.setJSONHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	c.logger.Debug("update response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &RemoteError{Op: op, Status: resp.StatusCode, Body: snippet(respBody)}
	}
	return nil
}

// getList performs an authenticated GET and decodes a JSON array. A
// non-array response normalizes to an empty list rather than failing,
// matching the service's occasionally irregular endpoints.
func (c *Client) getList(ctx context.Context, path string, query url.Values) ([]Record, error) {
	if query.Get("count") == "" {
		query.Set("count", strconv.Itoa(c.pageSize))
	}
	op := "list " + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	c.setJSONHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	c.logger.Debug("list response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Op: op, Status: resp.StatusCode, Body: snippet(body)}
	}

	var items []Record
	if err := json.Unmarshal(body, &items); err != nil {
		return []Record{}, nil
	}
	return items, nil
}

func (c *Client) setJSONHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodySnippetLimit {
		s = s[:bodySnippetLimit]
	}
	return s
}

// ProjectIdentity extracts the canonical id and name from a project
// record, tolerating capitalization variants.
func ProjectIdentity(p Record) (string, string) {
	id := firstString(p, "Id", "id", "ID")
	name := firstString(p, "Name", "name")
	return id, name
}

// UnwrapTask unwraps a task possibly enveloped as {"Task": {...}}.
func UnwrapTask(item Record) Record {
	if inner, ok := item["Task"].(map[string]any); ok {
		return Record(inner)
	}
	return item
}

func firstString(r Record, keys ...string) string {
	for _, key := range keys {
		if value, ok := r[key]; ok && value != nil {
			return fmt.Sprint(value)
		}
	}
	return ""
}
