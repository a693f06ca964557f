// Package todoist is the sole point of contact with the external task
// tracker. It translates the importance scale to Todoist priorities, embeds
// the auxiliary submitter/source fields the tracker has no native slot for,
// and resolves the target project once per process.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/domain"
)

const (
	defaultBaseURL  = "https://api.todoist.com/rest/v2"
	defaultStatsURL = "https://api.todoist.com/api/v1/tasks/completed/stats"

	defaultProjectName = "FaxMeMaybe"
)

// Task mirrors the tracker's task resource.
type Task struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Labels      []string `json:"labels"`
	Due         *Due     `json:"due"`
	URL         string   `json:"url"`
	IsCompleted bool     `json:"is_completed"`
	CompletedAt string   `json:"completed_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// Due is the tracker's due specification.
type Due struct {
	Date      string `json:"date"`
	String    string `json:"string"`
	Recurring bool   `json:"is_recurring"`
}

// Project mirrors the tracker's project resource.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductivityStats is the account-wide completed-task figure. It comes from
// an endpoint unrelated to the per-project task list.
type ProductivityStats struct {
	CompletedCount int `json:"completed_count"`
}

// Config holds client construction parameters. BaseURL and StatsURL exist so
// tests can point the client at a local server.
type Config struct {
	Token       string
	ProjectName string
	BaseURL     string
	StatsURL    string
	Timeout     time.Duration
}

// Client is the tracker REST client. A single Client is shared by all
// requests; the resolved project id is cached for the process lifetime.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	statsURL    string
	token       string
	projectName string
	logger      *zap.Logger

	// Concurrent first-use resolutions race benignly: create-if-absent is
	// idempotent against the tracker and whichever id wins is equally valid.
	projectID atomic.Pointer[string]
}

// NewClient builds a tracker client from the provided configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.StatsURL == "" {
		cfg.StatsURL = defaultStatsURL
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = defaultProjectName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		statsURL:    cfg.StatsURL,
		token:       cfg.Token,
		projectName: cfg.ProjectName,
		logger:      logger,
	}
}

type createTaskRequest struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id"`
	Priority    int      `json:"priority"`
	DueString   string   `json:"due_string,omitempty"`
	DueLang     string   `json:"due_lang,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// CreateTask creates a task in the tracker project and returns the created
// task. It never retries; any failure propagates as an UPSTREAM error for the
// caller to classify.
func (c *Client) CreateTask(ctx context.Context, draft *domain.NewTodo) (*Task, error) {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "failed to resolve tracker project", err)
	}

	req := createTaskRequest{
		Content:     EncodeContent(draft.Todo, draft.From),
		Description: EncodeDescription(draft.Description, draft.Source),
		ProjectID:   projectID,
		Priority:    PriorityFromImportance(draft.Importance),
		Labels:      draft.Labels,
	}
	if draft.DueDate != "" {
		req.DueString = draft.DueDate
		req.DueLang = "en"
	}

	var task Task
	if err := c.call(ctx, http.MethodPost, c.baseURL+"/tasks", req, &task); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "tracker rejected task creation", err)
	}
	return &task, nil
}

// GetTask fetches one task. A tracker 404 means the task was completed and
// purged or deleted upstream; that is reported as (nil, nil), not an error.
func (c *Client) GetTask(ctx context.Context, todoistID string) (*Task, error) {
	var task Task
	err := c.call(ctx, http.MethodGet, c.baseURL+"/tasks/"+url.PathEscape(todoistID), nil, &task)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrCodeUpstream, "failed to fetch task", err)
	}
	return &task, nil
}

// GetTasks lists the active tasks in the tracker project.
func (c *Client) GetTasks(ctx context.Context) ([]Task, error) {
	projectID, err := c.ProjectID(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "failed to resolve tracker project", err)
	}

	endpoint := fmt.Sprintf("%s/tasks?project_id=%s", c.baseURL, url.QueryEscape(projectID))
	var tasks []Task
	if err := c.call(ctx, http.MethodGet, endpoint, nil, &tasks); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "failed to list tasks", err)
	}
	return tasks, nil
}

// CompleteTask closes a task. False means the task could no longer be acted
// on remotely; callers treat that as reportable but non-fatal.
func (c *Client) CompleteTask(ctx context.Context, todoistID string) bool {
	return c.postAction(ctx, todoistID, "close")
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, todoistID string) bool {
	return c.postAction(ctx, todoistID, "reopen")
}

// DeleteTask deletes a task from the tracker.
func (c *Client) DeleteTask(ctx context.Context, todoistID string) bool {
	err := c.call(ctx, http.MethodDelete, c.baseURL+"/tasks/"+url.PathEscape(todoistID), nil, nil)
	if err != nil {
		c.logger.Warn("tracker delete failed", zap.String("todoist_id", todoistID), zap.Error(err))
		return false
	}
	return true
}

// GetLabels lists the account's labels. Labels are advisory, so any failure
// degrades to an empty list instead of blocking the caller.
func (c *Client) GetLabels(ctx context.Context) []domain.Label {
	var labels []domain.Label
	if err := c.call(ctx, http.MethodGet, c.baseURL+"/labels", nil, &labels); err != nil {
		c.logger.Warn("failed to fetch labels", zap.Error(err))
		return []domain.Label{}
	}
	if labels == nil {
		labels = []domain.Label{}
	}
	return labels
}

// GetProductivityStats fetches the account-wide completed count. Nil means
// the figure is unavailable; it never fails into the caller's critical path.
func (c *Client) GetProductivityStats(ctx context.Context) *ProductivityStats {
	var stats ProductivityStats
	if err := c.call(ctx, http.MethodGet, c.statsURL, nil, &stats); err != nil {
		c.logger.Warn("failed to fetch productivity stats", zap.Error(err))
		return nil
	}
	return &stats
}

// ProjectID returns the tracker project id, resolving it on first use: the
// project list is searched for a case-insensitive name match and the project
// is created when absent. The cache lives for the process lifetime.
func (c *Client) ProjectID(ctx context.Context) (string, error) {
	if cached := c.projectID.Load(); cached != nil {
		return *cached, nil
	}

	var projects []Project
	if err := c.call(ctx, http.MethodGet, c.baseURL+"/projects", nil, &projects); err != nil {
		return "", err
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Name, c.projectName) {
			c.projectID.Store(&projects[i].ID)
			return projects[i].ID, nil
		}
	}

	created, err := c.createProject(ctx)
	if err != nil {
		return "", err
	}
	c.projectID.Store(&created.ID)
	c.logger.Info("tracker project created", zap.String("project_id", created.ID), zap.String("name", created.Name))
	return created.ID, nil
}

func (c *Client) createProject(ctx context.Context) (*Project, error) {
	payload := map[string]string{
		"name":  c.projectName,
		"color": "red",
	}
	var project Project
	if err := c.call(ctx, http.MethodPost, c.baseURL+"/projects", payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) postAction(ctx context.Context, todoistID, action string) bool {
	endpoint := fmt.Sprintf("%s/tasks/%s/%s", c.baseURL, url.PathEscape(todoistID), action)
	if err := c.call(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		c.logger.Warn("tracker action failed",
			zap.String("todoist_id", todoistID),
			zap.String("action", action),
			zap.Error(err))
		return false
	}
	return true
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("tracker returned status %d", e.status)
	}
	return fmt.Sprintf("tracker returned status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}

func (c *Client) call(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
