package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/taskdeck/internal/models"
)

// TaskFilter narrows a task listing. Zero values are omitted from the
// query string.
type TaskFilter struct {
	Status string
	Limit  int
}

// TaskRequest is the payload for creating or updating a task.
// DueDate and AssigneeUID are nullable: a nil pointer clears the field
// server-side.
type TaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *string             `json:"due_date"`
	AssigneeUID *int64              `json:"assignee_uid"`
}

type taskEnvelope struct {
	Task models.Task `json:"task"`
}

type taskListEnvelope struct {
	Tasks []models.Task `json:"tasks"`
}

// Tasks lists tasks visible to the current user, optionally filtered.
func (c *Client) Tasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var env taskListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/tasks", query, nil, &env); err != nil {
		return nil, err
	}
	return env.Tasks, nil
}

// CreateTask creates a task and returns the stored copy.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*models.Task, error) {
	var env taskEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.Task, nil
}

// UpdateTask replaces the editable fields of the task with the given ID.
func (c *Client) UpdateTask(ctx context.Context, id int64, req TaskRequest) (*models.Task, error) {
	var env taskEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), nil, req, &env); err != nil {
		return nil, err
	}
	return &env.Task, nil
}

// DeleteTask removes the task with the given ID.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil, nil)
}

// DashboardStats fetches the aggregate counters for the dashboard.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var env struct {
		Stats models.DashboardStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Stats, nil
}
