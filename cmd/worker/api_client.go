package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/service"
)

const (
	apiTimeout    = 2 * time.Minute
	healthTimeout = 2 * time.Second
)

// APIClient drives the sync endpoints of a running api process, so the flush runs
// inside the process that owns the local stores.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: apiTimeout},
	}
}

type apiReply struct {
	OK      bool                `json:"ok"`
	Error   string              `json:"error"`
	Result  service.FlushResult `json:"result"`
	Status  service.Status      `json:"status"`
	Updates []string            `json:"updates"`
	Deletes []string            `json:"deletes"`
}

func (c *APIClient) Sync(ctx context.Context) (service.FlushResult, service.Status, error) {
	reply, err := c.call(ctx, http.MethodPost, "/api/v1/projects/sync")
	if err != nil {
		return service.FlushResult{}, service.Status{}, err
	}
	return reply.Result, reply.Status, nil
}

func (c *APIClient) Pending(ctx context.Context) ([]string, []string, error) {
	reply, err := c.call(ctx, http.MethodGet, "/api/v1/projects/sync/pending")
	if err != nil {
		return nil, nil, err
	}
	return reply.Updates, reply.Deletes, nil
}

// Reachable reports whether an api process answers its health check.
func (c *APIClient) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

func (c *APIClient) call(ctx context.Context, method, path string) (apiReply, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return apiReply{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return apiReply{}, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	var reply apiReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return apiReply{}, fmt.Errorf("decode %s response: %w", path, err)
	}
	if resp.StatusCode >= 400 || !reply.OK {
		return apiReply{}, fmt.Errorf("api returned status %d: %s", resp.StatusCode, reply.Error)
	}
	return reply, nil
}
