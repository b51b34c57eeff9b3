// Package api is the client for the remote reading-plan service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tewodrosm/scripture-notify/internal/model"
)

// DeviceSource supplies the installation's device id for the
// X-Device-ID request header.
type DeviceSource interface {
	ID() (string, error)
}

// APIError is a non-2xx response from the remote service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d, body %s", e.StatusCode, e.Body)
}

// IsNetworkError reports whether err is a transport-level failure, as
// opposed to a response the server actually produced.
func IsNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

type Client struct {
	baseURL string
	device  DeviceSource
	http    *http.Client
}

func NewClient(baseURL string, device DeviceSource) *Client {
	return &Client{
		baseURL: baseURL,
		device:  device,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	deviceID, err := c.device.ID()
	if err != nil {
		return fmt.Errorf("device id: %w", err)
	}
	req.Header.Set("X-Device-ID", deviceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) CreatePlan(ctx context.Context, req model.CreatePlanRequest) (model.CreatePlanResponse, error) {
	var resp model.CreatePlanResponse
	if err := c.do(ctx, http.MethodPost, "/plan/create", req, &resp); err != nil {
		return model.CreatePlanResponse{}, err
	}
	return resp, nil
}

// NextUnit returns the next pending unit for the plan, or nil when the
// server reports nothing currently due.
func (c *Client) NextUnit(ctx context.Context, planID string) (*model.Unit, error) {
	var unit *model.Unit
	if err := c.do(ctx, http.MethodGet, "/plan/"+url.PathEscape(planID)+"/next-unit", nil, &unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (c *Client) Progress(ctx context.Context, planID string) (model.Progress, error) {
	var p model.Progress
	if err := c.do(ctx, http.MethodGet, "/plan/"+url.PathEscape(planID)+"/progress", nil, &p); err != nil {
		return model.Progress{}, err
	}
	return p, nil
}

func (c *Client) MarkUnitRead(ctx context.Context, unitID string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPut, "/unit/"+url.PathEscape(unitID)+"/read", nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("mark unit %s read: not acknowledged", unitID)
	}
	return nil
}

func (c *Client) Books(ctx context.Context) ([]string, error) {
	var books []string
	if err := c.do(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) BookMetadata(ctx context.Context, book string) (model.BookMetadata, error) {
	var meta model.BookMetadata
	if err := c.do(ctx, http.MethodGet, "/metadata/"+url.PathEscape(book), nil, &meta); err != nil {
		return model.BookMetadata{}, err
	}
	return meta, nil
}

func (c *Client) RandomVerse(ctx context.Context) (model.RandomVerse, error) {
	var v model.RandomVerse
	if err := c.do(ctx, http.MethodPost, "/random-verse", nil, &v); err != nil {
		return model.RandomVerse{}, err
	}
	return v, nil
}

// Ping probes connectivity to the remote service. Any response, even an
// error status, proves the network is up; only transport failures count
// as offline.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/books", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
