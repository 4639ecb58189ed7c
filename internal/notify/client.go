package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// Notifier service endpoints.
const (
	PathConfirmation = "/api/send-confirmation-email"
	PathAssignment   = "/api/send-assignment-email"
	PathResolution   = "/api/send-resolution-email"
)

// ConfirmationRequest is the body of PathConfirmation.
type ConfirmationRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// AssignmentRequest is the body of PathAssignment.
type AssignmentRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Contact     string `json:"contact" validate:"required"`
}

// ResolutionRequest is the body of PathResolution.
type ResolutionRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Title             string `json:"title" validate:"required"`
	ResolutionDetails string `json:"resolutionDetails" validate:"required"`
}

// Client calls the notifier service over HTTP/JSON.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. timeout bounds each call when the caller's
// context has no earlier deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) NotifyTicketCreated(ctx context.Context, email, title, description string) error {
	return c.post(ctx, PathConfirmation, ConfirmationRequest{Email: email, Title: title, Description: description})
}

func (c *Client) NotifyAssigned(ctx context.Context, email, title, description, department, contact string) error {
	return c.post(ctx, PathAssignment, AssignmentRequest{
		Email:       email,
		Title:       title,
		Description: description,
		Department:  department,
		Contact:     contact,
	})
}

func (c *Client) NotifyResolved(ctx context.Context, email, title, resolutionDetails string) error {
	return c.post(ctx, PathResolution, ResolutionRequest{Email: email, Title: title, ResolutionDetails: resolutionDetails})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewDeliveryError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewDeliveryError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewDeliveryError(fmt.Errorf("notifier %s returned %s: %s", path, resp.Status, strings.TrimSpace(string(snippet))))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
