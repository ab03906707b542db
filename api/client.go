package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"collabmeet-client/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrMalformedResponse reports a backend reply missing expected identifier
// fields.
var ErrMalformedResponse = errors.New("malformed response from server")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Client talks JSON over HTTP to the CollabMeet backend. A Client with no
// session issues unauthenticated requests (register, group list); after
// SetSession every request carries the bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	mu      sync.RWMutex
	session *models.Session

	tracer   trace.Tracer
	requests metric.Int64Counter
	failures metric.Int64Counter
}

// NewClient creates a backend client for the given base URL, for example
// "http://localhost:8001/api".
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	meter := otel.Meter("collabmeet/api")
	requests, _ := meter.Int64Counter("api.requests")
	failures, _ := meter.Int64Counter("api.failures")

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      log,
		tracer:   otel.Tracer("collabmeet/api"),
		requests: requests,
		failures: failures,
	}
}

// SetSession installs the credential used for subsequent requests.
func (c *Client) SetSession(s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// Session returns the installed session, or nil before login.
func (c *Client) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// CurrentUser returns the authenticated user, or nil before login.
func (c *Client) CurrentUser() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	u := c.session.User
	return &u
}

// do issues one request and returns the raw response body. Non-2xx replies
// come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("path", path))
	c.requests.Add(ctx, 1, attrs)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.session != nil && c.session.Access != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Access)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		c.failures.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.failures.Add(ctx, 1, attrs)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.failures.Add(ctx, 1, attrs)
		apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	return data, nil
}

// Groups lists all groups open for registration.
func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	data, err := c.do(ctx, http.MethodGet, "/chat/groups/", nil)
	if err != nil {
		return nil, err
	}
	var groups []models.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, ErrMalformedResponse
	}
	return groups, nil
}

// Register creates an account in the given group and returns the resulting
// session. Some backend versions return a bare user object without tokens;
// that shape is accepted and yields a session with an empty credential.
func (c *Client) Register(ctx context.Context, username, email, password string, groupID int64) (*models.Session, error) {
	payload := map[string]interface{}{
		"username": username,
		"email":    email,
		"password": password,
		"group":    groupID,
	}
	data, err := c.do(ctx, http.MethodPost, "/auth/register/", payload)
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	payload := map[string]string{"email": email, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/auth/login/", payload)
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

func decodeSession(data []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrMalformedResponse
	}
	if sess.User.ID == 0 {
		// Bare user payload
		var user models.User
		if err := json.Unmarshal(data, &user); err != nil || user.ID == 0 {
			return nil, ErrMalformedResponse
		}
		sess.User = user
	}
	return &sess, nil
}

// CurrentGroup fetches the authenticated user's group with its members.
func (c *Client) CurrentGroup(ctx context.Context) (*models.Group, error) {
	data, err := c.do(ctx, http.MethodGet, "/chat/group/", nil)
	if err != nil {
		return nil, err
	}
	var group models.Group
	if err := json.Unmarshal(data, &group); err != nil || group.ID == 0 {
		return nil, ErrMalformedResponse
	}
	return &group, nil
}

// Messages fetches the group's message sequence in server order, oldest
// first.
func (c *Client) Messages(ctx context.Context) ([]models.Message, error) {
	data, err := c.do(ctx, http.MethodGet, "/chat/messages/", nil)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, ErrMalformedResponse
	}
	return messages, nil
}

// SendMessage posts a message. The backend replies either with
// {message: {...}, meeting: {...}} or with the bare message object; both are
// accepted. A message record without an identifier is dropped from the
// result, but an attached meeting proposal still comes through.
func (c *Client) SendMessage(ctx context.Context, content string) (*models.SendResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/chat/messages/", map[string]string{"content": content})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Message *models.Message `json:"message"`
		Meeting *models.Meeting `json:"meeting"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, ErrMalformedResponse
	}
	if envelope.Message == nil {
		var msg models.Message
		if err := json.Unmarshal(data, &msg); err == nil && msg.ID != 0 {
			envelope.Message = &msg
		}
	}
	if envelope.Message != nil && envelope.Message.ID == 0 {
		c.log.Warn("dropping message without identifier in send response")
		envelope.Message = nil
	}
	if envelope.Message == nil && envelope.Meeting == nil {
		c.log.Warn("send response carried neither message nor meeting", "body", string(data))
	}

	return &models.SendResult{Message: envelope.Message, Meeting: envelope.Meeting}, nil
}

// ScheduleMeeting persists the chosen time for a meeting.
func (c *Client) ScheduleMeeting(ctx context.Context, meetingID int64, slot time.Time) error {
	payload := map[string]interface{}{
		"meeting_id": meetingID,
		"time":       slot.UTC().Format(time.RFC3339),
	}
	_, err := c.do(ctx, http.MethodPost, "/chat/schedule/", payload)
	return err
}
