package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventhub/models"
)

// APIError is a non-2xx answer from the server, carrying the status and the
// server's message verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a 401. The CLI clears the session and
// asks the user to log in again when it sees one.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client wraps the eventhub HTTP API. Protected calls take the token from
// the session; public calls work logged out.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
}

type EventInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Category     string    `json:"category,omitempty"`
	MaxAttendees int       `json:"maxAttendees,omitempty"`
	IsPublished  bool      `json:"isPublished"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/signup", body, false, &out)
	return out.User, err
}

// Login authenticates and, on success, persists the returned token in the
// session so subsequent commands are authenticated.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, false, &out); err != nil {
		return models.User{}, err
	}
	if err := c.session.Login(out.Token); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	err := c.do(ctx, http.MethodGet, "/events", nil, false, &out)
	return out, err
}

func (c *Client) Event(ctx context.Context, id string) (models.Event, error) {
	var out models.Event
	err := c.do(ctx, http.MethodGet, "/events/"+id, nil, false, &out)
	return out, err
}

func (c *Client) CreateEvent(ctx context.Context, in EventInput) (models.Event, error) {
	var out struct {
		Event models.Event `json:"event"`
	}
	err := c.do(ctx, http.MethodPost, "/events", in, true, &out)
	return out.Event, err
}

func (c *Client) UpdateEvent(ctx context.Context, id string, in EventInput) (models.Event, error) {
	var out struct {
		Event models.Event `json:"event"`
	}
	err := c.do(ctx, http.MethodPut, "/events/"+id, in, true, &out)
	return out.Event, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+id, nil, true, nil)
}

func (c *Client) Attend(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, "/events/"+eventID+"/register", nil, true, nil)
}

func (c *Client) Unattend(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+eventID+"/register", nil, true, nil)
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/profile", nil, true, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodPut, "/profile", map[string]string{"name": name}, true, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (models.DashboardStats, error) {
	var out models.DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, true, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.session.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: serverMessage(raw)}
		// a rejected token is dead weight, drop it
		if apiErr.Status == http.StatusUnauthorized && authed {
			c.session.Logout()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}
