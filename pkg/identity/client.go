package identity

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
	"time"
)

// DefaultTimeout bounds each directory call when no http.Client is given.
const DefaultTimeout = 10 * time.Second

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAPIKey sets the server key sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// Client calls a hosted user directory over its REST API.
type Client struct {
	endpoint string
	project  string
	apiKey   string
	http     *http.Client
}

var _ Users = (*Client)(nil)

// NewClient returns a client for endpoint (for example
// https://cloud.example.com/v1) scoped to project.
func NewClient(endpoint, project string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("identity: endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("identity: invalid endpoint: %w", err)
	}
	c := &Client{
		endpoint: endpoint,
		project:  project,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type createUserRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Name   string `json:"name,omitempty"`
}

type userList struct {
	Total int    `json:"total"`
	Users []User `json:"users"`
}

func (c *Client) Create(ctx context.Context, id, email, phone, name string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}
	var user User
	err := c.do(ctx, http.MethodPost, "/users", nil, createUserRequest{
		UserID: id,
		Email:  email,
		Phone:  phone,
		Name:   name,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Get(ctx context.Context, id string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user)
	if err != nil {
		var derr *Error
		if errors.As(err, &derr) && derr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) List(ctx context.Context, queries ...Query) ([]User, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q.String())
	}
	var list userList
	if err := c.do(ctx, http.MethodGet, "/users", params, nil, &list); err != nil {
		return nil, err
	}
	return list.Users, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	target := c.endpoint + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("identity: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.project != "" {
		req.Header.Set("X-Appwrite-Project", c.project)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Code = resp.StatusCode
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("identity: decode response: %w", err)
	}
	return nil
}
