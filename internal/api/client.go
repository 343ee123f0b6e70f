package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Jar     http.CookieJar
	Logger  *zap.Logger
}

// Client talks to the chat backend's REST API. Auth travels as cookies in Jar.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

// New creates a REST client for the backend at opts.BaseURL.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.Jar != nil {
		rc.SetCookieJar(opts.Jar)
	}

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader(requestIDHeader, uuid.NewString())
		return nil
	})
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("api request",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("took", resp.Time()),
			zap.String("request_id", resp.Request.Header.Get(requestIDHeader)),
		)
		return nil
	})

	return &Client{http: rc, baseURL: opts.BaseURL, logger: logger}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckAuth returns the user the stored cookies authenticate as.
func (c *Client) CheckAuth(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/check", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for an auth cookie.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var u User
	body := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout invalidates the auth cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// ListUsers returns the users shown in the sidebar.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/messages/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListMessages returns the conversation with userID.
func (c *Client) ListMessages(ctx context.Context, userID string) ([]Message, error) {
	var msgs []Message
	params := map[string]string{"userId": userID}
	if err := c.do(ctx, http.MethodGet, "/messages/{userId}", params, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a message to userID and returns the stored message.
func (c *Client) SendMessage(ctx context.Context, userID string, d Draft) (*Message, error) {
	var m Message
	params := map[string]string{"userId": userID}
	if err := c.do(ctx, http.MethodPost, "/messages/send/{userId}", params, d, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListGroups returns the groups the current user belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.do(ctx, http.MethodGet, "/groups", nil, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a group.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	var g Group
	if err := c.do(ctx, http.MethodPost, "/groups", nil, req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroupMessages returns the messages posted to groupID.
func (c *Client) ListGroupMessages(ctx context.Context, groupID string) ([]GroupMessage, error) {
	var msgs []GroupMessage
	params := map[string]string{"groupId": groupID}
	if err := c.do(ctx, http.MethodGet, "/groups/{groupId}/messages", params, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendGroupMessage posts a message to groupID.
func (c *Client) SendGroupMessage(ctx context.Context, groupID string, d Draft) (*GroupMessage, error) {
	var m GroupMessage
	params := map[string]string{"groupId": groupID}
	if err := c.do(ctx, http.MethodPost, "/groups/{groupId}/messages", params, d, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	var errBody errorBody
	req := c.http.R().
		SetContext(ctx).
		SetError(&errBody)
	if params != nil {
		req.SetPathParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &Error{
			Status:  resp.StatusCode(),
			Method:  method,
			Path:    path,
			Message: errBody.text(),
		}
		c.logger.Warn("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}
	return nil
}
