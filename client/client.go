package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/lifecycle"
	"github.com/oybek/wellness/model"
)

// Client talks to the session REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Status  string `json:"status"`
	Token   string `json:"token"`
	Message string `json:"message"`
	Data    struct {
		Session  entity.Session   `json:"session"`
		Sessions []entity.Session `json:"sessions"`
		User     entity.User      `json:"user"`
	} `json:"data"`
}

func kindFor(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return lifecycle.ErrUnauthorized
	case code == http.StatusNotFound:
		return lifecycle.ErrNotFound
	case code >= http.StatusInternalServerError:
		return lifecycle.ErrStorage
	default:
		return lifecycle.ErrInvalidInput
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, lifecycle.NewError(kindFor(resp.StatusCode), msg,
			fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}
	return &env, nil
}

func (c *Client) Register(ctx context.Context, creds model.Credentials) (entity.User, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (entity.User, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds model.Credentials) (entity.User, error) {
	env, err := c.do(ctx, http.MethodPost, path, creds)
	if err != nil {
		return entity.User{}, err
	}
	c.SetToken(env.Token)
	return env.Data.User, nil
}

func (c *Client) ListPublished(ctx context.Context) ([]entity.Session, error) {
	env, err := c.do(ctx, http.MethodGet, "/sessions", nil)
	if err != nil {
		return nil, err
	}
	return env.Data.Sessions, nil
}

func (c *Client) ListOwned(ctx context.Context) ([]entity.Session, error) {
	env, err := c.do(ctx, http.MethodGet, "/sessions/my-sessions", nil)
	if err != nil {
		return nil, err
	}
	return env.Data.Sessions, nil
}

func (c *Client) GetOwned(ctx context.Context, sessionID string) (entity.Session, error) {
	env, err := c.do(ctx, http.MethodGet, "/sessions/my-sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return entity.Session{}, err
	}
	return env.Data.Session, nil
}

func (c *Client) SaveDraft(ctx context.Context, in model.SessionInput) (entity.Session, error) {
	env, err := c.do(ctx, http.MethodPost, "/sessions/my-sessions/save-draft", in)
	if err != nil {
		return entity.Session{}, err
	}
	return env.Data.Session, nil
}

func (c *Client) Publish(ctx context.Context, in model.SessionInput) (entity.Session, error) {
	env, err := c.do(ctx, http.MethodPost, "/sessions/my-sessions/publish", in)
	if err != nil {
		return entity.Session{}, err
	}
	return env.Data.Session, nil
}

func (c *Client) DeleteOwned(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/my-sessions/"+url.PathEscape(sessionID), nil)
	return err
}
