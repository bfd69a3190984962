// Package api is a typed HTTP client for the Pokédex backend: the proxied
// catalog endpoints, the per-user favorites and team lists, and the auth routes.
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
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
)

// hiddenTypes are type names the catalog never offers as filters.
var hiddenTypes = map[string]bool{"unknown": true, "shadow": true}

// StatusError is returned for non-2xx responses. Msg holds the backend's
// "msg" field when present.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("api: %s %s: %d: %s", e.Method, e.Path, e.Code, e.Msg)
	}
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Unwrap maps 401 and 404 onto the package sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Message returns the text a user should see for err: the backend's msg
// when the error carries one, otherwise fallback.
func Message(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return fallback
}

// Client calls the backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether the client carries a bearer token.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// SetToken replaces the bearer token, e.g. after login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// --- Catalog ---

// ListPokemon fetches one page of the catalog listing.
func (c *Client) ListPokemon(ctx context.Context, limit, offset int) (Page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var page Page
	err := c.do(ctx, http.MethodGet, "/api/pokemon?"+q.Encode(), nil, &page)
	return page, err
}

// Pokemon fetches the detail of a single entry by name.
func (c *Client) Pokemon(ctx context.Context, name string) (Pokemon, error) {
	var p Pokemon
	err := c.do(ctx, http.MethodGet, "/api/pokemon/"+url.PathEscape(name), nil, &p)
	return p, err
}

// Types lists the type names usable as filters, without "unknown" and "shadow".
func (c *Client) Types(ctx context.Context) ([]NamedResource, error) {
	var list TypeList
	if err := c.do(ctx, http.MethodGet, "/api/type", nil, &list); err != nil {
		return nil, err
	}
	types := make([]NamedResource, 0, len(list.Results))
	for _, t := range list.Results {
		if hiddenTypes[t.Name] {
			continue
		}
		types = append(types, t)
	}
	return types, nil
}

// PokemonByType lists every entry of the named type.
func (c *Client) PokemonByType(ctx context.Context, name string) (Page, error) {
	var page Page
	err := c.do(ctx, http.MethodGet, "/api/type/"+url.PathEscape(name), nil, &page)
	return page, err
}

// Health checks the backend's liveness route.
func (c *Client) Health(ctx context.Context) (string, error) {
	var h health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return "", err
	}
	return h.Status, nil
}

// --- Favorites and team ---

// Favorites lists the current user's favorites.
func (c *Client) Favorites(ctx context.Context) ([]Member, error) {
	var members []Member
	err := c.do(ctx, http.MethodGet, "/api/me/favorites", nil, &members)
	return members, err
}

// AddFavorite stores a new favorite.
func (c *Client) AddFavorite(ctx context.Context, in MemberInput) (Member, error) {
	in.Favorite = true
	var m Member
	err := c.do(ctx, http.MethodPost, "/api/me/favorites", in, &m)
	return m, err
}

// RemoveFavorite deletes a favorite by its member ID.
func (c *Client) RemoveFavorite(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/me/favorites/"+strconv.Itoa(id), nil, nil)
}

// Team lists the current user's battle team.
func (c *Client) Team(ctx context.Context) ([]Member, error) {
	var members []Member
	err := c.do(ctx, http.MethodGet, "/api/me/team", nil, &members)
	return members, err
}

// AddToTeam stores a new team member. The backend rejects a seventh member.
func (c *Client) AddToTeam(ctx context.Context, in MemberInput) (Member, error) {
	in.Team = true
	var m Member
	err := c.do(ctx, http.MethodPost, "/api/me/team", in, &m)
	return m, err
}

// RemoveFromTeam deletes a team member by its member ID.
func (c *Client) RemoveFromTeam(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/me/team/"+strconv.Itoa(id), nil, nil)
}

// --- Auth ---

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, login, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{Login: login, Password: password}, &resp)
	return resp, err
}

// Register creates an account. The first account created becomes admin.
func (c *Client) Register(ctx context.Context, r Registration) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", r, &resp)
	return resp, err
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

// Users lists every account. Admin only.
func (c *Client) Users(ctx context.Context) ([]UserSummary, error) {
	var users []UserSummary
	err := c.do(ctx, http.MethodGet, "/api/auth/users", nil, &users)
	return users, err
}

// DeleteUser removes an account. Admin only; an admin cannot delete itself.
func (c *Client) DeleteUser(ctx context.Context, id int) (string, error) {
	var m message
	err := c.do(ctx, http.MethodDelete, "/api/auth/users/"+strconv.Itoa(id), nil, &m)
	return m.Msg, err
}

// ResetPassword sets a new password for the account matching loginOrEmail.
func (c *Client) ResetPassword(ctx context.Context, loginOrEmail, newPassword string) (string, error) {
	var m message
	err := c.do(ctx, http.MethodPost, "/api/auth/reset-password",
		passwordReset{LoginOrEmail: loginOrEmail, NewPassword: newPassword}, &m)
	return m.Msg, err
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
		var m message
		if err := json.NewDecoder(resp.Body).Decode(&m); err == nil {
			se.Msg = m.Msg
		}
		return se
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("api: decoding %s %s: %w", method, path, err)
	}
	return nil
}
