package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/KaityXD/choas-lib/internal/client/models"
	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/netx"
)

type Client interface {
	Login(ctx context.Context, password string) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	List(ctx context.Context, q ListQuery) (*models.Page, error)
	Delete(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// ListQuery mirrors the query string of GET /api/files. Zero values are left
// out so the server defaults apply.
type ListQuery struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v
}

// HTTPClient talks to the CDN JSON API. The bearer token obtained by Login
// is kept in memory only.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

func (c *HTTPClient) Login(ctx context.Context, password string) error {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.LoginResponse
	if err := c.do(req, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return ErrUnexpected
	}

	c.setToken(out.Token)
	return nil
}

// Logout revokes the server session and forgets the token. The token is
// dropped even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}
	defer c.setToken("")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/logout", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Upload sends r as name and returns the public URL the server assigned.
func (c *HTTPClient) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	req, err := netx.NewMultipartUpload(ctx, c.baseURL+"/upload", "file", name, r)
	if err != nil {
		return "", err
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *HTTPClient) List(ctx context.Context, q ListQuery) (*models.Page, error) {
	u := c.baseURL + "/api/files"
	if v := q.values().Encode(); v != "" {
		u += "?" + v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var page models.Page
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) Delete(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/files/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// do sends req with the current bearer token and decodes a 2xx JSON body into
// out when out is non-nil. Failures are mapped onto the shared sentinels.
func (c *HTTPClient) do(req *http.Request, out any) error {
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	msg := netx.ErrorMessage(resp)

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = common.ErrInvalidName
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		sentinel = common.ErrPayloadTooLarge
	case resp.StatusCode == http.StatusTooManyRequests && msg == common.ErrTooManyLogins.Error():
		sentinel = common.ErrTooManyLogins
	case resp.StatusCode == http.StatusTooManyRequests:
		sentinel = common.ErrQuotaExceeded
	case resp.StatusCode == http.StatusServiceUnavailable:
		sentinel = ErrUnavailable
	case resp.StatusCode >= 500:
		sentinel = common.ErrorInternal
	default:
		sentinel = ErrUnexpected
	}

	if msg == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
