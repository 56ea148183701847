package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/utils"
)

const (
	hyperlinksPath = "/api/hyperlinks"
	maxErrorBody   = 512
)

// HTTPClient talks to the savelater server API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

type Option func(*HTTPClient)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *HTTPClient) {
		c.token = token
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// NewHTTPClient returns a client for the server at baseURL (scheme + host, optional path prefix).
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) List(ctx context.Context, owner string) ([]domain.Hyperlink, error) {
	const op = "remote.HTTPClient.List"

	q := url.Values{"owner": []string{owner}}
	resp, err := c.do(ctx, http.MethodGet, hyperlinksPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer utils.Close(resp.Body)

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var list []domain.Hyperlink
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%s: %w: decode response: %v", op, domain.ErrRemoteUnavailable, err)
	}

	for i := range list {
		list[i] = list[i].RemoteView()
	}
	return list, nil
}

func (c *HTTPClient) Upsert(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error) {
	const op = "remote.HTTPClient.Upsert"

	body, err := json.Marshal(h.RemoteView())
	if err != nil {
		return domain.Hyperlink{}, fmt.Errorf("%s: marshal hyperlink: %w", op, err)
	}

	resp, err := c.do(ctx, http.MethodPut, hyperlinksPath+"/"+url.PathEscape(h.ID), body)
	if err != nil {
		return domain.Hyperlink{}, fmt.Errorf("%s: %w", op, err)
	}
	defer utils.Close(resp.Body)

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return domain.Hyperlink{}, fmt.Errorf("%s: %w", op, err)
	}

	var canonical domain.Hyperlink
	if err := json.NewDecoder(resp.Body).Decode(&canonical); err != nil {
		return domain.Hyperlink{}, fmt.Errorf("%s: %w: decode response: %v", op, domain.ErrRemoteUnavailable, err)
	}
	return canonical.RemoteView(), nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	const op = "remote.HTTPClient.Delete"

	resp, err := c.do(ctx, http.MethodDelete, hyperlinksPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer utils.Close(resp.Body)

	if err := expectStatus(resp, http.StatusNoContent, http.StatusOK, http.StatusNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrRemoteUnavailable, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteUnavailable, method, path, err)
	}
	return resp, nil
}

func expectStatus(resp *http.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrRemoteUnavailable,
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(snippet))
}
