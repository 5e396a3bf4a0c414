package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/goph-catalog/internal/model"
)

// apiError is a non-2xx reply carrying the server's {"message"}.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// client talks to the catalog HTTP API.
type client struct {
	base   string
	bearer string
	hc     *http.Client
}

func newClient(base, bearer string) *client {
	return &client{
		base:   strings.TrimRight(base, "/"),
		bearer: bearer,
		hc:     &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends in as JSON (when non-nil) and decodes the reply into out (when non-nil).
func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var m struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &m) != nil || m.Message == "" {
			m.Message = strings.TrimSpace(string(raw))
		}
		return &apiError{Status: resp.StatusCode, Message: m.Message}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *client) Register(ctx context.Context, user, pass string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/register", credentials{user, pass}, &out)
	return out.Message, err
}

func (c *client) Login(ctx context.Context, user, pass string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", credentials{user, pass}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// listParams holds raw query values; empty ones are omitted.
type listParams struct {
	Name, MinPrice, MaxPrice, Page, Limit string
}

func (p listParams) encode() string {
	v := url.Values{}
	for k, s := range map[string]string{
		"name": p.Name, "minPrice": p.MinPrice, "maxPrice": p.MaxPrice, "page": p.Page, "limit": p.Limit,
	} {
		if s != "" {
			v.Set(k, s)
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *client) List(ctx context.Context, p listParams) (model.ProductPage, error) {
	var out model.ProductPage
	err := c.do(ctx, http.MethodGet, "/products"+p.encode(), nil, &out)
	return out, err
}

func (c *client) Get(ctx context.Context, id string) (model.Product, error) {
	var out model.Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *client) Create(ctx context.Context, in model.NewProduct) (model.Product, error) {
	var out model.Product
	err := c.do(ctx, http.MethodPost, "/products", in, &out)
	return out, err
}

func (c *client) Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	var out model.Product
	err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

func (c *client) DeleteMany(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return c.do(ctx, http.MethodDelete, "/products", map[string][]string{"ids": ids}, nil)
}
