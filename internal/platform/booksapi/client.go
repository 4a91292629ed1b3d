package booksapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"

	jsoniter "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultUserAgent = "bookshelf/1.0"

// listSchema is the shape GET /books must return.
var listSchema = gojsonschema.NewStringLoader(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "title", "author"],
		"properties": {
			"id":     {"type": "integer"},
			"title":  {"type": "string"},
			"author": {"type": "string"}
		}
	}
}`)

// Client talks to the remote books API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	rps        float64
	schema     *gojsonschema.Schema
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is still
// wrapped with request id, access log and metrics middleware.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit caps outgoing requests per second; 0 means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.rps = rps }
}

// NewClient builds a client for the API rooted at baseURL. No request
// timeout is set; the transport defaults apply.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	schema, err := gojsonschema.NewSchema(listSchema)
	if err != nil {
		return nil, fmt.Errorf("compile list schema: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		schema:     schema,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Transport = httpx.Chain(hc.Transport,
		httpx.RequestID,
		httpx.RateLimit(c.rps, 1),
		httpx.AccessLog,
		httpx.Metrics,
	)
	c.httpClient = &hc
	return c, nil
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]book.Book, error) {
	const op = "list books"

	body, err := c.do(ctx, op, http.MethodGet, "/books", nil)
	if err != nil {
		return nil, err
	}

	res, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, c.fail(op, http.MethodGet, "/books", 0, err)
	}
	if !res.Valid() {
		return nil, c.fail(op, http.MethodGet, "/books", 0, schemaError(res.Errors()))
	}

	var books []book.Book
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, c.fail(op, http.MethodGet, "/books", 0, err)
	}
	if books == nil {
		books = []book.Book{}
	}
	return books, nil
}

// Create submits a new book.
func (c *Client) Create(ctx context.Context, d book.Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "create book", http.MethodPost, "/books", payload)
	return err
}

// Delete removes the book with the given id.
func (c *Client) Delete(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete book", http.MethodDelete, "/books/"+strconv.Itoa(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, c.fail(op, method, path, 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(op, method, path, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(op, method, path, resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
	if err != nil {
		return nil, c.fail(op, method, path, resp.StatusCode, err)
	}
	return respBody, nil
}

func (c *Client) fail(op, method, path string, status int, err error) *RequestError {
	return &RequestError{
		Op:         op,
		Method:     method,
		URL:        c.baseURL + path,
		StatusCode: status,
		Err:        err,
	}
}

func schemaError(errs []gojsonschema.ResultError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid list response: %s", strings.Join(msgs, "; "))
}
