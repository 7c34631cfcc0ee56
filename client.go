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

	"golang.org/x/net/context/ctxhttp"

	"github.com/kmeaw/huffkit/huffman"
)

// APIClient calls the JSON API of a running service.
type APIClient struct {
	BaseURL string

	h *http.Client
}

func NewAPIClient(base string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(base, "/"),
		h: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type APIError struct {
	req  *http.Request
	resp *http.Response
	data []byte
	err  error

	Kind        string `json:"error"`
	Description string `json:"description"`
}

func (e APIError) Error() string {
	b := &bytes.Buffer{}
	if e.req != nil {
		fmt.Fprintf(b, "error while calling %s %s: ", e.req.Method, e.req.URL)
	}
	if e.resp != nil {
		fmt.Fprintf(b, "got status %d: ", e.resp.StatusCode)
	}
	if e.Kind != "" {
		fmt.Fprintf(b, "%s: %s", e.Kind, e.Description)
		return b.String()
	}
	if e.data != nil {
		fmt.Fprintf(b, "got data: %q: ", string(e.data))
	}
	if e.err != nil {
		b.WriteString(e.err.Error())
	} else {
		b.WriteString("unexpected status code")
	}

	return b.String()
}

func (e APIError) Unwrap() error {
	return e.err
}

// StatusCode is zero when no response was received.
func (e APIError) StatusCode() int {
	if e.resp == nil {
		return 0
	}
	return e.resp.StatusCode
}

func (c *APIClient) apiCall(ctx context.Context, method, path string, payload interface{}, result interface{}) (err error) {
	var req *http.Request
	var resp *http.Response
	var data []byte

	api_url := c.BaseURL + path
	if payload == nil {
		req, err = http.NewRequest(method, api_url, nil)
	} else {
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("cannot marshal payload: %w", err)
		}

		req, err = http.NewRequest(method, api_url, bytes.NewBuffer(data))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}

	if err != nil {
		return fmt.Errorf("cannot make http request: %w", err)
	}

	req.Header.Set("User-Agent", "github.com/kmeaw/huffkit")

	resp, err = ctxhttp.Do(ctx, c.h, req)
	if err != nil {
		return APIError{req: req, err: err}
	}

	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return APIError{req: req, err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := APIError{req: req, resp: resp, data: data}
		json.Unmarshal(data, &e)
		return e
	}

	if result == nil {
		return
	}

	err = json.Unmarshal(data, result)
	if err != nil {
		return fmt.Errorf("cannot unmarshal data: %w", err)
	}

	return
}

func (c *APIClient) Analyze(ctx context.Context, text string, compare bool) (*Report, error) {
	var r Report
	err := c.apiCall(ctx, "POST", "/api/analyze", AnalyzeRequest{Text: text, Compare: compare}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *APIClient) Encode(ctx context.Context, req EncodeRequest) (*EncodeResponse, error) {
	var r EncodeResponse
	err := c.apiCall(ctx, "POST", "/api/encode", req, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *APIClient) Decode(ctx context.Context, req DecodeRequest) (string, error) {
	var r DecodeResponse
	err := c.apiCall(ctx, "POST", "/api/decode", req, &r)
	return r.Text, err
}

func (c *APIClient) SaveTable(ctx context.Context, name string, t *huffman.Table) error {
	return c.apiCall(ctx, "PUT", "/api/tables/"+url.PathEscape(name), TableRequest{Table: t}, nil)
}

func (c *APIClient) LoadTable(ctx context.Context, name string) (*huffman.Table, error) {
	t := &huffman.Table{}
	err := c.apiCall(ctx, "GET", "/api/tables/"+url.PathEscape(name), nil, t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
