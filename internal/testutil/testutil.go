// Package testutil provides testing utilities for the budget application.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// TestServer wraps httptest.Server with convenience methods for the
// JSON API.
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	t       *testing.T
}

// NewTestServer starts a test server around the given router.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:  server,
		BaseURL: server.URL,
		t:       t,
	}
	t.Cleanup(ts.Close)
	return ts
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	resp, err := http.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// GETWithQuery performs a GET request with query parameters
func (ts *TestServer) GETWithQuery(path string, query map[string]string) *http.Response {
	ts.t.Helper()

	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	target := ts.BaseURL + path
	if len(values) > 0 {
		target += "?" + values.Encode()
	}

	resp, err := http.Get(target)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// PostJSON performs a POST request with a JSON-encoded body
func (ts *TestServer) PostJSON(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.sendJSON(http.MethodPost, path, body)
}

// PutJSON performs a PUT request with a JSON-encoded body
func (ts *TestServer) PutJSON(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.sendJSON(http.MethodPut, path, body)
}

// Delete performs a DELETE request to the given path
func (ts *TestServer) Delete(path string) *http.Response {
	ts.t.Helper()

	req, err := http.NewRequest(http.MethodDelete, ts.BaseURL+path, nil)
	if err != nil {
		ts.t.Fatalf("building DELETE %s: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("DELETE %s failed: %v", path, err)
	}
	return resp
}

func (ts *TestServer) sendJSON(method, path string, body any) *http.Response {
	ts.t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		ts.t.Fatalf("encoding %s %s body: %v", method, path, err)
	}
	req, err := http.NewRequest(method, ts.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		ts.t.Fatalf("building %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// DecodeJSON decodes the response body into v and closes the body.
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
