// MIT License
//
// Copyright (c) 2022-2026 Kett Labs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package sidecar implements the HTTP client of the coordination sidecar:
// capability discovery, configuration and secret synchronization, state
// persistence with optimistic concurrency, event publishing and payload
// encryption.
package sidecar

import (
	"context"
	"fmt"
	"io"
	stdhttp "net/http"
	"os"

	"github.com/kettlab/sidekick/config"
	internalhttp "github.com/kettlab/sidekick/internal/http"
	"github.com/kettlab/sidekick/log"
)

const (
	apiTokenHeader  = "dapr-api-token" // nolint:gosec
	contentTypeJSON = "application/json"
)

// Client talks to the coordination sidecar over its HTTP API. All component
// names it targets come from the settings context, resolved by capability
// discovery. Create instances with NewClient.
type Client struct {
	settings *config.Settings
	logger   log.Logger
	apiToken string
	http     *stdhttp.Client
	// subscribe requests a configuration change subscription on sync
	subscribe bool
}

// NewClient creates a sidecar client bound to the given settings context.
func NewClient(settings *config.Settings, opts ...Option) *Client {
	client := &Client{
		settings: settings,
		logger:   log.New(settings.LogLevel, os.Stdout),
		http:     internalhttp.NewClient(),
	}
	for _, opt := range opts {
		opt.Apply(client)
	}
	return client
}

// Settings returns the settings context the client operates on.
func (x *Client) Settings() *config.Settings {
	return x.settings
}

// url builds the sidecar endpoint URL for the given path.
func (x *Client) url(path string) string {
	return internalhttp.URL(x.settings.SidecarHost, x.settings.SidecarHTTPPort, path)
}

// do sends the request with the common headers set and fails with
// ErrSidecarUnreachable when the sidecar cannot be dialed.
func (x *Client) do(req *stdhttp.Request) (*stdhttp.Response, error) {
	if x.apiToken != "" {
		req.Header.Set(apiTokenHeader, x.apiToken)
	}
	resp, err := x.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSidecarUnreachable, err)
	}
	return resp, nil
}

// get performs a GET against the given sidecar path and returns the response.
func (x *Client) get(ctx context.Context, path string) (*stdhttp.Response, error) {
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodGet, x.url(path), nil)
	if err != nil {
		return nil, err
	}
	return x.do(req)
}

// discard drains and closes the response body so the connection can be
// reused.
func discard(resp *stdhttp.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
