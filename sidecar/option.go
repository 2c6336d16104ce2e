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

package sidecar

import (
	stdhttp "net/http"

	"github.com/kettlab/sidekick/log"
)

// Option is the interface that applies a configuration option to the client.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(client *Client)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(client *Client)

// Apply applies the options to the client
func (f OptionFunc) Apply(client *Client) {
	f(client)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(client *Client) {
		client.logger = logger
	})
}

// WithAPIToken authenticates every sidecar request with the given token.
func WithAPIToken(token string) Option {
	return OptionFunc(func(client *Client) {
		client.apiToken = token
	})
}

// WithConfigSubscription makes SyncConfigurations register a change
// subscription for the synced keys. A failed subscription is logged and does
// not fail the sync.
func WithConfigSubscription() Option {
	return OptionFunc(func(client *Client) {
		client.subscribe = true
	})
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *stdhttp.Client) Option {
	return OptionFunc(func(client *Client) {
		client.http = httpClient
	})
}
