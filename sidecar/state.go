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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
)

// Concurrency selects the write concurrency mode of the state store.
type Concurrency string

const (
	// FirstWrite rejects writes whose version tag no longer matches.
	FirstWrite Concurrency = "first-write"
	// LastWrite lets the latest write win unconditionally.
	LastWrite Concurrency = "last-write"
)

// Consistency selects the replication consistency of the state store.
type Consistency string

const (
	// Eventual acknowledges the write before replication completes.
	Eventual Consistency = "eventual"
	// Strong acknowledges the write after replication completes.
	Strong Consistency = "strong"
)

// StateEntry is one record read from the state store.
type StateEntry struct {
	Key   string
	Value json.RawMessage
	// ETag is the version tag of the stored record, used for optimistic
	// concurrency on the next write.
	ETag string
}

// stateItem is the wire shape of one state write.
type stateItem struct {
	Key      string            `json:"key"`
	Value    any               `json:"value"`
	ETag     *string           `json:"etag,omitempty"`
	Options  *stateOptions     `json:"options,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type stateOptions struct {
	Concurrency Concurrency `json:"concurrency,omitempty"`
	Consistency Consistency `json:"consistency,omitempty"`
}

// saveRequest carries one state write and its local behavior switches.
type saveRequest struct {
	item       stateItem
	skipLookup bool
}

// StateOption configures a single state write.
type StateOption func(req *saveRequest)

// WithETag guards the write with the given version tag. A mismatching tag
// makes the store answer a conflict.
func WithETag(etag string) StateOption {
	return func(req *saveRequest) {
		req.item.ETag = &etag
	}
}

// WithoutETagLookup skips the pre-write fetch of the current version tag.
func WithoutETagLookup() StateOption {
	return func(req *saveRequest) {
		req.skipLookup = true
	}
}

// WithConcurrency sets the write concurrency mode.
func WithConcurrency(concurrency Concurrency) StateOption {
	return func(req *saveRequest) {
		if req.item.Options == nil {
			req.item.Options = new(stateOptions)
		}
		req.item.Options.Concurrency = concurrency
	}
}

// WithConsistency sets the replication consistency mode.
func WithConsistency(consistency Consistency) StateOption {
	return func(req *saveRequest) {
		if req.item.Options == nil {
			req.item.Options = new(stateOptions)
		}
		req.item.Options.Consistency = consistency
	}
}

// WithTTL expires the record after the given number of seconds.
func WithTTL(seconds int) StateOption {
	return func(req *saveRequest) {
		if req.item.Metadata == nil {
			req.item.Metadata = make(map[string]string)
		}
		req.item.Metadata["ttlInSeconds"] = fmt.Sprintf("%d", seconds)
	}
}

// WithContentType records the content type of the stored value.
func WithContentType(contentType string) StateOption {
	return func(req *saveRequest) {
		if req.item.Metadata == nil {
			req.item.Metadata = make(map[string]string)
		}
		req.item.Metadata["contentType"] = contentType
	}
}

// GetState reads the record stored under the given key. A missing record
// fails with ErrStateEntryNotFound.
func (x *Client) GetState(ctx context.Context, key string) (*StateEntry, error) {
	if x.settings.StateStore == "" {
		return nil, ErrStateStoreNotConfigured
	}

	resp, err := x.get(ctx, fmt.Sprintf("/v1.0/state/%s/%s", x.settings.StateStore, key))
	if err != nil {
		return nil, err
	}
	defer discard(resp)

	switch resp.StatusCode {
	case stdhttp.StatusOK:
	case stdhttp.StatusNoContent, stdhttp.StatusNotFound:
		return nil, fmt.Errorf("%w: key=%s", ErrStateEntryNotFound, key)
	default:
		return nil, fmt.Errorf("%w: state store [%s] answered status %d for key [%s]",
			ErrStoreUnavailable, x.settings.StateStore, resp.StatusCode, key)
	}

	value, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read state entry [%s]: %w", key, err)
	}
	return &StateEntry{
		Key:   key,
		Value: value,
		ETag:  resp.Header.Get("ETag"),
	}, nil
}

// SaveState persists the value under the given key. Unless an etag is given
// or WithoutETagLookup opts out, the current version tag is fetched first and
// guards the write; a lost race fails with ErrStateConflict.
func (x *Client) SaveState(ctx context.Context, key string, value any, opts ...StateOption) error {
	if x.settings.StateStore == "" {
		return ErrStateStoreNotConfigured
	}

	req := saveRequest{item: stateItem{Key: key, Value: value}}
	for _, opt := range opts {
		opt(&req)
	}

	if req.item.ETag == nil && !req.skipLookup {
		existing, err := x.GetState(ctx, key)
		switch {
		case err == nil:
			req.item.ETag = &existing.ETag
		case errors.Is(err, ErrStateEntryNotFound):
		default:
			return err
		}
	}

	payload, err := json.Marshal([]stateItem{req.item})
	if err != nil {
		return fmt.Errorf("failed to encode state entry [%s]: %w", key, err)
	}

	httpReq, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPost,
		x.url(fmt.Sprintf("/v1.0/state/%s", x.settings.StateStore)), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)

	resp, err := x.do(httpReq)
	if err != nil {
		return err
	}
	defer discard(resp)

	switch resp.StatusCode {
	case stdhttp.StatusNoContent, stdhttp.StatusOK:
		return nil
	case stdhttp.StatusConflict:
		return fmt.Errorf("%w: key=%s", ErrStateConflict, key)
	default:
		return fmt.Errorf("%w: state store [%s] answered status %d for key [%s]",
			ErrStoreUnavailable, x.settings.StateStore, resp.StatusCode, key)
	}
}
