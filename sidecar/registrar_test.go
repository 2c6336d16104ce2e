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
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry is a state store fake with etag bookkeeping.
type fakeRegistry struct {
	mu      sync.Mutex
	etag    string
	records map[string][]byte
	// rejects counts down forced conflicts on writes
	rejects int
	writes  int
}

func (f *fakeRegistry) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			key := r.URL.Path[len("/v1.0/state/registry/"):]
			record, ok := f.records[key]
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("ETag", f.etag)
			_, _ = w.Write(record)
		case http.MethodPost:
			f.writes++
			if f.rejects > 0 {
				f.rejects--
				w.WriteHeader(http.StatusConflict)
				return
			}
			var items []struct {
				Key   string         `json:"key"`
				Value map[string]any `json:"value"`
			}
			if err := jsonDecode(r, &items); err != nil || len(items) != 1 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if f.records == nil {
				f.records = make(map[string][]byte)
			}
			f.records[items[0].Key] = []byte(`{"app_name": "accounts", "pubsub": "messagebus", "topic": "accounts-events"}`)
			w.WriteHeader(http.StatusNoContent)
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("With a first registration", func(t *testing.T) {
		registry := new(fakeRegistry)
		client := newTestClient(t, registry.handler())
		client.Settings().StateStore = "registry"

		require.NoError(t, client.Register(context.TODO()))
		assert.Contains(t, registry.records, "__metadata__accounts")
	})
	t.Run("With an existing record overwritten idempotently", func(t *testing.T) {
		registry := &fakeRegistry{
			etag:    "3",
			records: map[string][]byte{"__metadata__accounts": []byte(`{"app_name": "accounts"}`)},
		}
		client := newTestClient(t, registry.handler())
		client.Settings().StateStore = "registry"

		require.NoError(t, client.Register(context.TODO()))
		require.NoError(t, client.Register(context.TODO()))
	})
	t.Run("With a lost write race retried", func(t *testing.T) {
		registry := &fakeRegistry{rejects: 1}
		client := newTestClient(t, registry.handler())
		client.Settings().StateStore = "registry"

		require.NoError(t, client.Register(context.TODO()))
		assert.Equal(t, 2, registry.writes)
	})
	t.Run("With no state store", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())
		err := client.Register(context.TODO())
		assert.ErrorIs(t, err, ErrRegistrationFailed)
	})
}

func TestBootstrap(t *testing.T) {
	t.Run("With register mode", func(t *testing.T) {
		registry := new(fakeRegistry)
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1.0/metadata" {
				_, _ = w.Write([]byte(`{
					"id": "accounts",
					"components": [{"name": "registry", "type": "state.redis", "version": "v1"}],
					"subscriptions": []
				}`))
				return
			}
			registry.handler().ServeHTTP(w, r)
		}))

		require.NoError(t, client.Bootstrap(context.TODO(), true))
		assert.Equal(t, "registry", client.Settings().StateStore)
		assert.Contains(t, registry.records, "__metadata__accounts")
	})
	t.Run("With discovery only", func(t *testing.T) {
		writes := 0
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				writes++
			}
			_, _ = w.Write([]byte(`{"id": "accounts", "components": [], "subscriptions": []}`))
		}))
		require.NoError(t, client.Bootstrap(context.TODO(), false))
		assert.Zero(t, writes)
	})
}

func TestPeerMetadata(t *testing.T) {
	t.Run("With a registered peer", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/state/registry/__metadata__billing", r.URL.Path)
			w.Header().Set("ETag", "1")
			_, _ = w.Write([]byte(`{"app_name": "billing", "pubsub": "messagebus", "topic": "billing-events"}`))
		}))
		client.Settings().StateStore = "registry"

		record, err := client.PeerMetadata(context.TODO(), "billing")
		require.NoError(t, err)
		assert.Equal(t, "billing", record.AppName)
		assert.Equal(t, "messagebus", record.PubSub)
		assert.Equal(t, "billing-events", record.Topic)
	})
	t.Run("With an unknown peer", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		client.Settings().StateStore = "registry"
		_, err := client.PeerMetadata(context.TODO(), "ghost")
		assert.ErrorIs(t, err, ErrStateEntryNotFound)
	})
}
