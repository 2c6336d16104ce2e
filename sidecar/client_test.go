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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kettlab/sidekick/config"
	"github.com/kettlab/sidekick/log"
)

// newTestClient spins up a fake sidecar and a client pointed at it.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	addr, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(addr.Port())
	require.NoError(t, err)

	settings, err := config.New("accounts", "1.0.0", config.WithSidecar(addr.Hostname(), port))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(log.DiscardLogger)}, opts...)
	return NewClient(settings, opts...)
}

// jsonDecode reads the request body into out.
func jsonDecode(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

const metadataResponse = `{
	"id": "accounts",
	"components": [
		{"name": "appconfig", "type": "configuration.postgresql", "version": "v1"},
		{"name": "vault", "type": "secretstores.hashicorp.vault", "version": "v1"},
		{"name": "registry", "type": "state.redis", "version": "v1"},
		{"name": "keystore", "type": "crypto.azure.keyvault", "version": "v1"}
	],
	"subscriptions": [
		{"pubsubname": "messagebus", "topic": "accounts-events", "deadLetterTopic": "accounts-dead"}
	]
}`

func TestMetadata(t *testing.T) {
	t.Run("With a healthy sidecar", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/metadata", r.URL.Path)
			_, _ = w.Write([]byte(metadataResponse))
		}))
		metadata, err := client.Metadata(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, "accounts", metadata.ID)
		assert.Len(t, metadata.Components, 4)
		assert.Len(t, metadata.Subscriptions, 1)
	})
	t.Run("With a missing components section", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "accounts", "subscriptions": []}`))
		}))
		metadata, err := client.Metadata(context.TODO())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedMetadata)
		assert.Nil(t, metadata)
	})
	t.Run("With a missing subscriptions section", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "accounts", "components": []}`))
		}))
		_, err := client.Metadata(context.TODO())
		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})
	t.Run("With an unreachable sidecar", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr, err := url.Parse(srv.URL)
		require.NoError(t, err)
		port, err := strconv.Atoi(addr.Port())
		require.NoError(t, err)
		srv.Close()

		settings, err := config.New("accounts", "1.0.0", config.WithSidecar(addr.Hostname(), port))
		require.NoError(t, err)
		client := NewClient(settings, WithLogger(log.DiscardLogger))
		_, err = client.Metadata(context.TODO())
		assert.ErrorIs(t, err, ErrSidecarUnreachable)
	})
}

func TestAPIToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s3cr3t", r.Header.Get("dapr-api-token"))
		_, _ = w.Write([]byte(metadataResponse))
	}), WithAPIToken("s3cr3t"))
	_, err := client.Metadata(context.TODO())
	require.NoError(t, err)
}

func TestDiscover(t *testing.T) {
	t.Run("With all components resolved", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(metadataResponse))
		}))
		require.NoError(t, client.Discover(context.TODO()))
		settings := client.Settings()
		assert.Equal(t, "appconfig", settings.ConfigStore)
		assert.Equal(t, "vault", settings.SecretStore)
		assert.Equal(t, "registry", settings.StateStore)
		assert.Equal(t, "keystore", settings.Crypto)
		assert.Equal(t, "messagebus", settings.PubSub)
		assert.Equal(t, "accounts-events", settings.Topic)
		assert.Equal(t, "accounts-dead", settings.DeadLetter)
	})
	t.Run("With a malformed answer failing without retries", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			_, _ = w.Write([]byte(`{"id": "accounts"}`))
		}))
		err := client.Discover(context.TODO())
		assert.ErrorIs(t, err, ErrMalformedMetadata)
		assert.Equal(t, 1, calls)
	})
	t.Run("With no components leaving settings empty", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "accounts", "components": [], "subscriptions": []}`))
		}))
		require.NoError(t, client.Discover(context.TODO()))
		settings := client.Settings()
		assert.Empty(t, settings.ConfigStore)
		assert.Empty(t, settings.StateStore)
		assert.Empty(t, settings.PubSub)
	})
}

func TestGetConfigurations(t *testing.T) {
	t.Run("With values fetched", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/configuration/appconfig", r.URL.Path)
			assert.ElementsMatch(t, []string{"accounts_DEBUG", "HEALTH_TIMEOUT"}, r.URL.Query()["key"])
			_, _ = w.Write([]byte(`{"accounts_DEBUG": {"value": "true"}, "HEALTH_TIMEOUT": {"value": "120"}}`))
		}))
		client.Settings().ConfigStore = "appconfig"

		values, err := client.GetConfigurations(context.TODO(), "accounts_DEBUG", "HEALTH_TIMEOUT")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"accounts_DEBUG": "true", "HEALTH_TIMEOUT": "120"}, values)
	})
	t.Run("With no configuration store", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())
		_, err := client.GetConfigurations(context.TODO(), "key")
		assert.ErrorIs(t, err, ErrConfigStoreNotConfigured)
	})
}

func TestSyncConfigurations(t *testing.T) {
	t.Run("With settings refreshed", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"accounts_DEBUG": {"value": "false"}, "HEALTH_TIMEOUT": {"value": "120"}}`))
		}))
		settings := client.Settings()
		settings.ConfigStore = "appconfig"
		settings.Debug = true

		require.NoError(t, client.SyncConfigurations(context.TODO(), settings))
		assert.False(t, settings.Debug)
	})
	t.Run("With a change subscription requested", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1.0/configuration/appconfig/subscribe" {
				_, _ = w.Write([]byte(`{"id": "sub-7"}`))
				return
			}
			_, _ = w.Write([]byte(`{}`))
		}), WithConfigSubscription())
		client.Settings().ConfigStore = "appconfig"

		require.NoError(t, client.SyncConfigurations(context.TODO(), client.Settings()))
		assert.Equal(t, "sub-7", client.Settings().ConfigSubscriptionID)
	})
	t.Run("With a failing subscription not failing the sync", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1.0/configuration/appconfig/subscribe" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"accounts_DEBUG": {"value": "true"}}`))
		}), WithConfigSubscription())
		settings := client.Settings()
		settings.ConfigStore = "appconfig"
		settings.Debug = false

		require.NoError(t, client.SyncConfigurations(context.TODO(), settings))
		assert.True(t, settings.Debug)
		assert.Empty(t, settings.ConfigSubscriptionID)
	})
	t.Run("With no configuration store skipping silently", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
		require.NoError(t, client.SyncConfigurations(context.TODO(), client.Settings()))
		assert.Zero(t, calls)
	})
}

func TestSubscribeConfigurations(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/configuration/appconfig/subscribe":
			_, _ = w.Write([]byte(`{"id": "sub-42"}`))
		case "/v1.0/configuration/appconfig/sub-42/unsubscribe":
			_, _ = w.Write([]byte(`{"ok": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	client.Settings().ConfigStore = "appconfig"

	id, err := client.SubscribeConfigurations(context.TODO(), "accounts_DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "sub-42", id)
	assert.Equal(t, "sub-42", client.Settings().ConfigSubscriptionID)

	require.NoError(t, client.UnsubscribeConfigurations(context.TODO()))
	assert.Empty(t, client.Settings().ConfigSubscriptionID)
}

func TestSyncSecrets(t *testing.T) {
	t.Run("With per-key lookups and one failing key", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v1.0/secrets/vault/DB_USER":
				_, _ = w.Write([]byte(`{"DB_USER": "svc"}`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		client.Settings().SecretStore = "vault"
		secrets := config.NewSecrets("accounts")

		require.NoError(t, client.SyncSecrets(context.TODO(), secrets))
		assert.Equal(t, "svc", secrets.DBUser)
		assert.Empty(t, secrets.DBPassword)
	})
	t.Run("With a shared secret holding every key", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/secrets/vault/accounts-secrets", r.URL.Path)
			_, _ = w.Write([]byte(`{"DB_USER": "svc", "DB_PASSWORD": "hunter2"}`))
		}))
		client.Settings().SecretStore = "vault"
		client.Settings().SecretName = "accounts-secrets"
		secrets := config.NewSecrets("accounts")

		require.NoError(t, client.SyncSecrets(context.TODO(), secrets))
		assert.Equal(t, "svc", secrets.DBUser)
		assert.Equal(t, "hunter2", secrets.DBPassword)
	})
	t.Run("With no secret store skipping silently", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
		require.NoError(t, client.SyncSecrets(context.TODO(), config.NewSecrets("accounts")))
		assert.Zero(t, calls)
	})
}

func TestGetState(t *testing.T) {
	t.Run("With an existing record", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/state/registry/some-key", r.URL.Path)
			w.Header().Set("ETag", "7")
			_, _ = w.Write([]byte(`{"field": "value"}`))
		}))
		client.Settings().StateStore = "registry"

		entry, err := client.GetState(context.TODO(), "some-key")
		require.NoError(t, err)
		assert.Equal(t, "7", entry.ETag)
		assert.JSONEq(t, `{"field": "value"}`, string(entry.Value))
	})
	t.Run("With a missing record", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		client.Settings().StateStore = "registry"
		_, err := client.GetState(context.TODO(), "missing")
		assert.ErrorIs(t, err, ErrStateEntryNotFound)
	})
	t.Run("With no state store", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())
		_, err := client.GetState(context.TODO(), "some-key")
		assert.ErrorIs(t, err, ErrStateStoreNotConfigured)
	})
}

func TestSaveState(t *testing.T) {
	t.Run("With a guarded write", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1.0/state/registry", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var items []map[string]any
			require.NoError(t, jsonDecode(r, &items))
			require.Len(t, items, 1)
			assert.Equal(t, "some-key", items[0]["key"])
			assert.Equal(t, "7", items[0]["etag"])
			options, ok := items[0]["options"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "first-write", options["concurrency"])
			assert.Equal(t, "strong", options["consistency"])
			w.WriteHeader(http.StatusNoContent)
		}))
		client.Settings().StateStore = "registry"

		err := client.SaveState(context.TODO(), "some-key", map[string]string{"field": "value"},
			WithETag("7"), WithConcurrency(FirstWrite), WithConsistency(Strong))
		require.NoError(t, err)
	})
	t.Run("With a version conflict", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		client.Settings().StateStore = "registry"
		err := client.SaveState(context.TODO(), "some-key", "value", WithETag("stale"))
		assert.ErrorIs(t, err, ErrStateConflict)
	})
	t.Run("With the current version tag fetched before the write", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("ETag", "12")
				_, _ = w.Write([]byte(`"old"`))
				return
			}
			var items []map[string]any
			require.NoError(t, jsonDecode(r, &items))
			assert.Equal(t, "12", items[0]["etag"])
			w.WriteHeader(http.StatusNoContent)
		}))
		client.Settings().StateStore = "registry"
		require.NoError(t, client.SaveState(context.TODO(), "some-key", "new"))
	})
	t.Run("With a ttl and the lookup skipped", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			var items []map[string]any
			require.NoError(t, jsonDecode(r, &items))
			_, tagged := items[0]["etag"]
			assert.False(t, tagged)
			metadata, ok := items[0]["metadata"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "60", metadata["ttlInSeconds"])
			w.WriteHeader(http.StatusNoContent)
		}))
		client.Settings().StateStore = "registry"
		require.NoError(t, client.SaveState(context.TODO(), "some-key", "value",
			WithTTL(60), WithoutETagLookup()))
	})
}
