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
	"fmt"
	stdhttp "net/http"
)

// GetSecret fetches a single secret from the discovered secret store. The
// answer maps secret keys to their values; simple stores answer one entry
// named after the secret itself.
func (x *Client) GetSecret(ctx context.Context, name string) (map[string]string, error) {
	if x.settings.SecretStore == "" {
		return nil, ErrSecretStoreNotConfigured
	}

	resp, err := x.get(ctx, fmt.Sprintf("/v1.0/secrets/%s/%s", x.settings.SecretStore, name))
	if err != nil {
		return nil, err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusOK {
		return nil, fmt.Errorf("%w: secret store [%s] answered status %d for secret [%s]",
			ErrStoreUnavailable, x.settings.SecretStore, resp.StatusCode, name)
	}

	values := make(map[string]string)
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode secret [%s]: %w", name, err)
	}
	return values, nil
}

// SyncSecrets refreshes the syncable targets from the secret store. When the
// settings name a shared secret it is fetched once and holds every key;
// otherwise each key is looked up as its own secret and a failing lookup is
// logged and skipped so one missing secret never blocks the rest. Without a
// discovered secret store the call is a no-op.
func (x *Client) SyncSecrets(ctx context.Context, targets ...Syncable) error {
	if x.settings.SecretStore == "" {
		x.logger.Debug("no secret store discovered, skipping secret sync")
		return nil
	}

	var keys []string
	for _, target := range targets {
		keys = append(keys, target.SyncKeys()...)
	}
	if len(keys) == 0 {
		return nil
	}

	values := make(map[string]string)
	if x.settings.SecretName != "" {
		shared, err := x.GetSecret(ctx, x.settings.SecretName)
		if err != nil {
			return err
		}
		values = shared
	} else {
		for _, key := range keys {
			secret, err := x.GetSecret(ctx, key)
			if err != nil {
				x.logger.Warnf("failed to fetch secret [%s]: %v", key, err)
				continue
			}
			for name, value := range secret {
				values[name] = value
			}
		}
	}

	for _, target := range targets {
		target.Apply(values)
	}
	x.logger.Debugf("synchronized %d secret keys from store [%s]", len(values), x.settings.SecretStore)
	return nil
}
