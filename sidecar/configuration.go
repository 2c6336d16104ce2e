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
	"net/url"
)

// Syncable is a set of local fields that can be refreshed from a remote
// store. The config package field sets implement it.
type Syncable interface {
	// SyncKeys returns the remote keys to fetch, in declaration order.
	SyncKeys() []string
	// Apply writes fetched values onto the matching local fields.
	Apply(values map[string]string)
}

// configurationItem is one entry of the configuration store answer.
type configurationItem struct {
	Value string `json:"value"`
}

// GetConfigurations fetches the given keys from the discovered configuration
// store. Keys the store does not hold are absent from the result.
func (x *Client) GetConfigurations(ctx context.Context, keys ...string) (map[string]string, error) {
	if x.settings.ConfigStore == "" {
		return nil, ErrConfigStoreNotConfigured
	}

	query := url.Values{}
	for _, key := range keys {
		query.Add("key", key)
	}
	path := fmt.Sprintf("/v1.0/configuration/%s?%s", x.settings.ConfigStore, query.Encode())
	resp, err := x.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusOK {
		return nil, fmt.Errorf("%w: configuration store [%s] answered status %d",
			ErrStoreUnavailable, x.settings.ConfigStore, resp.StatusCode)
	}

	items := make(map[string]configurationItem)
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode configuration response: %w", err)
	}

	values := make(map[string]string, len(items))
	for key, item := range items {
		values[key] = item.Value
	}
	return values, nil
}

// SyncConfigurations refreshes the syncable targets from the configuration
// store in a single fetch. Without a discovered configuration store the call
// is a no-op.
func (x *Client) SyncConfigurations(ctx context.Context, targets ...Syncable) error {
	if x.settings.ConfigStore == "" {
		x.logger.Debug("no configuration store discovered, skipping configuration sync")
		return nil
	}

	var keys []string
	for _, target := range targets {
		keys = append(keys, target.SyncKeys()...)
	}
	if len(keys) == 0 {
		return nil
	}

	values, err := x.GetConfigurations(ctx, keys...)
	if err != nil {
		return err
	}
	for _, target := range targets {
		target.Apply(values)
	}
	x.logger.Debugf("synchronized %d of %d configuration keys from store [%s]",
		len(values), len(keys), x.settings.ConfigStore)

	if x.subscribe && x.settings.ConfigSubscriptionID == "" {
		if _, err := x.SubscribeConfigurations(ctx, keys...); err != nil {
			x.logger.Warnf("configuration change subscription failed: %v", err)
		}
	}
	return nil
}

// SubscribeConfigurations registers a change subscription for the given keys
// and records its handle on the settings context. The subscription keeps the
// sidecar watching; the periodic sync remains the authoritative refresh.
func (x *Client) SubscribeConfigurations(ctx context.Context, keys ...string) (string, error) {
	if x.settings.ConfigStore == "" {
		return "", ErrConfigStoreNotConfigured
	}

	query := url.Values{}
	for _, key := range keys {
		query.Add("key", key)
	}
	path := fmt.Sprintf("/v1.0/configuration/%s/subscribe?%s", x.settings.ConfigStore, query.Encode())
	resp, err := x.get(ctx, path)
	if err != nil {
		return "", err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusOK {
		return "", fmt.Errorf("configuration store [%s] refused subscription with status %d", x.settings.ConfigStore, resp.StatusCode)
	}

	var subscription struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&subscription); err != nil {
		return "", fmt.Errorf("failed to decode subscription response: %w", err)
	}

	x.settings.ConfigSubscriptionID = subscription.ID
	return subscription.ID, nil
}

// UnsubscribeConfigurations cancels the active configuration change
// subscription. Without one the call is a no-op.
func (x *Client) UnsubscribeConfigurations(ctx context.Context) error {
	if x.settings.ConfigStore == "" || x.settings.ConfigSubscriptionID == "" {
		return nil
	}

	path := fmt.Sprintf("/v1.0/configuration/%s/%s/unsubscribe", x.settings.ConfigStore, x.settings.ConfigSubscriptionID)
	resp, err := x.get(ctx, path)
	if err != nil {
		return err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusOK {
		return fmt.Errorf("configuration store [%s] refused unsubscribe with status %d", x.settings.ConfigStore, resp.StatusCode)
	}
	x.settings.ConfigSubscriptionID = ""
	return nil
}
