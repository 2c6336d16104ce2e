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
	"strings"
	"time"

	"github.com/kettlab/sidekick/resiliency"
)

const metadataPath = "/v1.0/metadata"

// Component type prefixes used to classify the sidecar building blocks.
const (
	configStoreTypePrefix = "configuration."
	secretStoreTypePrefix = "secretstores."
	stateStoreTypePrefix  = "state."
	cryptoTypePrefix      = "crypto."
)

// Component describes one building block loaded by the sidecar.
type Component struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

// Subscription describes one topic subscription registered with the sidecar.
type Subscription struct {
	PubSubName      string `json:"pubsubname"`
	Topic           string `json:"topic"`
	DeadLetterTopic string `json:"deadLetterTopic"`
}

// Metadata is the capability snapshot answered by the sidecar metadata
// endpoint.
type Metadata struct {
	ID            string         `json:"id"`
	Components    []Component    `json:"components"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// Metadata fetches the sidecar capability snapshot. A response missing the
// components or subscriptions sections fails with ErrMalformedMetadata.
func (x *Client) Metadata(ctx context.Context) (*Metadata, error) {
	resp, err := x.get(ctx, metadataPath)
	if err != nil {
		return nil, err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrMalformedMetadata, resp.StatusCode)
	}

	var sections map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	for _, section := range []string{"components", "subscriptions"} {
		if _, ok := sections[section]; !ok {
			return nil, fmt.Errorf("%w: missing %s section", ErrMalformedMetadata, section)
		}
	}

	metadata := new(Metadata)
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	if err := json.Unmarshal(raw, metadata); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	return metadata, nil
}

// Discover resolves the sidecar component names onto the settings context.
// The metadata fetch is retried with exponential backoff while the sidecar is
// unreachable; a malformed answer fails immediately. Components of a kind the
// sidecar does not expose leave the matching settings field empty.
func (x *Client) Discover(ctx context.Context) error {
	policy := resiliency.NewPolicy(10, time.Second, 2.0, ErrSidecarUnreachable)
	var metadata *Metadata
	err := policy.Run(ctx, func(ctx context.Context) error {
		var ferr error
		metadata, ferr = x.Metadata(ctx)
		return ferr
	})
	if err != nil {
		return err
	}

	for _, component := range metadata.Components {
		switch {
		case strings.HasPrefix(component.Type, configStoreTypePrefix):
			x.settings.ConfigStore = component.Name
		case strings.HasPrefix(component.Type, secretStoreTypePrefix):
			x.settings.SecretStore = component.Name
		case strings.HasPrefix(component.Type, stateStoreTypePrefix):
			x.settings.StateStore = component.Name
		case strings.HasPrefix(component.Type, cryptoTypePrefix):
			x.settings.Crypto = component.Name
		}
	}

	if len(metadata.Subscriptions) > 0 {
		subscription := metadata.Subscriptions[0]
		x.settings.PubSub = subscription.PubSubName
		x.settings.Topic = subscription.Topic
		x.settings.DeadLetter = subscription.DeadLetterTopic
	}

	x.logger.Infof("discovered sidecar components: configstore=%q secretstore=%q statestore=%q pubsub=%q crypto=%q",
		x.settings.ConfigStore, x.settings.SecretStore, x.settings.StateStore, x.settings.PubSub, x.settings.Crypto)
	return nil
}
