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
	"fmt"
	stdhttp "net/http"
	"net/url"

	"github.com/google/uuid"
)

const contentTypeCloudEvents = "application/cloudevents+json"

// PublishOption configures a single publish.
type PublishOption func(opts *publishOptions)

type publishOptions struct {
	target    string
	pubsub    string
	topic     string
	eventType string
}

// WithTarget addresses the event at the given peer service. The peer's
// registered broker and topic are looked up in the state store.
func WithTarget(service string) PublishOption {
	return func(opts *publishOptions) {
		opts.target = service
	}
}

// WithTopic overrides the destination broker and topic explicitly.
func WithTopic(pubsub, topic string) PublishOption {
	return func(opts *publishOptions) {
		opts.pubsub = pubsub
		opts.topic = topic
	}
}

// WithEventType stamps the event with the given type.
func WithEventType(eventType string) PublishOption {
	return func(opts *publishOptions) {
		opts.eventType = eventType
	}
}

// Publish sends the payload as a cloud event and returns its event id. The
// destination resolves from an explicit topic, the addressed peer's
// registration record, or the service's own discovered subscription, in that
// order; failing all three the call fails with ErrTopicUnresolved. The
// payload is stamped with the sender's name and topic so consumers can
// answer.
func (x *Client) Publish(ctx context.Context, payload map[string]any, opts ...PublishOption) (string, error) {
	options := new(publishOptions)
	for _, opt := range opts {
		opt(options)
	}

	pubsub, topic := options.pubsub, options.topic
	switch {
	case topic != "":
	case options.target != "":
		record, err := x.PeerMetadata(ctx, options.target)
		if err != nil {
			return "", err
		}
		if record.Topic == "" {
			return "", fmt.Errorf("%w: peer [%s] registered no topic", ErrTopicUnresolved, options.target)
		}
		pubsub, topic = record.PubSub, record.Topic
	default:
		pubsub, topic = x.settings.PubSub, x.settings.Topic
	}

	if pubsub == "" {
		return "", ErrPubSubNotConfigured
	}
	if topic == "" {
		return "", ErrTopicUnresolved
	}

	// stamp the envelope so consumers can route answers back
	event := make(map[string]any, len(payload)+3)
	for key, value := range payload {
		event[key] = value
	}
	event["source"] = x.settings.Name
	event["source_topic"] = x.settings.Topic
	if _, typed := event["type"]; !typed && options.eventType != "" {
		event["type"] = options.eventType
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to encode event payload: %w", err)
	}

	eventID := uuid.NewString()
	query := url.Values{}
	query.Set("metadata.cloudevent.id", eventID)
	query.Set("metadata.cloudevent.source", x.settings.Name)
	if options.eventType != "" {
		query.Set("metadata.cloudevent.type", options.eventType)
	}

	path := fmt.Sprintf("/v1.0/publish/%s/%s?%s", pubsub, topic, query.Encode())
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPost, x.url(path), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentTypeCloudEvents)

	resp, err := x.do(req)
	if err != nil {
		return "", err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusNoContent && resp.StatusCode != stdhttp.StatusOK {
		return "", fmt.Errorf("broker [%s] refused event on topic [%s] with status %d", pubsub, topic, resp.StatusCode)
	}

	x.logger.Debugf("published event [%s] to topic [%s/%s]", eventID, pubsub, topic)
	return eventID, nil
}
