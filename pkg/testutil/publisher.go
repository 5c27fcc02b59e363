package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/contest-backoffice/pkg/pubsub"
)

type PublishedPack struct {
	Topic string
	Pack  pubsub.Pack
}

// MockPublisher records every pack it is asked to publish. PublishFunc, if
// set, decides the returned error.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, topic string, pack *pubsub.Pack) error

	mutex     sync.Mutex
	published []PublishedPack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	m.mutex.Lock()
	m.published = append(m.published, PublishedPack{Topic: topic, Pack: *pack})
	m.mutex.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return nil
}

func (m *MockPublisher) Published() []PublishedPack {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]PublishedPack{}, m.published...)
}
