package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/taskmaster/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mutex     sync.Mutex
	Published []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, pack); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Published = append(m.Published, pack)
	return nil
}

func (m *MockPublisher) Stop(ctx context.Context) error {
	return nil
}

func (m *MockPublisher) Packs() []*pubsub.Pack {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := make([]*pubsub.Pack, len(m.Published))
	copy(result, m.Published)
	return result
}
