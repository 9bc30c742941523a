package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/questx-lab/taskmaster/pkg/pubsub"
	"github.com/stretchr/testify/require"
)

func Test_Publisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"kind":"raffle"}` {
			return errors.New("unexpected message")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newPublisher("taskmaster", nil, producer)

	err := p.Publish(context.Background(), "event_lifecycle", &pubsub.Pack{Key: []byte("1"), Msg: []byte(`{"kind":"raffle"}`)})
	require.NoError(t, err)

	err = p.Publish(context.Background(), "event_lifecycle", &pubsub.Pack{Key: []byte("2"), Msg: []byte(`{}`)})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	require.NoError(t, p.Stop(context.Background()))
}
