package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// FilterSubject returns the subject filter for a transaction type, or every
// type when txType is empty.
func FilterSubject(txType string) string {
	if txType == "" {
		return StreamSubjects
	}
	return SubjectPrefix + txType
}

// Subscribe streams explained events matching txType to handle until ctx is
// done. Messages that fail to decode are acked and skipped.
func Subscribe(ctx context.Context, natsURL, txType string, logger *slog.Logger, handle func(*ExplainedEvent)) error {
	nc, err := nats.Connect(natsURL, nats.Name("suiscope-subscriber"))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	cons, err := js.OrderedConsumer(ctx, StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{FilterSubject(txType)},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		var event ExplainedEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			logger.Warn("skipping malformed explained event", "subject", msg.Subject(), "error", err)
			_ = msg.Ack()
			return
		}
		handle(&event)
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}
	defer cc.Stop()

	<-ctx.Done()
	return nil
}
