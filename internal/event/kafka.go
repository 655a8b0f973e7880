package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/support-ticket/request-service/internal/model"
	"go.uber.org/zap"
)

// KafkaProducer writes lifecycle events to a Kafka topic. With no brokers
// or an empty topic every method is a no-op.
type KafkaProducer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, log *zap.Logger) *KafkaProducer {
	if len(brokers) == 0 || topic == "" {
		return &KafkaProducer{log: log}
	}
	return &KafkaProducer{
		log: log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *KafkaProducer) Emit(ctx context.Context, event string, req *model.Request) {
	if p.writer == nil || req == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"request": req,
	})
	if err != nil {
		p.log.Error("kafka: marshal event", zap.Error(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		p.log.Error("kafka: write event",
			zap.String("event", event),
			zap.Uint64("request_id", req.ID),
			zap.Error(err))
	}
}

func (p *KafkaProducer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
