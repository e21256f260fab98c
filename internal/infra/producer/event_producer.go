package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	evt_model "github.com/RoyceAzure/lab/cartorder/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
)

const EventTypeHeader = "event_type"

// MessageWriter kafka.Writer 的最小介面，測試時可替換
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventProducer 領域事件轉成 kafka message
// key: 聚合 ID，header event_type: 事件類型
// topic: 由 writer 創建時設置
type EventProducer struct {
	writer MessageWriter
}

func NewEventProducer(writer MessageWriter) *EventProducer {
	if writer == nil {
		panic("NewEventProducer: writer cannot be nil")
	}
	return &EventProducer{writer: writer}
}

// NewKafkaWriter 依聚合 ID hash 分區，同一訂單的事件保持順序
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// ParseBrokers "a:9092, b:9092" -> ["a:9092","b:9092"]
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (p *EventProducer) Publish(ctx context.Context, event evt_model.Event) error {
	msg, err := convertToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("produce %s event failed: %w", event.Type(), err)
	}
	return nil
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}

func convertToMessage(event evt_model.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s event failed: %w", event.Type(), err)
	}

	return kafka.Message{
		Key:   []byte(event.GetAggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{
				Key:   EventTypeHeader,
				Value: []byte(event.Type()),
			},
		},
	}, nil
}

// NoopProducer 未設定 KAFKA_BROKERS 時使用，事件直接丟棄
type NoopProducer struct{}

func (NoopProducer) Publish(ctx context.Context, event evt_model.Event) error {
	return nil
}

func (NoopProducer) Close() error {
	return nil
}
