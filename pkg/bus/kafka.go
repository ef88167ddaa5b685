package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"slotbook/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	headerEventID   = "event-id"
	headerEventType = "event-type"
	headerSource    = "source"

	eventTypeStoreChange = "store-change"
)

// KafkaFeed is both Notifier and Observer over a single change topic. Every
// widget instance consumes with a unique group ID so the topic behaves as a
// broadcast channel; messages originated by this instance are skipped on the
// way back in.
type KafkaFeed struct {
	writer *kafka.Writer
	reader *kafka.Reader
	origin string
	log    *logger.Logger
	closed bool
	mu     sync.Mutex
	wg     sync.WaitGroup
}

type KafkaFeedConfig struct {
	Brokers []string
	Topic   string
	// GroupID must be unique per widget instance; a random one is generated
	// when empty.
	GroupID string
}

func NewKafkaFeed(cfg KafkaFeedConfig, log *logger.Logger) (*KafkaFeed, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic cannot be empty")
	}
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "widget-" + uuid.NewString()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // hash by storage key for per-key ordering
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Error),
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
		Logger:      kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(log.Error),
	})

	return &KafkaFeed{
		writer: writer,
		reader: reader,
		origin: groupID,
		log:    log,
	}, nil
}

// Origin identifies this instance in outgoing notifications.
func (f *KafkaFeed) Origin() string {
	return f.origin
}

func (f *KafkaFeed) NotifyChange(ctx context.Context, key string) error {
	payload, err := json.Marshal(Notification{Key: key, Origin: f.origin})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(uuid.NewString())},
			{Key: headerEventType, Value: []byte(eventTypeStoreChange)},
			{Key: headerSource, Value: []byte(f.origin)},
		},
	}
	return f.writer.WriteMessages(ctx, msg)
}

func (f *KafkaFeed) Start(ctx context.Context, notify func(Notification)) error {
	f.wg.Add(1)
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			kafkaMsg, err := f.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// A closed reader surfaces io.EOF; treating it as transient
				// would spin forever and deadlock Close's wg.Wait.
				if errors.Is(err, io.EOF) || f.isClosed() {
					return nil
				}
				f.log.Warn("change feed fetch failed", "error", err)
				time.Sleep(1 * time.Second)
				continue
			}

			var n Notification
			if err := json.Unmarshal(kafkaMsg.Value, &n); err != nil {
				f.log.Warn("dropping malformed change notification",
					"offset", kafkaMsg.Offset,
					"error", err,
				)
			} else if n.Origin != f.origin {
				notify(n)
			}

			if err := f.reader.CommitMessages(ctx, kafkaMsg); err != nil {
				f.log.Warn("change feed commit failed", "error", err)
			}
		}
	}
}

func (f *KafkaFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *KafkaFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	readerErr := f.reader.Close()
	writerErr := f.writer.Close()
	f.wg.Wait()
	if readerErr != nil {
		return readerErr
	}
	return writerErr
}
