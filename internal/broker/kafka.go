package appkafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// Defaults for the activity topic when the config leaves them empty.
const (
	DefaultBroker        = "localhost:29092"
	DefaultActivityTopic = "campus-activity"
	DefaultActivityGroup = "activity-worker"
	defaultWriteTimeout  = 10 * time.Second
)

// KafkaWriter is the producing side used by EventPublisher.
type KafkaWriter interface {
	WriteMessages(messages ...kafka.Message) error
	Close() error
}

// KafkaReader is the consuming side used by the activity worker.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConfig locates the activity topic. Partition applies to the writer,
// GroupID and ReadTimeout to the reader.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	Partition    int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	GroupID      string
}

// withDefaults fills every unset field of cfg.
func (cfg KafkaConfig) withDefaults() KafkaConfig {
	if len(cfg.Brokers) == 0 || cfg.Brokers[0] == "" {
		cfg.Brokers = []string{DefaultBroker}
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultActivityTopic
	}
	if cfg.GroupID == "" {
		cfg.GroupID = DefaultActivityGroup
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	return cfg
}

// ActivityWriter appends activity events to one partition through a
// connection to its leader.
type ActivityWriter struct {
	conn         *kafka.Conn
	writeTimeout time.Duration
}

// NewKafkaWriter dials the leader of the activity topic partition.
func NewKafkaWriter(ctx context.Context, cfg KafkaConfig) (*ActivityWriter, error) {
	cfg = cfg.withDefaults()

	conn, err := kafka.DialLeader(ctx, "tcp", cfg.Brokers[0], cfg.Topic, cfg.Partition)
	if err != nil {
		return nil, err
	}
	return &ActivityWriter{conn: conn, writeTimeout: cfg.WriteTimeout}, nil
}

func (w *ActivityWriter) WriteMessages(messages ...kafka.Message) error {
	if w.conn == nil {
		return errors.New("activity writer is not connected")
	}
	w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	_, err := w.conn.WriteMessages(messages...)
	return err
}

func (w *ActivityWriter) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

// ActivityReader consumes the activity topic as a member of a consumer group.
type ActivityReader struct {
	reader *kafka.Reader
}

// NewKafkaReader joins the activity consumer group. Events are small, so a
// single byte is enough to return a fetch.
func NewKafkaReader(cfg KafkaConfig) *ActivityReader {
	cfg = cfg.withDefaults()

	rc := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: time.Second,
	}
	if cfg.ReadTimeout > 0 {
		rc.MaxWait = cfg.ReadTimeout
	}
	return &ActivityReader{reader: kafka.NewReader(rc)}
}

func (r *ActivityReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return r.reader.ReadMessage(ctx)
}

func (r *ActivityReader) Close() error {
	return r.reader.Close()
}
