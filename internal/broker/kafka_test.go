package appkafka

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestKafkaConfig_WithDefaults(t *testing.T) {
	got := KafkaConfig{Brokers: []string{""}}.withDefaults()

	want := KafkaConfig{
		Brokers:      []string{DefaultBroker},
		Topic:        DefaultActivityTopic,
		GroupID:      DefaultActivityGroup,
		WriteTimeout: 10 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestKafkaConfig_WithDefaultsKeepsExplicitValues(t *testing.T) {
	in := KafkaConfig{
		Brokers:      []string{"kafka-1:9092", "kafka-2:9092"},
		Topic:        "events",
		Partition:    2,
		WriteTimeout: time.Second,
		ReadTimeout:  3 * time.Second,
		GroupID:      "audit",
	}
	if diff := cmp.Diff(in, in.withDefaults()); diff != "" {
		t.Fatalf("explicit values changed (-want +got):\n%s", diff)
	}
}

func TestActivityWriter_NotConnected(t *testing.T) {
	w := &ActivityWriter{}
	if err := w.WriteMessages(); err == nil {
		t.Fatal("expected an error from a writer without a connection")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close on an unconnected writer: %v", err)
	}
}
