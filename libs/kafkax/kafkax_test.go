package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	msg := kafka.Message{
		Topic: "gobarber.appointment.canceled.v1",
		Key:   []byte("17"),
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "17" {
		t.Fatalf("expected key fallback, got %q", meta.EventID)
	}
	if meta.EventType != "gobarber.appointment.canceled.v1" {
		t.Fatalf("expected topic fallback, got %q", meta.EventType)
	}

	msg.Headers = []kafka.Header{
		{Key: "event_id", Value: []byte("abc")},
		{Key: "event_type", Value: []byte("other")},
	}
	meta = ExtractEventMeta(msg)
	if meta.EventID != "abc" || meta.EventType != "other" {
		t.Fatalf("expected header values, got %+v", meta)
	}
}
