package logsink

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSinkAppend(t *testing.T) {
	srv := miniredis.RunT(t)

	sink, err := NewRedisSink(context.Background(), srv.Addr(), "test:analyses")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sink.Close()

	rec := sampleRecord()
	if err := sink.Append(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	entries, err := client.XRange(context.Background(), "test:analyses", "-", "+").Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d stream entries, want 1", len(entries))
	}

	values := entries[0].Values
	if values["id"] != rec.ID.String() {
		t.Errorf("id = %v, want %v", values["id"], rec.ID)
	}
	if values["text"] != rec.Text {
		t.Errorf("text = %v, want %v", values["text"], rec.Text)
	}
	if values["scam_flag"] != "true" {
		t.Errorf("scam_flag = %v, want true", values["scam_flag"])
	}
	if values["template"] != "scam_warning" {
		t.Errorf("template = %v", values["template"])
	}
}

func TestRedisSinkDefaultStream(t *testing.T) {
	srv := miniredis.RunT(t)

	sink, err := NewRedisSink(context.Background(), srv.Addr(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sink.Close()

	if err := sink.Append(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	n, err := client.XLen(context.Background(), DefaultRedisStream).Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("stream length = %d, want 1", n)
	}
}

func TestRedisSinkUnreachable(t *testing.T) {
	if _, err := NewRedisSink(context.Background(), "127.0.0.1:1", ""); err == nil {
		t.Error("expected a connection error")
	}
}
