package logsink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisStream is the stream key used when none is configured.
const DefaultRedisStream = "edushield:analyses"

// RedisSink appends analysis rows to a Redis stream via XADD. Useful when
// several classroom hosts share one log that a separate process tails.
type RedisSink struct {
	client *redis.Client
	stream string
}

// NewRedisSink connects to Redis and verifies the connection with a ping.
func NewRedisSink(ctx context.Context, addr, stream string) (*RedisSink, error) {
	if stream == "" {
		stream = DefaultRedisStream
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisSink{client: client, stream: stream}, nil
}

// Append implements Sink.
func (s *RedisSink) Append(ctx context.Context, rec Record) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":                rec.ID.String(),
			"timestamp":         rec.Timestamp.Format(time.RFC3339),
			"text":              rec.Text,
			"safety_label":      rec.SafetyLabel,
			"safety_confidence": formatFloat(rec.SafetyConfidence),
			"tone_label":        rec.ToneLabel,
			"tone_confidence":   formatFloat(rec.ToneConfidence),
			"toxicity_score":    formatFloat(rec.ToxicityScore),
			"toxicity_flag":     strconv.FormatBool(rec.ToxicityFlag),
			"scam_score":        formatFloat(rec.ScamScore),
			"scam_flag":         strconv.FormatBool(rec.ScamFlag),
			"template":          rec.Template,
			"feedback":          rec.Feedback,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to Redis stream %s: %w", s.stream, err)
	}
	return nil
}

// Close implements Sink.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
