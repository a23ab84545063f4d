package logsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// csvHeader is written once when the file is created.
var csvHeader = []string{
	"id", "timestamp", "text",
	"safety_label", "safety_confidence",
	"tone_label", "tone_confidence",
	"toxicity_score", "toxicity_flag",
	"scam_score", "scam_flag",
	"template", "feedback",
}

// CSVSink appends analysis rows to a CSV file, one row per analysis.
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink opens (or creates) the CSV file at path in append mode. The
// header row is written only when the file is new.
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat CSV log: %w", err)
	}

	sink := &CSVSink{file: file, writer: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := sink.writer.Write(csvHeader); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		sink.writer.Flush()
	}
	return sink, nil
}

// Append implements Sink. Rows are flushed immediately; the tool is
// low-volume and a crash must not lose the session's rows.
func (s *CSVSink) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := []string{
		rec.ID.String(),
		rec.Timestamp.Format(time.RFC3339),
		rec.Text,
		rec.SafetyLabel,
		formatFloat(rec.SafetyConfidence),
		rec.ToneLabel,
		formatFloat(rec.ToneConfidence),
		formatFloat(rec.ToxicityScore),
		strconv.FormatBool(rec.ToxicityFlag),
		formatFloat(rec.ScamScore),
		strconv.FormatBool(rec.ScamFlag),
		rec.Template,
		rec.Feedback,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close implements Sink.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	return s.file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
