package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/seismoworks/directivity/internal/config"
	"github.com/seismoworks/directivity/internal/job"
)

// Reader consumes directivity requests from a Kafka topic as part of a
// consumer group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a Kafka consumer for the configured request topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaRequestTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10 << 20,
		MaxWait:  500 * time.Millisecond,
	})
	return &Reader{
		reader:        r,
		flushInterval: cfg.BatchFlushInterval,
		logger:        logger,
	}
}

// ExtractBatch fetches up to max requests, returning whatever arrived once
// the flush interval elapses. A quiet topic yields an empty batch and no
// error. Offsets are committed per message through the Commit callback, after
// the pipeline has loaded the corresponding result.
func (r *Reader) ExtractBatch(ctx context.Context, max int) ([]job.RawRequest, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	batch := make([]job.RawRequest, 0, max)
	for len(batch) < max {
		msg, err := r.reader.FetchMessage(fetchCtx)
		if err != nil {
			// The fetch window closing is the normal flush path.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return batch, nil
			}
			if len(batch) > 0 {
				r.logger.Warn("fetch failed mid-batch, flushing partial batch",
					"error", err, "batch_size", len(batch))
				return batch, nil
			}
			return nil, fmt.Errorf("fetch request: %w", err)
		}
		batch = append(batch, r.mapMessageToRawRequest(msg))
	}
	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawRequest converts a Kafka message into the pipeline's raw
// request form, capturing the offset commit as a callback.
func (r *Reader) mapMessageToRawRequest(msg kafkago.Message) job.RawRequest {
	raw := mapMessage(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw
}

func mapMessage(msg kafkago.Message) job.RawRequest {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return job.RawRequest{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
