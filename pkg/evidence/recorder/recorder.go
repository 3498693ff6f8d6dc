package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/gatekeeper/pkg/evidence"
)

// Config contains configuration for the evidence recorder.
type Config struct {
	// Enabled enables evidence recording.
	Enabled bool `yaml:"enabled"`

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder persists validation evidence asynchronously. Records are
// enqueued on a buffered channel and written by a background worker, so
// a slow or failing storage backend never stalls validation runs. A full
// buffer drops the record with an error rather than blocking.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates an evidence recorder backed by the given storage.
func NewRecorder(storage evidence.Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evidence recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues an evidence record for async writing. It returns
// immediately; a *evidence.RecorderError is returned only when the buffer
// is full or the recorder is shutting down.
func (r *Recorder) Record(ctx context.Context, record *evidence.Record) error {
	if !r.config.Enabled {
		return nil
	}

	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}

	select {
	case r.recordChan <- record:
		return nil
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"run_id", record.RunID,
		)
		return evidence.NewRecorderError(record.ID, context.Canceled)
	default:
		r.logger.Error("evidence channel full, dropping record",
			"record_id", record.ID,
			"run_id", record.RunID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return evidence.NewRecorderError(record.ID, context.DeadlineExceeded)
	}
}

// Close shuts down the recorder, draining the channel and waiting for
// pending writes to complete.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	r.logger.Info("evidence recorder shut down")
	return nil
}

// worker drains the evidence channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *evidence.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store evidence record",
			"record_id", record.ID,
			"run_id", record.RunID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("evidence recorded",
		"record_id", record.ID,
		"run_id", record.RunID,
		"status", record.Status,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow evidence write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
