package usage

import (
	"context"
	"sync"
	"time"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/resilience"
)

// batchWriter owns the queue and background loops shared by both backends.
// Store-specific work is injected through write and cleanup.
type batchWriter struct {
	name          string
	records       chan UsageRecord
	batchSize     int
	flushInterval time.Duration
	retentionDays int

	write   func(ctx context.Context, records []UsageRecord) error
	cleanup func(ctx context.Context, before time.Time) (int64, error)
	retry   *resilience.Executor[struct{}]

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newBatchWriter(name string, cfg BackendConfig,
	write func(context.Context, []UsageRecord) error,
	cleanup func(context.Context, time.Time) (int64, error),
) *batchWriter {
	cfg = cfg.withDefaults()
	return &batchWriter{
		name:          name,
		records:       make(chan UsageRecord, queueSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		retentionDays: cfg.RetentionDays,
		write:         write,
		cleanup:       cleanup,
		retry:         resilience.NewExecutor[struct{}](cfg.Retry, nil),
		stopChan:      make(chan struct{}),
	}
}

func (w *batchWriter) enqueue(record UsageRecord) {
	select {
	case w.records <- record:
	default:
		log.Warnf("%s usage queue full, dropping record for %s/%s", w.name, record.Operation, record.Model)
	}
}

func (w *batchWriter) start() {
	w.wg.Add(2)
	go w.writeLoop()
	go w.cleanupLoop()
}

// stop signals the loops, waits for the final drain and reports whether this
// call performed the shutdown.
func (w *batchWriter) stop() bool {
	stopped := false
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()
		stopped = true
	})
	return stopped
}

// flush drains whatever is queued right now.
func (w *batchWriter) flush(ctx context.Context) error {
	batch := make([]UsageRecord, 0, w.batchSize)
	for {
		select {
		case record := <-w.records:
			batch = append(batch, record)
			if len(batch) >= w.batchSize {
				if err := w.writeBatch(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		default:
			return w.writeBatch(ctx, batch)
		}
	}
}

// writeBatch writes records, retrying transient store failures.
func (w *batchWriter) writeBatch(ctx context.Context, records []UsageRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := w.retry.Execute(ctx, func() (struct{}, error) {
		return struct{}{}, w.write(ctx, records)
	})
	return err
}

func (w *batchWriter) writeLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]UsageRecord, 0, w.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := w.writeBatch(ctx, batch); err != nil {
			log.Errorf("failed to write %d usage records to %s: %v", len(batch), w.name, err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case record := <-w.records:
			batch = append(batch, record)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.stopChan:
			for {
				select {
				case record := <-w.records:
					batch = append(batch, record)
					if len(batch) >= w.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (w *batchWriter) cleanupLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -w.retentionDays)
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			n, err := w.cleanup(ctx, cutoff)
			cancel()
			if err != nil {
				log.Errorf("usage retention cleanup failed: %v", err)
			} else if n > 0 {
				log.Infof("removed %d usage records older than %d days", n, w.retentionDays)
			}
		case <-w.stopChan:
			return
		}
	}
}
