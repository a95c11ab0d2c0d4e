package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Config holds audit service configuration
type Config struct {
	WorkerCount  int           // default: 2
	QueueSize    int           // default: 1000
	WriteTimeout time.Duration // default: 10 seconds
}

// Service writes audit entries through a background queue. Record never
// blocks the caller and never reports failure; write errors are logged.
type Service struct {
	repo   audit.Repository
	config Config

	queue  chan audit.Entry
	wg     sync.WaitGroup
	stopCh chan struct{}

	// mu orders enqueues before Close; held for writing only while closing
	mu     sync.RWMutex
	closed bool
}

// NewAuditService creates the service and starts its workers
func NewAuditService(repo audit.Repository, cfg Config) *Service {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	s := &Service{
		repo:   repo,
		config: cfg,
		queue:  make(chan audit.Entry, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("audit service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

var _ audit.Sink = (*Service)(nil)

// Record implements audit.Sink.
func (s *Service) Record(ctx context.Context, entry audit.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.RLock()
	queued := false
	if !s.closed {
		select {
		case s.queue <- entry:
			queued = true
		default:
		}
	}
	s.mu.RUnlock()

	// closed or queue full: write inline
	if !queued {
		s.write(-1, entry)
	}
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// Close drains the queue and stops the workers.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	slog.Info("audit service stopped")
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.queue:
			s.write(id, entry)
		case <-s.stopCh:
			for {
				select {
				case entry := <-s.queue:
					s.write(id, entry)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) write(worker int, entry audit.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
	defer cancel()

	if _, err := s.repo.Create(ctx, entry); err != nil {
		slog.Error("failed to write audit entry",
			"worker", worker,
			"action", entry.Action,
			"target_id", entry.TargetID,
			"error", err,
		)
	}
}
