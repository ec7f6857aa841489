package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"propstack/catalog/internal/client"
	"propstack/catalog/internal/domain"
	"propstack/catalog/internal/domain/task"
	"propstack/catalog/internal/metrics"
	"propstack/catalog/internal/queue"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultMinIdleTime is used when no positive idle time is configured
const DefaultMinIdleTime = 120 * time.Second

// Enricher replaces placeholder logos with logos found on vendor websites.
type Enricher struct {
	catalog     *Catalog
	client      client.LogoClient
	queue       queue.Queue
	recorder    metrics.Recorder
	groupName   string
	minIdleTime time.Duration
	maxRetries  int
}

func NewEnricher(
	catalog *Catalog,
	logoClient client.LogoClient,
	taskQueue queue.Queue,
	recorder metrics.Recorder,
	groupName string,
	minIdleTime int,
	maxRetries int,
) *Enricher {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	idle := time.Duration(minIdleTime) * time.Second
	if idle <= 0 {
		idle = DefaultMinIdleTime
	}
	return &Enricher{
		catalog:     catalog,
		client:      logoClient,
		queue:       taskQueue,
		recorder:    recorder,
		groupName:   groupName,
		minIdleTime: idle,
		maxRetries:  maxRetries,
	}
}

// EnqueueMissingLogos adds one task per company without a logo.
func (e *Enricher) EnqueueMissingLogos(ctx context.Context) (int, error) {
	if e.queue == nil {
		return 0, fmt.Errorf("enrichment queue is not configured")
	}

	candidates, err := e.catalog.MissingLogos(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list companies without logo: %w", err)
	}

	for _, candidate := range candidates {
		_, err := e.queue.AddTask(ctx, newLogoTask(candidate))
		if err != nil {
			log.Errorf("❌ Failed to add logo task for %s: %v", candidate.Name, err)
			return 0, err
		}
	}

	log.Infof("📬 Enqueued %d logo tasks", len(candidates))
	return len(candidates), nil
}

// RunInline enriches every candidate in process, numWorkers at a time.
// It returns the number of logos stored.
func (e *Enricher) RunInline(ctx context.Context, numWorkers int) (int, error) {
	candidates, err := e.catalog.MissingLogos(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list companies without logo: %w", err)
	}

	log.Infof("🔄 Enriching %d companies with %d workers", len(candidates), numWorkers)

	var stored atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for _, candidate := range candidates {
		logoTask := newLogoTask(candidate)
		g.Go(func() error {
			ok, err := e.enrich(ctx, logoTask)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warnf("⚠️ No logo for %s: %v", logoTask.CompanyName, err)
				return nil
			}
			if ok {
				stored.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(stored.Load()), err
	}

	log.Infof("✅ Stored %d logos out of %d candidates", stored.Load(), len(candidates))
	return int(stored.Load()), nil
}

func (e *Enricher) RunWorkers(ctx context.Context, numWorkers int) error {
	if e.queue == nil {
		return fmt.Errorf("enrichment queue is not configured")
	}

	var wg sync.WaitGroup

	e.runWorkersForStream(ctx, &wg, numWorkers, queue.StreamName(task.LogoTaskType), "main")
	e.runWorkersForStream(ctx, &wg, max(1, numWorkers/2), queue.StreamName(task.LogoRetryTaskType), "retry")

	wg.Wait()
	return nil
}

func (e *Enricher) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.reclaimIdle(ctx, streamName, workerType)
	}()

	for i := 1; i <= numWorkers; i++ {
		consumer := fmt.Sprintf("%s-worker-%d", workerType, i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.consume(ctx, streamName, consumer)
		}()
	}
}

// reclaimIdle periodically takes over messages left pending by consumers
// that died before acking them.
func (e *Enricher) reclaimIdle(ctx context.Context, streamName, workerType string) {
	ticker := time.NewTicker(e.minIdleTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimer := fmt.Sprintf("reclaim-%s-%s", workerType, uuid.NewString())
		pending, err := e.queue.AutoClaim(ctx, e.groupName, claimer, streamName, e.minIdleTime)
		if err != nil {
			if ctx.Err() == nil {
				log.Errorf("❌ Failed to reclaim idle tasks on %s: %v", streamName, err)
			}
			continue
		}
		if len(pending) == 0 {
			continue
		}

		log.Infof("♻️ Reclaimed %d idle %s tasks", len(pending), workerType)
		for i := range pending {
			if err := e.processMessage(ctx, &pending[i]); err != nil {
				log.Errorf("❌ Failed to process reclaimed task %s: %v", pending[i].ID, err)
			}
		}
	}
}

// consume reads tasks from streamName as consumer until ctx is done.
func (e *Enricher) consume(ctx context.Context, streamName, consumer string) {
	log.Infof("🚀 Consumer %s reading %s", consumer, streamName)
	defer log.Infof("🛑 Consumer %s stopped", consumer)

	for ctx.Err() == nil {
		msg, err := e.queue.GetTask(ctx, e.groupName, consumer, streamName)
		if err != nil {
			if ctx.Err() == nil {
				log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
			}
			continue
		}
		if msg == nil {
			continue
		}

		if err := e.processMessage(ctx, msg); err != nil {
			log.Errorf("❌ Failed to process task %s: %v", msg.ID, err)
		}
	}
}

func (e *Enricher) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, taskData, err := task.FromValues(msg.Values)
	if err != nil {
		return fmt.Errorf("invalid message %s: %w", msg.ID, err)
	}

	switch taskType {
	case task.LogoTaskType:
		logoTask, err := task.UnmarshalTask[*task.LogoTask](taskData)
		if err != nil {
			return err
		}

		if _, err := e.enrich(ctx, logoTask); err != nil {
			e.scheduleRetry(ctx, &task.LogoRetryTask{LogoTask: *logoTask, Error: err.Error()})
		}

	case task.LogoRetryTaskType:
		retryTask, err := task.UnmarshalTask[*task.LogoRetryTask](taskData)
		if err != nil {
			return err
		}

		retryTask.RetryCount++
		log.Infof("🔄 Retrying logo for %s (attempt %d)", retryTask.CompanyName, retryTask.RetryCount)

		if _, err := e.enrich(ctx, &retryTask.LogoTask); err != nil {
			retryTask.Error = err.Error()
			e.scheduleRetry(ctx, retryTask)
		}

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	if err := e.queue.AckTask(ctx, queue.StreamName(taskType), e.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (e *Enricher) scheduleRetry(ctx context.Context, retryTask *task.LogoRetryTask) {
	if retryTask.RetryCount >= e.maxRetries {
		e.recorder.Logo("abandoned")
		log.Warnf("🚫 Giving up on logo for %s after %d attempts: %s",
			retryTask.CompanyName, retryTask.RetryCount, retryTask.Error)
		return
	}

	if _, err := e.queue.AddTask(ctx, retryTask); err != nil {
		log.Errorf("❌ Failed to add retry task for %s: %v", retryTask.CompanyName, err)
		return
	}
	log.Warnf("🔄 Added %s to retry queue due to error: %s", retryTask.CompanyName, retryTask.Error)
}

// enrich fetches a logo and stores it. It reports false without error when
// the company no longer needs one.
func (e *Enricher) enrich(ctx context.Context, logoTask *task.LogoTask) (bool, error) {
	logo, err := e.client.FindLogo(ctx, logoTask.CompanyURL)
	if err != nil {
		e.recorder.Logo(logoResult(err))
		return false, err
	}

	err = e.catalog.SetLogo(ctx, logoTask.CategoryPath, logoTask.CompanyName, logo)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) || errors.Is(err, domain.ErrPathNotFound) {
			e.recorder.Logo("skipped")
			log.Debugf("Skipping logo for %s: %v", logoTask.CompanyName, err)
			return false, nil
		}
		e.recorder.Logo("error")
		return false, err
	}

	e.recorder.Logo("stored")
	log.Infof("🖼️ Stored logo for %s (%s)", logoTask.CompanyName, logoTask.ID)
	return true, nil
}

func logoResult(err error) string {
	if errors.Is(err, client.ErrLogoNotFound) {
		return "not_found"
	}
	return "fetch_error"
}

func newLogoTask(candidate LogoCandidate) *task.LogoTask {
	return &task.LogoTask{
		ID:           uuid.NewString(),
		CategoryPath: candidate.Path,
		CompanyName:  candidate.Name,
		CompanyURL:   candidate.URL,
	}
}
