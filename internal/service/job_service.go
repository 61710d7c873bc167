package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/reconcile"
	"notevault-be/pkg/events"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	JobStateRunning  = "running"
	JobStateSuccess  = "success"
	JobStateRejected = "rejected"
	JobStateError    = "error"
)

const (
	EventSyncProgress   = "SYNC_PROGRESS"
	EventSyncCompletion = "SYNC_COMPLETION"
)

// JobFunc is one unit of background work. It reports progress through the
// supplied callback and returns the number of records it wrote.
type JobFunc func(ctx context.Context, progress reconcile.ProgressFunc) (int, error)

// IJobService serializes merges and re-keyings on a single worker: one job
// at a time per store, no cancellation once started. Finished results stay
// queryable until their TTL.
type IJobService interface {
	Submit(name string, run JobFunc) (*dto.JobResponse, error)
	Status(id uuid.UUID) (*dto.JobStatusResponse, bool)
	Worker(ctx context.Context) error
}

type queuedJob struct {
	id   uuid.UUID
	name string
	run  JobFunc
}

type jobService struct {
	queue     chan queuedJob
	statuses  *cache.Cache
	publisher IPublisherService
	log       logger.ILogger
}

func NewJobService(publisher IPublisherService, ttl time.Duration, log logger.ILogger) IJobService {
	return &jobService{
		queue:     make(chan queuedJob, 16),
		statuses:  cache.New(ttl, ttl),
		publisher: publisher,
		log:       log,
	}
}

func (s *jobService) Submit(name string, run JobFunc) (*dto.JobResponse, error) {
	id := uuid.New()
	s.put(&dto.JobStatusResponse{JobId: id, Name: name, State: JobStateRunning})

	select {
	case s.queue <- queuedJob{id: id, name: name, run: run}:
		return &dto.JobResponse{JobId: id}, nil
	default:
		s.statuses.Delete(id.String())
		return nil, errors.New("job queue is full")
	}
}

func (s *jobService) Status(id uuid.UUID) (*dto.JobStatusResponse, bool) {
	v, ok := s.statuses.Get(id.String())
	if !ok {
		return nil, false
	}
	status := v.(dto.JobStatusResponse)
	return &status, true
}

// Worker drains the queue until ctx is done. Started once from main, like
// the other background consumers.
func (s *jobService) Worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.queue:
			s.execute(ctx, job)
		}
	}
}

func (s *jobService) execute(ctx context.Context, job queuedJob) {
	status := dto.JobStatusResponse{JobId: job.id, Name: job.name, State: JobStateRunning}

	progress := func(stage string, done, total int) {
		status.Stage = stage
		status.Done = done
		status.Total = total
		s.put(&status)
		s.publishEvent(ctx, EventSyncProgress, eventData(dto.ProgressEvent{
			JobId: job.id,
			Stage: stage,
			Done:  done,
			Total: total,
		}))
	}

	imported, err := job.run(ctx, progress)
	status.Imported = imported
	switch {
	case err == nil:
		status.State = JobStateSuccess
	case syncerr.Rejected(err):
		status.State = JobStateRejected
		status.Message = syncerr.Message(err)
	default:
		status.State = JobStateError
		status.Message = syncerr.Message(err)
	}
	if err != nil {
		s.log.Error("jobs", "job finished with failure", map[string]interface{}{
			"job":   job.name,
			"id":    job.id.String(),
			"state": status.State,
			"error": err.Error(),
		})
	} else {
		s.log.Info("jobs", "job finished", map[string]interface{}{
			"job":      job.name,
			"id":       job.id.String(),
			"imported": imported,
		})
	}

	s.put(&status)
	s.publishEvent(ctx, EventSyncCompletion, eventData(dto.CompletionEvent{
		JobId:    job.id,
		State:    status.State,
		Message:  status.Message,
		Imported: imported,
	}))
}

// eventData flattens a typed event into the payload map the event bus
// carries.
func eventData(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func (s *jobService) put(status *dto.JobStatusResponse) {
	s.statuses.SetDefault(status.JobId.String(), *status)
}

func (s *jobService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(events.New(eventType, data))
	if err != nil {
		return
	}
	// Events are auxiliary; a publish failure never fails the job.
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Warn("jobs", "failed to publish sync event", map[string]interface{}{"error": err.Error()})
	}
}
