package remote

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
)

// ErrSimulatedFailure is returned by Flaky for an injected write failure
var ErrSimulatedFailure = errors.New("simulated network failure")

// FlakyConfig shapes the simulated network
type FlakyConfig struct {
	// MinLatency and MaxLatency bound the delay added to every call
	MinLatency time.Duration
	MaxLatency time.Duration
	// WriteFailureRate is the chance in [0,1] that a write fails with a transient error
	WriteFailureRate float64
	Seed             uint64
}

// Flaky wraps a RemoteStore with latency and intermittent write failures,
// the way a real network misbehaves. Reads never fail.
type Flaky struct {
	next   services.RemoteStore
	cfg    FlakyConfig
	logger *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewFlaky(next services.RemoteStore, cfg FlakyConfig, logger *slog.Logger) *Flaky {
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	return &Flaky{
		next:   next,
		cfg:    cfg,
		logger: logger,
		rnd:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

func (f *Flaky) ListAssessments(ctx context.Context, filter services.AssessmentFilter) ([]*models.Assessment, error) {
	if err := f.delay(ctx); err != nil {
		return nil, err
	}
	return f.next.ListAssessments(ctx, filter)
}

func (f *Flaky) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	if err := f.delay(ctx); err != nil {
		return nil, err
	}
	return f.next.GetAssessment(ctx, id)
}

func (f *Flaky) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	if err := f.delay(ctx); err != nil {
		return nil, err
	}
	return f.next.GetAssessmentByJob(ctx, jobID)
}

func (f *Flaky) CreateAssessment(ctx context.Context, jobID string, assessment models.Assessment, idempotencyKey string) (*models.Assessment, error) {
	if err := f.write(ctx, "create_assessment"); err != nil {
		return nil, err
	}
	return f.next.CreateAssessment(ctx, jobID, assessment, idempotencyKey)
}

func (f *Flaky) UpdateAssessment(ctx context.Context, assessment models.Assessment) (*models.Assessment, error) {
	if err := f.write(ctx, "update_assessment"); err != nil {
		return nil, err
	}
	return f.next.UpdateAssessment(ctx, assessment)
}

func (f *Flaky) SubmitResponse(ctx context.Context, submission models.Submission, idempotencyKey string) (*models.ResponseRecord, error) {
	if err := f.write(ctx, "submit_response"); err != nil {
		return nil, err
	}
	return f.next.SubmitResponse(ctx, submission, idempotencyKey)
}

func (f *Flaky) ListResponses(ctx context.Context, assessmentID string) ([]*models.ResponseRecord, error) {
	if err := f.delay(ctx); err != nil {
		return nil, err
	}
	return f.next.ListResponses(ctx, assessmentID)
}

func (f *Flaky) write(ctx context.Context, op string) error {
	if err := f.delay(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	fail := f.rnd.Float64() < f.cfg.WriteFailureRate
	f.mu.Unlock()
	if fail {
		f.logger.Debug("Injecting remote failure", "op", op)
		return services.NewTransientError(op, services.CauseServer, ErrSimulatedFailure)
	}
	return nil
}

func (f *Flaky) delay(ctx context.Context) error {
	d := f.cfg.MinLatency
	if spread := f.cfg.MaxLatency - f.cfg.MinLatency; spread > 0 {
		f.mu.Lock()
		d += time.Duration(f.rnd.Int64N(int64(spread)))
		f.mu.Unlock()
	}
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return services.NewTransientError("delay", services.CauseCommunication, ctx.Err())
	case <-t.C:
		return nil
	}
}

var _ services.RemoteStore = (*Flaky)(nil)
