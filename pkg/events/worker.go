package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// Worker consumes envelopes after their originating transactions have
// committed. Before invoking a handler it re-establishes a fresh tenant
// binding from the envelope's own TenantSchema and OrgID fields; the
// originating request's binding is long gone by the time a handler runs.
// Handler failures are logged and isolated: they never propagate to the
// already-committed transaction and never block sibling envelopes.
type Worker struct {
	storage  Storage
	handlers map[string]Handler
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pullInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a worker over the given storage.
func NewWorker(storage Storage, opts ...WorkerOption) (*Worker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	options := &workerOptions{
		pullInterval:  time.Second,
		lockTimeout:   time.Minute,
		maxConcurrent: 1,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		storage:      storage,
		handlers:     make(map[string]Handler),
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrent),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
	}, nil
}

// RegisterHandlers registers handlers by event name.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Start begins consuming in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("event worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Int("max_concurrent", cap(w.sem)))
	return nil
}

// Stop shuts down gracefully, waiting for in-flight handlers.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return errors.New("worker not started")
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("event worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run returns a function suitable for errgroup.Group.Go.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()
					w.claimAndProcess()
				}()
			default:
				// All slots busy, skip this tick.
			}
		}
	}
}

func (w *Worker) claimAndProcess() {
	env, err := w.storage.Claim(w.ctx, w.workerID, w.lockTimeout)
	if err != nil {
		if !errors.Is(err, ErrNoEventToClaim) && !errors.Is(err, context.Canceled) {
			w.logger.Error("failed to claim event",
				slog.String("worker_id", w.workerID.String()),
				slog.String("error", err.Error()))
		}
		return
	}
	w.Process(w.ctx, env)
}

// Process delivers one envelope: rebind, invoke, record the outcome.
// Exported so synchronous dispatch loops and tests can drive delivery
// directly.
func (w *Worker) Process(ctx context.Context, env *Envelope) {
	w.mu.RLock()
	handler, ok := w.handlers[env.Name]
	w.mu.RUnlock()
	if !ok {
		w.logger.Error("no handler for event",
			slog.String("event", env.Name),
			slog.String("event_id", env.ID.String()))
		_ = w.storage.Fail(ctx, env.ID, ErrHandlerNotFound.Error())
		return
	}

	hctx, err := w.rebind(ctx, env)
	if err != nil {
		w.logger.Error("refusing event with invalid tenant scope",
			slog.String("event", env.Name),
			slog.String("event_id", env.ID.String()),
			slog.String("error", err.Error()))
		_ = w.storage.Fail(ctx, env.ID, err.Error())
		return
	}

	if err := w.invoke(hctx, handler, env); err != nil {
		// Isolated per handler: logged, never propagated. The originating
		// transaction committed long ago and stays committed.
		w.logger.Error("event handler failed",
			slog.String("event", env.Name),
			slog.String("event_id", env.ID.String()),
			slog.String("error", err.Error()))
		_ = w.storage.Fail(ctx, env.ID, err.Error())
		return
	}

	if err := w.storage.Complete(ctx, env.ID); err != nil {
		w.logger.Error("failed to mark event completed",
			slog.String("event_id", env.ID.String()),
			slog.String("error", err.Error()))
	}
}

// rebind builds the handler's context from the envelope's explicit tenant
// fields. An envelope without a tenant schema runs unbound and is assumed to
// touch only tenant-agnostic data; that is logged as a warning, never
// silently promoted to full neutral-schema access.
func (w *Worker) rebind(ctx context.Context, env *Envelope) (context.Context, error) {
	if env.TenantSchema == "" {
		w.logger.Warn("event carries no tenant scope, handler runs unbound",
			slog.String("event", env.Name),
			slog.String("event_id", env.ID.String()))
		return ctx, nil
	}

	schema, err := tenancy.SanitizeSchemaName(env.TenantSchema)
	if err != nil {
		return nil, err
	}

	return tenancy.WithDescriptor(ctx, &tenancy.Descriptor{
		OrgID:      env.OrgID,
		SchemaName: schema,
		Tier:       tenancy.TierForSchema(schema),
		Active:     true,
	}), nil
}

func (w *Worker) invoke(ctx context.Context, handler Handler, env *Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler.Handle(ctx, env.Payload)
}
