package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisworks/tenantcore/pkg/events"
	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

type projectArchived struct {
	ProjectID string `json:"project_id"`
}

// record an event inside a bound scope, then deliver it through the worker on
// a bare context, as a real post-commit worker would.
func recordAndClaim(t *testing.T, storage *events.MemoryStorage, ctx context.Context, payload any) *events.Envelope {
	t.Helper()

	rec, err := events.NewRecorder(storage)
	require.NoError(t, err)
	require.NoError(t, rec.Record(ctx, payload))
	require.NoError(t, rec.Dispatch(context.Background()))

	env, err := storage.Claim(context.Background(), uuid.New(), time.Minute)
	require.NoError(t, err)
	return env
}

func TestWorker_RebindsTenantScopeFromEnvelope(t *testing.T) {
	t.Parallel()

	storage := events.NewMemoryStorage()
	origin := tenancy.WithDescriptor(context.Background(), &tenancy.Descriptor{
		OrgID:      "org_9",
		SchemaName: "tenant_9aaaaaaaaaaa",
		Tier:       tenancy.TierDedicated,
		Active:     true,
	})
	env := recordAndClaim(t, storage, origin, projectArchived{ProjectID: "p1"})

	var (
		mu         sync.Mutex
		seenSchema string
		seenOrg    string
		seenTier   tenancy.Tier
	)
	worker, err := events.NewWorker(storage)
	require.NoError(t, err)
	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
		mu.Lock()
		defer mu.Unlock()
		seenSchema = tenancy.SchemaFromContext(ctx)
		seenOrg, _ = tenancy.OrgIDFromContext(ctx)
		d, _ := tenancy.DescriptorFromContext(ctx)
		seenTier = d.Tier
		assert.Equal(t, "p1", e.ProjectID)
		return nil
	}))

	// The originating binding has unwound; the worker runs on a bare context.
	worker.Process(context.Background(), env)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "tenant_9aaaaaaaaaaa", seenSchema)
	assert.Equal(t, "org_9", seenOrg)
	assert.Equal(t, tenancy.TierDedicated, seenTier)

	snap, ok := storage.Snapshot(env.ID)
	require.True(t, ok)
	assert.Equal(t, events.StatusCompleted, snap.Status)
}

func TestWorker_HandlerFailureIsIsolated(t *testing.T) {
	t.Parallel()

	storage := events.NewMemoryStorage()
	origin := tenancy.WithDescriptor(context.Background(), &tenancy.Descriptor{
		OrgID:      "org_9",
		SchemaName: tenancy.SharedSchema,
		Tier:       tenancy.TierShared,
		Active:     true,
	})
	env := recordAndClaim(t, storage, origin, projectArchived{ProjectID: "p2"})

	worker, err := events.NewWorker(storage)
	require.NoError(t, err)
	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
		return errors.New("downstream unavailable")
	}))

	// Must not panic or propagate; the committed transaction is untouchable.
	worker.Process(context.Background(), env)

	snap, ok := storage.Snapshot(env.ID)
	require.True(t, ok)
	assert.Equal(t, events.StatusPending, snap.Status, "failed envelope is retried")
	assert.EqualValues(t, 1, snap.Attempts)
	require.NotNil(t, snap.LastError)
	assert.Contains(t, *snap.LastError, "downstream unavailable")
}

func TestWorker_HandlerPanicIsContained(t *testing.T) {
	t.Parallel()

	storage := events.NewMemoryStorage()
	env := recordAndClaim(t, storage, context.Background(), projectArchived{ProjectID: "p3"})

	worker, err := events.NewWorker(storage)
	require.NoError(t, err)
	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
		panic("boom")
	}))

	worker.Process(context.Background(), env)

	snap, ok := storage.Snapshot(env.ID)
	require.True(t, ok)
	require.NotNil(t, snap.LastError)
	assert.Contains(t, *snap.LastError, "handler panic")
}

func TestWorker_MissingTenantRunsUnbound(t *testing.T) {
	t.Parallel()

	storage := events.NewMemoryStorage()
	env := recordAndClaim(t, storage, context.Background(), projectArchived{ProjectID: "p4"})
	require.Empty(t, env.TenantSchema)

	var bound bool
	var schema string
	worker, err := events.NewWorker(storage)
	require.NoError(t, err)
	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
		_, bound = tenancy.DescriptorFromContext(ctx)
		schema = tenancy.SchemaFromContext(ctx)
		return nil
	}))

	worker.Process(context.Background(), env)

	assert.False(t, bound, "missing tenant scope is never promoted to a binding")
	assert.Equal(t, "public", schema)
}

func TestWorker_InvalidTenantSchemaRefused(t *testing.T) {
	t.Parallel()

	storage := events.NewMemoryStorage()
	env := &events.Envelope{
		ID:           uuid.New(),
		Name:         "events_test.projectArchived",
		TenantSchema: "tenant_shared; DROP TABLE x",
		OrgID:        "org_evil",
		Payload:      []byte(`{"project_id":"p5"}`),
		MaxAttempts:  1,
		OccurredAt:   time.Now(),
	}
	require.NoError(t, storage.Append(context.Background(), env))
	claimed, err := storage.Claim(context.Background(), uuid.New(), time.Minute)
	require.NoError(t, err)

	var handled bool
	worker, err := events.NewWorker(storage)
	require.NoError(t, err)
	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
		handled = true
		return nil
	}))

	worker.Process(context.Background(), claimed)

	assert.False(t, handled, "handler must not run with a forged schema")
	snap, ok := storage.Snapshot(env.ID)
	require.True(t, ok)
	assert.Equal(t, events.StatusFailed, snap.Status)
}

func TestWorker_EndToEndAcrossWorkers(t *testing.T) {
	t.Parallel()

	storage := events.NewMemoryStorage()
	origin := tenancy.WithDescriptor(context.Background(), &tenancy.Descriptor{
		OrgID:      "org_9",
		SchemaName: "tenant_9aaaaaaaaaaa",
		Tier:       tenancy.TierDedicated,
		Active:     true,
	})

	rec, err := events.NewRecorder(storage)
	require.NoError(t, err)
	require.NoError(t, rec.Record(origin, projectArchived{ProjectID: "p6"}))
	require.NoError(t, rec.Dispatch(context.Background()))

	schemaCh := make(chan string, 1)
	worker, err := events.NewWorker(storage,
		events.WithPullInterval(5*time.Millisecond),
		events.WithMaxConcurrent(2),
	)
	require.NoError(t, err)
	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
		schemaCh <- tenancy.SchemaFromContext(ctx)
		return nil
	}))

	require.NoError(t, worker.Start(context.Background()))
	defer func() { require.NoError(t, worker.Stop()) }()

	select {
	case schema := <-schemaCh:
		assert.Equal(t, "tenant_9aaaaaaaaaaa", schema,
			"a handler on another goroutine still observes the originating tenant")
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWorker_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("requires storage", func(t *testing.T) {
		t.Parallel()
		_, err := events.NewWorker(nil)
		require.ErrorIs(t, err, events.ErrStorageNil)
	})

	t.Run("refuses to start without handlers", func(t *testing.T) {
		t.Parallel()
		worker, err := events.NewWorker(events.NewMemoryStorage())
		require.NoError(t, err)
		require.ErrorIs(t, worker.Start(context.Background()), events.ErrNoHandlers)
	})

	t.Run("unknown event name parks as failed", func(t *testing.T) {
		t.Parallel()

		storage := events.NewMemoryStorage()
		env := &events.Envelope{
			ID:          uuid.New(),
			Name:        "nobody.listens",
			Payload:     []byte(`{}`),
			MaxAttempts: 1,
			OccurredAt:  time.Now(),
		}
		require.NoError(t, storage.Append(context.Background(), env))
		claimed, err := storage.Claim(context.Background(), uuid.New(), time.Minute)
		require.NoError(t, err)

		worker, err := events.NewWorker(storage)
		require.NoError(t, err)
		worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e projectArchived) error {
			return nil
		}))
		worker.Process(context.Background(), claimed)

		snap, ok := storage.Snapshot(env.ID)
		require.True(t, ok)
		assert.Equal(t, events.StatusFailed, snap.Status)
	})
}
