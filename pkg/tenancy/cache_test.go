package tenancy_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// countingDirectory records lookups so tests can assert single-flight behavior.
type countingDirectory struct {
	mu      sync.Mutex
	entries map[string]*tenancy.Descriptor
	calls   atomic.Int64
	delay   time.Duration
	err     error
}

func newCountingDirectory() *countingDirectory {
	return &countingDirectory{entries: make(map[string]*tenancy.Descriptor)}
}

func (d *countingDirectory) add(desc *tenancy.Descriptor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[desc.OrgID] = desc
}

func (d *countingDirectory) Resolve(ctx context.Context, orgID string) (*tenancy.Descriptor, error) {
	d.calls.Add(1)
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.err != nil {
		return nil, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	desc, ok := d.entries[orgID]
	if !ok {
		return nil, tenancy.ErrOrgNotProvisioned
	}
	return desc, nil
}

func TestResolutionCache_ReadThrough(t *testing.T) {
	t.Parallel()

	dir := newCountingDirectory()
	dir.add(&tenancy.Descriptor{
		OrgID:      "org_1",
		SchemaName: "tenant_0123456789ab",
		Tier:       tenancy.TierDedicated,
		Active:     true,
	})
	cache := tenancy.NewResolutionCache(dir)

	first, err := cache.Resolve(context.Background(), "org_1")
	require.NoError(t, err)

	second, err := cache.Resolve(context.Background(), "org_1")
	require.NoError(t, err)

	assert.Same(t, first, second, "cached entries are immutable and shared")
	assert.EqualValues(t, 1, dir.calls.Load())
}

func TestResolutionCache_SingleFlight(t *testing.T) {
	t.Parallel()

	dir := newCountingDirectory()
	dir.delay = 20 * time.Millisecond
	dir.add(&tenancy.Descriptor{
		OrgID:      "org_hot",
		SchemaName: "tenant_shared",
		Tier:       tenancy.TierShared,
		Active:     true,
	})
	cache := tenancy.NewResolutionCache(dir)

	const concurrency = 50
	results := make([]*tenancy.Descriptor, concurrency)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := range concurrency {
		go func(i int) {
			defer wg.Done()
			d, err := cache.Resolve(context.Background(), "org_hot")
			assert.NoError(t, err)
			results[i] = d
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, dir.calls.Load(),
		"concurrent first-time resolutions must perform exactly one directory lookup")
	for _, d := range results {
		assert.Same(t, results[0], d, "all callers observe the identical descriptor")
	}
}

func TestResolutionCache_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	dir := newCountingDirectory()
	dir.err = errors.New("directory unavailable")
	cache := tenancy.NewResolutionCache(dir)

	_, err := cache.Resolve(context.Background(), "org_x")
	require.Error(t, err)

	dir.err = nil
	dir.add(&tenancy.Descriptor{OrgID: "org_x", SchemaName: "tenant_shared", Tier: tenancy.TierShared, Active: true})

	d, err := cache.Resolve(context.Background(), "org_x")
	require.NoError(t, err)
	assert.Equal(t, "org_x", d.OrgID)
	assert.EqualValues(t, 2, dir.calls.Load())
}

func TestResolutionCache_Invalidate(t *testing.T) {
	t.Parallel()

	dir := newCountingDirectory()
	dir.add(&tenancy.Descriptor{OrgID: "org_1", SchemaName: "tenant_shared", Tier: tenancy.TierShared, Active: true})
	cache := tenancy.NewResolutionCache(dir)

	_, err := cache.Resolve(context.Background(), "org_1")
	require.NoError(t, err)

	cache.Invalidate(context.Background(), "org_1")

	_, err = cache.Resolve(context.Background(), "org_1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, dir.calls.Load())
}

func TestResolutionCache_NotProvisioned(t *testing.T) {
	t.Parallel()

	cache := tenancy.NewResolutionCache(newCountingDirectory())

	_, err := cache.Resolve(context.Background(), "org_unknown")
	require.ErrorIs(t, err, tenancy.ErrOrgNotProvisioned)
}
