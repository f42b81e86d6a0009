package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *Memory, *Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mem := NewMemory()
	cache := NewCacheWithClient(client, mem, time.Minute, zap.NewNop())
	return mr, mem, cache
}

func TestCache_ReadThroughPopulates(t *testing.T) {
	mr, mem, cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mem.PutPrescription(ctx, Prescription{ID: "RX123", Status: StatusReadyForPickup}))

	status, err := cache.PrescriptionStatus(ctx, "RX123")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, status)

	cached, err := mr.Get("pharmacy:rx:RX123")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, cached)

	// A hit answers from the cache: changing the backend directly is not
	// visible until the entry expires.
	require.NoError(t, mem.PutPrescription(ctx, Prescription{ID: "RX123", Status: StatusOnHold}))
	status, err = cache.PrescriptionStatus(ctx, "RX123")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, status)

	mr.FastForward(2 * time.Minute)
	status, err = cache.PrescriptionStatus(ctx, "RX123")
	require.NoError(t, err)
	assert.Equal(t, StatusOnHold, status, "expired entry reloads from the backend")
}

func TestCache_WriteInvalidates(t *testing.T) {
	_, _, cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PutMedicine(ctx, Medicine{Name: "ibuprofen", Availability: AvailabilityInStock}))

	avail, err := cache.MedicineAvailability(ctx, "ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, AvailabilityInStock, avail)

	// The write deletes the cached entry, so the next read sees it.
	require.NoError(t, cache.PutMedicine(ctx, Medicine{Name: "ibuprofen", Availability: AvailabilityOutOfStock}))

	avail, err = cache.MedicineAvailability(ctx, "ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, AvailabilityOutOfStock, avail)
}

func TestCache_MedicineKeyIsCaseInsensitive(t *testing.T) {
	mr, mem, cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mem.PutMedicine(ctx, Medicine{Name: "Amoxicillin", Availability: AvailabilityInStock}))

	_, err := cache.MedicineAvailability(ctx, "AMOXICILLIN")
	require.NoError(t, err)

	_, err = mr.Get("pharmacy:med:amoxicillin")
	assert.NoError(t, err, "cache key uses the normalized name")
}

func TestCache_FallsThroughWhenRedisDown(t *testing.T) {
	mr, mem, cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mem.PutPrescription(ctx, Prescription{ID: "RX456", Status: StatusBeingPrepared}))
	mr.Close()

	// Lookups survive a dead cache.
	status, err := cache.PrescriptionStatus(ctx, "RX456")
	require.NoError(t, err)
	assert.Equal(t, StatusBeingPrepared, status)

	// Writes do not: skipping invalidation would leave stale reads behind.
	err = cache.PutPrescription(ctx, Prescription{ID: "RX456", Status: StatusOnHold})
	assert.Error(t, err)
}

func TestCache_HealthCheck(t *testing.T) {
	mr, _, cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.HealthCheck(ctx))

	mr.Close()
	assert.Error(t, cache.HealthCheck(ctx))
}
