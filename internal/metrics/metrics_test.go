package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, APIOperationsTotal)
	assert.NotNil(t, APIOperationDuration)
	assert.NotNil(t, ClientRequestDuration)
	assert.NotNil(t, ClientErrorsTotal)
	assert.NotNil(t, FetchesTotal)
	assert.NotNil(t, FetchesSuppressedTotal)
	assert.NotNil(t, StalePagesDiscardedTotal)
	assert.NotNil(t, ItemsAppendedTotal)
	assert.NotNil(t, DuplicateItemsDroppedTotal)
	assert.NotNil(t, RecentSearchWritesTotal)
	assert.NotNil(t, StorageCorruptReadsTotal)
	assert.NotNil(t, CompareRejectionsTotal)
	assert.NotNil(t, PricingCacheHitsTotal)
}
