package metrics

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/mauv0809/drift-bracket/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary SQLite database for testing.
func setupTestDB(t *testing.T) MetricsStore {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "metrics.db"), "", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db)
}

func TestAddAndGetAll(t *testing.T) {
	store := setupTestDB(t)

	// 1. Initially, there should be no metrics
	metrics, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, metrics)

	// 2. Add to a new key
	store.Add(KeyVotesCast, 1)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KeyVotesCast: 1}, metrics)

	// 3. Add to the same key again
	store.Add(KeyVotesCast, 2)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KeyVotesCast: 3}, metrics)

	// 4. Add to a different key
	store.Add(KeyByesAdvanced, 4)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		KeyVotesCast:    3,
		KeyByesAdvanced: 4,
	}, metrics)
}

func TestService_PersistsAndExports(t *testing.T) {
	store := setupTestDB(t)
	reg := prometheus.NewRegistry()
	svc := NewService(store, reg)

	svc.IncBattlesDecided("UPPER")
	svc.IncBattlesDecided("LOWER")
	svc.AddByesAdvanced(3)
	svc.AddByesAdvanced(0)
	svc.IncBracketsBuilt("DOUBLE_ELIMINATION")
	svc.ObserveOperationDuration("vote", 0.002)
	svc.IncNotificationsFailed()

	totals, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 2, totals[KeyBattlesDecided])
	assert.Equal(t, 3, totals[KeyByesAdvanced])
	assert.Equal(t, 1, totals[KeyBracketsBuilt])
	assert.Equal(t, 1, totals[KeyNotificationsFail])
	assert.Zero(t, totals[KeyNotificationsSent])

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, `drift_battles_decided_total{side="LOWER"} 1`)
	assert.Contains(t, out, "drift_byes_advanced_total 3")
	assert.Contains(t, out, `drift_operation_duration_seconds_count{operation="vote"} 1`)
}
