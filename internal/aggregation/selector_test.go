package aggregation

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental/internal/infrastructure"
	"bikerental/internal/shared/testutil"
	"bikerental/pkg/contracts/domain"
)

func TestSelector_Select(t *testing.T) {
	daily, hourly := loadSampleTables(t)
	logger, logs := testutil.NewTestLogger(t)
	selector := NewSelector(logger, infrastructure.NoopDashboardMetrics())

	result, spec, err := selector.Select(context.Background(), ByHour, daily, hourly)
	require.NoError(t, err)

	assert.Equal(t, ByHour, result.View)
	assert.Equal(t, ChartLine, spec.Kind)
	assert.Equal(t, "Jam", spec.XLabel)
	assert.True(t, logs.ContainsMessage("view aggregated"))
	assert.True(t, logs.ContainsAttr("view", "hour"))
}

func TestSelector_SelectFailure(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	selector := NewSelector(logger, nil)

	daily := tableOf(domain.TableKindDaily, [][]string{{"yr"}, {"0"}})

	result, spec, err := selector.Select(context.Background(), BySeasonTotal, daily, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, spec.Title)

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "aggregation failed")
}
