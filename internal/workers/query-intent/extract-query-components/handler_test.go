// internal/workers/query-intent/extract-query-components/handler_test.go
package extractquerycomponents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-intent-workers/internal/common/config"
	"query-intent-workers/internal/common/errors"
	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/vocabulary"
	"query-intent-workers/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		FuzzyThreshold: 80,
	}
}

func createTestHandler(t *testing.T, cfg *Config) *Handler {
	t.Helper()
	if cfg == nil {
		cfg = createTestConfig()
	}
	reg, err := registry.Default()
	require.NoError(t, err)

	vocab := vocabulary.NewSet(config.VocabularySourceConfig, config.DefaultEntities, config.DefaultMetrics)
	h, err := NewHandler(cfg, vocab, reg, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected intent.RawMatch
	}{
		{
			name:  "entity, metric and relative date",
			query: "What was the GMV of Flipkart last year?",
			expected: intent.RawMatch{
				Entity:            "Flipkart",
				Parameter:         "GMV",
				StartDate:         "last year",
				EntityStrategy:    intent.StrategyExact,
				ParameterStrategy: intent.StrategyExact,
			},
		},
		{
			name:  "absolute dates kept raw",
			query: "Revenue of Amazon from 01/01/2023 to 31/12/2023",
			expected: intent.RawMatch{
				Entity:            "Amazon",
				Parameter:         "revenue",
				StartDate:         "01/01/2023",
				EndDate:           "31/12/2023",
				EntityStrategy:    intent.StrategyExact,
				ParameterStrategy: intent.StrategyExact,
			},
		},
		{
			name:  "misspelled entity",
			query: "Amazn profit this year",
			expected: intent.RawMatch{
				Entity:            "Amazon",
				Parameter:         "profit",
				StartDate:         "this year",
				EntityStrategy:    intent.StrategyApproximate,
				ParameterStrategy: intent.StrategyExact,
			},
		},
		{
			name:  "nothing recognized is not an error",
			query: "how is the weather",
			expected: intent.RawMatch{
				EntityStrategy:    intent.StrategyNone,
				ParameterStrategy: intent.StrategyNone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil)

			output, err := handler.Execute(context.Background(), &Input{Query: tt.query})

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.Equal(t, tt.expected, output.RawMatch)
		})
	}
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := createTestHandler(t, nil)

	t.Run("empty query", func(t *testing.T) {
		_, err := handler.Execute(context.Background(), &Input{Query: ""})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.FromError(err).Code)
		assert.Contains(t, errors.FromError(err).Details, "query")
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := handler.Execute(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.FromError(err).Code)
	})
}

func TestHandler_Execute_CancelledContext(t *testing.T) {
	handler := createTestHandler(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Execute(ctx, &Input{Query: "Flipkart GMV"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.FromError(err).Code)
}

func TestHandler_Execute_ThresholdFromConfig(t *testing.T) {
	cfg := createTestConfig()
	cfg.FuzzyThreshold = 95
	handler := createTestHandler(t, cfg)

	output, err := handler.Execute(context.Background(), &Input{Query: "Amazn profit"})

	require.NoError(t, err)
	assert.Empty(t, output.RawMatch.Entity)
	assert.Equal(t, "profit", output.RawMatch.Parameter)
}

func TestOutput_JSONOmitsMissingComponents(t *testing.T) {
	data, err := json.Marshal(Output{RawMatch: intent.RawMatch{
		Entity:         "Apple",
		EntityStrategy: intent.StrategyExact,
	}})

	require.NoError(t, err)
	assert.JSONEq(t, `{"rawMatch":{"entity":"Apple"}}`, string(data))
}

// ==========================
// Configuration Tests
// ==========================

func TestFromAppConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		assert.Equal(t, LoadConfig(), FromAppConfig(nil))
	})

	t.Run("worker and query sections applied", func(t *testing.T) {
		cfg := &config.Config{
			Query: config.QueryConfig{FuzzyThreshold: 70},
			Workers: map[string]config.WorkerConfig{
				TaskType: {Enabled: true, Timeout: 2500},
			},
		}

		got := FromAppConfig(cfg)
		assert.Equal(t, 2500*time.Millisecond, got.Timeout)
		assert.Equal(t, 70, got.FuzzyThreshold)
	})
}

func TestNewHandler_UnknownActivity(t *testing.T) {
	_, err := NewHandler(createTestConfig(), vocabulary.Set{}, &registry.ActivityRegistry{}, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
