package vocabulary

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"query-intent-workers/internal/common/config"
	"query-intent-workers/internal/common/errors"
	"query-intent-workers/internal/common/logger"
)

const selectPattern = `SELECT name FROM query_vocabulary WHERE kind = \$1 ORDER BY position`

func TestStore_Load_PreservesDatabaseOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(selectPattern).WithArgs(KindEntity).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Walmart").AddRow("Amazon").AddRow("Flipkart"))
	mock.ExpectQuery(selectPattern).WithArgs(KindMetric).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("revenue").AddRow("GMV"))

	set, err := NewStore(db).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Walmart", "Amazon", "Flipkart"}, set.Entities.Names())
	assert.Equal(t, []string{"revenue", "GMV"}, set.Metrics.Names())
	assert.Equal(t, config.VocabularySourcePostgres, set.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load_Errors(t *testing.T) {
	t.Run("query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(selectPattern).WithArgs(KindEntity).WillReturnError(stderrors.New("relation does not exist"))

		_, err = NewStore(db).Load(context.Background())
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeVocabularyLoadFailed, errors.FromError(err).Code)
		assert.True(t, errors.FromError(err).Retryable)
	})

	t.Run("empty metrics", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(selectPattern).WithArgs(KindEntity).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Apple"))
		mock.ExpectQuery(selectPattern).WithArgs(KindMetric).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))

		_, err = NewStore(db).Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, errors.FromError(err).Details, "no metrics defined")
	})

	t.Run("scan failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(selectPattern).WithArgs(KindEntity).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(nil))

		_, err = NewStore(db).Load(context.Background())
		assert.Error(t, err)
	})
}

func TestLoad_FromConfig(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.NewZapAdapter(zap.New(core))

	set, err := Load(context.Background(), config.VocabularyConfig{
		Source:   config.VocabularySourceConfig,
		Entities: []string{"Amazon", "Amazon Web Services"},
		Metrics:  config.DefaultMetrics,
	}, nil, log)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Entities.Len())
	assert.Equal(t, 5, set.Metrics.Len())
	assert.Len(t, logs.FilterLevelExact(zapcore.WarnLevel).All(), 1)
	assert.Len(t, logs.FilterMessage("vocabulary loaded").All(), 1)
}

func TestLoad_Errors(t *testing.T) {
	log := logger.NewNoOpLogger()

	_, err := Load(context.Background(), config.VocabularyConfig{Source: config.VocabularySourceConfig}, nil, log)
	assert.Error(t, err)

	_, err = Load(context.Background(), config.VocabularyConfig{Source: config.VocabularySourcePostgres}, nil, log)
	assert.Error(t, err)

	_, err = Load(context.Background(), config.VocabularyConfig{Source: "csv", Entities: []string{"a"}, Metrics: []string{"b"}}, nil, log)
	assert.Error(t, err)
}

func TestLoad_FromPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(selectPattern).WithArgs(KindEntity).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Flipkart"))
	mock.ExpectQuery(selectPattern).WithArgs(KindMetric).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("GMV"))

	set, err := Load(context.Background(), config.VocabularyConfig{Source: config.VocabularySourcePostgres}, db, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"Flipkart"}, set.Entities.Names())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_Fingerprint(t *testing.T) {
	a := NewSet("config", []string{"Flipkart", "Amazon"}, []string{"GMV"})
	b := NewSet("postgres", []string{"Flipkart", "Amazon"}, []string{"GMV"})
	respelled := NewSet("config", []string{"flipkart", "amazon"}, []string{"gmv"})
	reordered := NewSet("config", []string{"Amazon", "Flipkart"}, []string{"GMV"})
	moved := NewSet("config", []string{"Flipkart"}, []string{"Amazon", "GMV"})

	assert.Equal(t, a.Fingerprint(), a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), respelled.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), reordered.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), moved.Fingerprint())
}
