// internal/vocabulary/vocabulary.go
package vocabulary

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"query-intent-workers/internal/common/config"
	"query-intent-workers/internal/common/errors"
	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/intent"
)

// Kinds stored in the query_vocabulary table.
const (
	KindEntity = "entity"
	KindMetric = "metric"
)

// namespace scopes vocabulary fingerprints.
var namespace = uuid.MustParse("5b0f3c1e-7a4e-4c1b-9a55-3f2d6c8e9b10")

// Set is the pair of vocabularies the matcher works against.
type Set struct {
	Entities intent.Vocabulary
	Metrics  intent.Vocabulary
	Source   string
}

// NewSet builds a Set from plain name lists.
func NewSet(source string, entities, metrics []string) Set {
	return Set{
		Entities: intent.NewVocabulary(entities...),
		Metrics:  intent.NewVocabulary(metrics...),
		Source:   source,
	}
}

// Fingerprint identifies the vocabulary contents, including order and the
// declared spelling. It changes whenever a name is added, removed, reordered
// or respelled, since matches are returned as declared.
func (s Set) Fingerprint() uuid.UUID {
	var b strings.Builder
	for _, n := range s.Entities.Names() {
		b.WriteString(n)
		b.WriteByte(0)
	}
	b.WriteByte(1)
	for _, n := range s.Metrics.Names() {
		b.WriteString(n)
		b.WriteByte(0)
	}
	return uuid.NewSHA1(namespace, []byte(b.String()))
}

// Store reads vocabulary names ordered by their declared position.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectNames = `SELECT name FROM query_vocabulary WHERE kind = $1 ORDER BY position`

// Names returns the names of one kind in declaration order.
func (s *Store) Names(ctx context.Context, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectNames, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s vocabulary: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s vocabulary: %w", kind, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s vocabulary: %w", kind, err)
	}
	return names, nil
}

// Load reads both vocabularies. An empty vocabulary is an error since no
// query could ever be complete.
func (s *Store) Load(ctx context.Context) (Set, error) {
	entities, err := s.Names(ctx, KindEntity)
	if err != nil {
		return Set{}, errors.NewVocabularyLoadFailedError(config.VocabularySourcePostgres, err)
	}
	metrics, err := s.Names(ctx, KindMetric)
	if err != nil {
		return Set{}, errors.NewVocabularyLoadFailedError(config.VocabularySourcePostgres, err)
	}

	set := NewSet(config.VocabularySourcePostgres, entities, metrics)
	if err := set.validate(); err != nil {
		return Set{}, errors.NewVocabularyLoadFailedError(config.VocabularySourcePostgres, err)
	}
	return set, nil
}

func (s Set) validate() error {
	if s.Entities.Len() == 0 {
		return fmt.Errorf("no entities defined")
	}
	if s.Metrics.Len() == 0 {
		return fmt.Errorf("no metrics defined")
	}
	return nil
}

// Load builds the configured vocabulary. db is only used, and only required,
// for the postgres source. Overlapping names are logged, not rejected.
func Load(ctx context.Context, cfg config.VocabularyConfig, db *sql.DB, log logger.Logger) (Set, error) {
	var (
		set Set
		err error
	)

	switch cfg.Source {
	case config.VocabularySourcePostgres:
		if db == nil {
			return Set{}, errors.NewVocabularyLoadFailedError(cfg.Source, fmt.Errorf("no database connection"))
		}
		set, err = NewStore(db).Load(ctx)
		if err != nil {
			return Set{}, err
		}
	case config.VocabularySourceConfig, "":
		set = NewSet(config.VocabularySourceConfig, cfg.Entities, cfg.Metrics)
		if err := set.validate(); err != nil {
			return Set{}, errors.NewVocabularyLoadFailedError(config.VocabularySourceConfig, err)
		}
	default:
		return Set{}, errors.NewVocabularyLoadFailedError(cfg.Source, fmt.Errorf("unknown source"))
	}

	warnOverlaps(log, "entity", set.Entities)
	warnOverlaps(log, "metric", set.Metrics)

	log.Info("vocabulary loaded", map[string]interface{}{
		"source":      set.Source,
		"entities":    set.Entities.Len(),
		"metrics":     set.Metrics.Len(),
		"fingerprint": set.Fingerprint().String(),
	})
	return set, nil
}

func warnOverlaps(log logger.Logger, kind string, v intent.Vocabulary) {
	for _, o := range v.Overlaps() {
		log.Warn("vocabulary entries overlap; the earlier declared entry may shadow the other", map[string]interface{}{
			"kind":  kind,
			"inner": o.Inner,
			"outer": o.Outer,
		})
	}
}
