// internal/intent/builder.go
package intent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"query-intent-workers/internal/common/logger"
)

// IncompleteQueryMessage is the fixed, user-facing text of an incomplete query.
const IncompleteQueryMessage = "Invalid or incomplete query. Please provide a valid company name and metric."

const comparisonKeyword = "compare"

// ErrIncompleteQuery matches any *IncompleteQueryError via errors.Is.
var ErrIncompleteQuery = errors.New("INCOMPLETE_QUERY")

// IncompleteQueryError is returned when the entity or the metric could not be
// resolved. No record is produced in that case.
type IncompleteQueryError struct {
	MissingEntity    bool
	MissingParameter bool
}

func (e *IncompleteQueryError) Error() string {
	return IncompleteQueryMessage
}

func (e *IncompleteQueryError) Is(target error) bool {
	return target == ErrIncompleteQuery
}

// Outcome labels passed to a Recorder.
const (
	OutcomeSuccess    = "success"
	OutcomeComparison = "comparison"
	OutcomeIncomplete = "incomplete"
)

// Recorder receives pipeline observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordExtraction(raw RawMatch)
	RecordOutcome(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordExtraction(RawMatch)           {}
func (nopRecorder) RecordOutcome(string, time.Duration) {}

// Builder assembles QueryResults. It holds no per-query state and can be
// shared between goroutines.
type Builder struct {
	matcher  *Matcher
	resolver Resolver
	now      func() time.Time
	logger   logger.Logger
	recorder Recorder
}

type Option func(*Builder)

// WithClock sets the source of the reference date.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func WithMatcher(m *Matcher) Option {
	return func(b *Builder) { b.matcher = m }
}

func WithResolver(r Resolver) Option {
	return func(b *Builder) { b.resolver = r }
}

func WithLogger(l logger.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		matcher:  NewMatcher(DefaultFuzzyThreshold),
		now:      time.Now,
		logger:   logger.NewNoOpLogger(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Now returns the builder's current reference time.
func (b *Builder) Now() time.Time {
	return b.now()
}

// Extract exposes the matcher stage on its own.
func (b *Builder) Extract(query string, entities, metrics Vocabulary) RawMatch {
	return b.matcher.Extract(query, entities, metrics)
}

// Build produces the result for query using the builder's clock.
func (b *Builder) Build(query string, entities, metrics Vocabulary, previous QueryResult) (QueryResult, error) {
	return b.BuildAt(query, entities, metrics, previous, b.now())
}

// BuildAt produces the result for query with today as the reference date.
func (b *Builder) BuildAt(query string, entities, metrics Vocabulary, previous QueryResult, today time.Time) (QueryResult, error) {
	started := time.Now()

	record, err := b.BuildRecord(query, entities, metrics, today)
	if err != nil {
		b.recorder.RecordOutcome(OutcomeIncomplete, time.Since(started))
		return nil, err
	}

	result := Combine(record, query, previous)
	b.recordOutcome(result, started)

	return result, nil
}

// Reuse combines a record built earlier for the same query with previous and
// reports the outcome the way BuildAt does. Extraction is not reported since
// the matcher does not run.
func (b *Builder) Reuse(record QueryRecord, query string, previous QueryResult) QueryResult {
	started := time.Now()
	result := Combine(record, query, previous)
	b.recordOutcome(result, started)
	return result
}

func (b *Builder) recordOutcome(result QueryResult, started time.Time) {
	outcome := OutcomeSuccess
	if len(result) > 1 {
		outcome = OutcomeComparison
	}
	b.recorder.RecordOutcome(outcome, time.Since(started))
}

// Settings describes the configuration that shapes a record: the approximate
// match threshold and absolute date normalization. Two builders with equal
// settings produce equal records for equal inputs.
func (b *Builder) Settings() string {
	return fmt.Sprintf("threshold=%d;normalize=%t", b.matcher.Threshold(), b.resolver.NormalizeAbsolute)
}

// BuildRecord produces only the record for query itself, without merging
// previous records. It is a pure function of its arguments.
func (b *Builder) BuildRecord(query string, entities, metrics Vocabulary, today time.Time) (QueryRecord, error) {
	raw := b.matcher.Extract(query, entities, metrics)
	b.recorder.RecordExtraction(raw)

	if !raw.Complete() {
		b.logger.Warn("incomplete query", map[string]interface{}{
			"query":            query,
			"missingEntity":    raw.Entity == "",
			"missingParameter": raw.Parameter == "",
		})
		return QueryRecord{}, &IncompleteQueryError{
			MissingEntity:    raw.Entity == "",
			MissingParameter: raw.Parameter == "",
		}
	}

	dates := b.resolver.Resolve(raw.StartDate, raw.EndDate, today)

	b.logger.Debug("query components resolved", map[string]interface{}{
		"entity":            raw.Entity,
		"entityStrategy":    string(raw.EntityStrategy),
		"parameter":         raw.Parameter,
		"parameterStrategy": string(raw.ParameterStrategy),
		"startToken":        raw.StartDate,
		"endToken":          raw.EndDate,
		"startDate":         dates.Start,
		"endDate":           dates.End,
	})

	return QueryRecord{
		Entity:    raw.Entity,
		Parameter: raw.Parameter,
		StartDate: dates.Start,
		EndDate:   dates.End,
	}, nil
}

// IsComparison reports whether query asks to compare against earlier results.
func IsComparison(query string) bool {
	return strings.Contains(strings.ToLower(query), comparisonKeyword)
}

// Combine places record first and, for comparison queries, appends previous
// verbatim and in order.
func Combine(record QueryRecord, query string, previous QueryResult) QueryResult {
	result := make(QueryResult, 0, 1+len(previous))
	result = append(result, record)
	if IsComparison(query) && len(previous) > 0 {
		result = append(result, previous...)
	}
	return result
}

// BuildQueryResult runs the full pipeline against the wall clock with default
// settings.
func BuildQueryResult(query string, entities, metrics Vocabulary, previous QueryResult) (QueryResult, error) {
	return NewBuilder().Build(query, entities, metrics, previous)
}
