// internal/intent/models.go
package intent

// MatchStrategy records how a vocabulary value was resolved. It is used for
// logs and metrics only and never leaves the process.
type MatchStrategy string

const (
	StrategyNone        MatchStrategy = "none"
	StrategyExact       MatchStrategy = "exact"
	StrategyApproximate MatchStrategy = "approximate"
)

// RawMatch holds the literal tokens pulled out of a query. Empty strings mean
// the component was not found.
type RawMatch struct {
	Entity    string `json:"entity,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	EntityStrategy    MatchStrategy `json:"-"`
	ParameterStrategy MatchStrategy `json:"-"`
}

// Complete reports whether both an entity and a parameter were found.
func (m RawMatch) Complete() bool {
	return m.Entity != "" && m.Parameter != ""
}

// ResolvedRange is a concrete start/end pair. Both sides are always set;
// start <= end is not guaranteed.
type ResolvedRange struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

// QueryRecord is one fully populated structured request.
type QueryRecord struct {
	Entity    string `json:"entity"`
	Parameter string `json:"parameter"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// QueryResult is the ordered record list produced for one query.
type QueryResult []QueryRecord
