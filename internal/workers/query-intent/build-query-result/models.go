// internal/workers/query-intent/build-query-result/models.go
package buildqueryresult

import (
	"encoding/json"

	"query-intent-workers/internal/intent"
)

type Input struct {
	Query string `json:"query"`
	// PreviousRecords is the records output of an earlier build. It is kept
	// raw so that malformed history can be dropped instead of failing the job.
	PreviousRecords json.RawMessage `json:"previousRecords,omitempty"`
	// ReferenceDate (YYYY-MM-DD) replaces today when resolving dates.
	ReferenceDate string `json:"referenceDate,omitempty"`
}

type Output struct {
	Records intent.QueryResult `json:"records"`
}
