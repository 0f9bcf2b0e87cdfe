// internal/workers/query-intent/extract-query-components/models.go
package extractquerycomponents

import "query-intent-workers/internal/intent"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	RawMatch intent.RawMatch `json:"rawMatch"`
}
