package domain

// ServiceState is the lifecycle state of the retrieval service.
//
//	Uninitialized -> Loading -> Ready | Degraded
//
// Ready and Degraded are terminal for the process lifetime.
type ServiceState int32

// Retrieval service states.
const (
	StateUninitialized ServiceState = iota
	StateLoading
	StateReady
	StateDegraded
)

// String returns the string representation.
func (s ServiceState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return unknownDescription
	}
}

// QueryStatus classifies a QueryOutcome.
type QueryStatus string

// Query statuses.
const (
	// OutcomeOK means at least one chunk matched.
	OutcomeOK QueryStatus = "ok"

	// OutcomeNoResults means the query ran but nothing matched.
	// This is a normal outcome, not an error.
	OutcomeNoResults QueryStatus = "no_results"

	// OutcomeUnavailable means the service is degraded (no index loaded).
	OutcomeUnavailable QueryStatus = "unavailable"

	// OutcomeError means the query failed, typically at the embedding provider.
	OutcomeError QueryStatus = "error"
)

// ScoredChunk is a chunk paired with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// QueryOutcome is the typed result of a retrieval query.
// Hits are ordered by descending score and only set when Status is OutcomeOK.
type QueryOutcome struct {
	Status QueryStatus
	Hits   []ScoredChunk
	Err    error
}

// OK reports whether the outcome carries hits.
func (o QueryOutcome) OK() bool {
	return o.Status == OutcomeOK
}

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// K is the maximum number of chunks to return. Zero means the configured default.
	K int
}
