package domain

// JobKind tags the two job variants the Job Worker understands (§4.3).
type JobKind string

const (
	JobGenerateTitle    JobKind = "generate_title"
	JobGenerateResponse JobKind = "generate_response"
)

// Job is the tagged union {GenerateTitle, GenerateResponse} dispatched
// through the Job Worker's typed queue.
type Job struct {
	Kind JobKind

	ChatID string
	UserID string

	// GenerateTitle
	FirstBody string

	// GenerateResponse
	History []Message
}
