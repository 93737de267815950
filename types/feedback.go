package types

import "time"

const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// FeedbackRecord is one user judgment on a past answer. Append-only.
type FeedbackRecord struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}
