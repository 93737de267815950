package types

import "time"

// ChatMessage is one question/answer exchange stored in a session.
type ChatMessage struct {
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Sources   []SearchResult `json:"sources"`
	CreatedAt time.Time      `json:"created_at"`
}

// Session is a durable, ordered log of exchanges. Mutated only by appending.
type Session struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Messages  []ChatMessage `json:"messages"`
}

// SessionSummary is the listing shape for sessions.
type SessionSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

// QAPair is a (question, answer) tuple used as short-term chat context.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QueryResult is the answer-with-sources payload returned by the query
// pipeline.
type QueryResult struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources"`
}
