package types

const (
	TypeWebsocketPing       = "ping"
	TypeWebsocketPong       = "pong"
	TypeWebsocketQuery      = "query"
	TypeWebsocketProcessing = "processing"
	TypeWebsocketDelta      = "delta"
	TypeWebsocketAnswer     = "answer"
	TypeWebsocketError      = "error"
)

type WebsocketRequest struct {
	Type    string       `json:"type"`
	Payload QueryRequest `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StreamHandler receives incremental generation output.
type StreamHandler func(response string)
