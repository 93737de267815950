package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
)

const chatHistoryWindow = 5

// WebSocketService serves an interactive question/answer loop over a
// websocket connection, running each question through the query pipeline
// and appending the exchange to the session.
type WebSocketService struct {
	query    *QueryService
	sessions repository.SessionRepo
	upgrader websocket.Upgrader
}

func NewWebSocketService(query *QueryService, sessions repository.SessionRepo) *WebSocketService {
	return &WebSocketService{
		query:    query,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var req types.WebsocketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		switch req.Type {
		case types.TypeWebsocketPing:
			s.write(conn, types.WebSocketResponse{Type: types.TypeWebsocketPong})
		case types.TypeWebsocketQuery:
			s.handleQuery(conn, req.Payload)
		default:
			s.write(conn, types.WebSocketResponse{
				Type:    types.TypeWebsocketError,
				Payload: "unknown message type: " + req.Type,
			})
		}
	}
}

func (s *WebSocketService) handleQuery(conn *websocket.Conn, req types.QueryRequest) {
	if req.Question == "" {
		s.write(conn, types.WebSocketResponse{
			Type:    types.TypeWebsocketError,
			Payload: "question is required",
		})
		return
	}
	s.write(conn, types.WebSocketResponse{
		Type:    types.TypeWebsocketProcessing,
		Payload: "Retrieving documents",
	})

	var history []types.QAPair
	if req.SessionID != "" {
		h, err := s.sessions.RecentHistory(req.SessionID, chatHistoryWindow)
		if err != nil && err != repository.ErrSessionNotFound {
			s.write(conn, types.WebSocketResponse{Type: types.TypeWebsocketError, Payload: err.Error()})
			return
		}
		history = h
	}

	// Deltas are forwarded as they arrive; the final answer frame carries
	// the assembled result with sources.
	result, err := s.query.AnswerStream(context.Background(), req.Question, history, req.K, req.Filter, func(delta string) {
		s.write(conn, types.WebSocketResponse{Type: types.TypeWebsocketDelta, Payload: delta})
	})
	if err != nil {
		s.write(conn, types.WebSocketResponse{Type: types.TypeWebsocketError, Payload: err.Error()})
		return
	}

	if req.SessionID != "" {
		if err := s.sessions.Append(req.SessionID, result.Question, result.Answer, result.Sources); err != nil {
			log.Printf("Warning: failed to append to session %s: %v", req.SessionID, err)
		}
	}
	s.write(conn, types.WebSocketResponse{
		Type:    types.TypeWebsocketAnswer,
		Payload: result,
	})
}

func (s *WebSocketService) write(conn *websocket.Conn, resp types.WebSocketResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Println("WebSocket write error:", err)
	}
}
