package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/ragdocs-be/types"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepo stores one JSON file per conversation under its directory.
type SessionRepo interface {
	Create() (*types.Session, error)
	Get(id string) (*types.Session, error)
	Append(id, question, answer string, sources []types.SearchResult) error
	RecentHistory(id string, limit int) ([]types.QAPair, error)
	ListAll() ([]types.SessionSummary, error)
	Delete(id string) error
}

type sessionRepo struct {
	mu  sync.Mutex
	dir string
}

func NewSessionRepo(dir string) (SessionRepo, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &sessionRepo{dir: dir}, nil
}

func (r *sessionRepo) sessionPath(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *sessionRepo) Create() (*types.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := &types.Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Messages:  []types.ChatMessage{},
	}
	if err := r.write(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepo) Get(id string) (*types.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(id)
}

func (r *sessionRepo) Append(id, question, answer string, sources []types.SearchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, err := r.read(id)
	if err != nil {
		return err
	}
	if sources == nil {
		sources = []types.SearchResult{}
	}
	session.Messages = append(session.Messages, types.ChatMessage{
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	})
	return r.write(session)
}

// RecentHistory returns the last limit exchanges as (question, answer)
// pairs, oldest of the window first.
func (r *sessionRepo) RecentHistory(id string, limit int) ([]types.QAPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, err := r.read(id)
	if err != nil {
		return nil, err
	}
	messages := session.Messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	history := make([]types.QAPair, 0, len(messages))
	for _, m := range messages {
		history = append(history, types.QAPair{Question: m.Question, Answer: m.Answer})
	}
	return history, nil
}

func (r *sessionRepo) ListAll() ([]types.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions directory: %w", err)
	}
	summaries := make([]types.SessionSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		session, err := r.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, types.SessionSummary{
			ID:           session.ID,
			CreatedAt:    session.CreatedAt,
			MessageCount: len(session.Messages),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (r *sessionRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := os.Remove(r.sessionPath(id))
	if os.IsNotExist(err) {
		return ErrSessionNotFound
	}
	return err
}

func (r *sessionRepo) read(id string) (*types.Session, error) {
	raw, err := os.ReadFile(r.sessionPath(id))
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	var session types.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &session, nil
}

func (r *sessionRepo) write(session *types.Session) error {
	raw, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}
	tmp := r.sessionPath(session.ID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}
	if err := os.Rename(tmp, r.sessionPath(session.ID)); err != nil {
		return fmt.Errorf("failed to replace session %s: %w", session.ID, err)
	}
	return nil
}
