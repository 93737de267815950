package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/ragdocs-be/types"
)

// FeedbackRepo is an append-only log of user judgments on past answers.
// Records are never mutated or deleted.
type FeedbackRepo interface {
	Add(query, answer, feedback string) error
	RecentNegative(limit int) ([]types.FeedbackRecord, error)
}

type feedbackCollection struct {
	Feedbacks []types.FeedbackRecord `json:"feedbacks"`
}

type feedbackRepo struct {
	mu   sync.Mutex
	path string
}

func NewFeedbackRepo(path string) (FeedbackRepo, error) {
	repo := &feedbackRepo{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := repo.write(feedbackCollection{Feedbacks: []types.FeedbackRecord{}}); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *feedbackRepo) Add(query, answer, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return err
	}
	data.Feedbacks = append(data.Feedbacks, types.FeedbackRecord{
		ID:        uuid.New().String(),
		Query:     query,
		Answer:    answer,
		Feedback:  feedback,
		CreatedAt: time.Now().UTC(),
	})
	return r.write(data)
}

// RecentNegative returns up to limit negative-labeled records, most recent
// first.
func (r *feedbackRepo) RecentNegative(limit int) ([]types.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	var negatives []types.FeedbackRecord
	for _, fb := range data.Feedbacks {
		if fb.Feedback == types.FeedbackNegative {
			negatives = append(negatives, fb)
		}
	}
	sort.SliceStable(negatives, func(i, j int) bool {
		return negatives[i].CreatedAt.After(negatives[j].CreatedAt)
	})
	if limit > 0 && len(negatives) > limit {
		negatives = negatives[:limit]
	}
	return negatives, nil
}

func (r *feedbackRepo) read() (feedbackCollection, error) {
	var data feedbackCollection
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return data, fmt.Errorf("failed to read feedback log: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to parse feedback log: %w", err)
	}
	return data, nil
}

func (r *feedbackRepo) write(data feedbackCollection) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feedback log: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write feedback log: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace feedback log: %w", err)
	}
	return nil
}
