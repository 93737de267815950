package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/ragdocs-be/database"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
)

// systemInstructions pins the generator to the retrieved context.
const systemInstructions = `You are a helpful assistant that answers questions based on the provided context.
- Only use information from the context to answer
- If the answer is not in the context, say "I couldn't find this information in the documents"
- Be concise and direct`

const (
	maxSourceContentLen  = 500
	maxFeedbackAnswerLen = 150
	negativeFeedbackN    = 3
)

// QueryService composes retrieval, feedback-aware prompt construction and
// generation into one answer-with-sources result. It performs no mutation;
// appending the exchange to a session is the caller's job.
type QueryService struct {
	index    database.VectorDatabase
	feedback repository.FeedbackRepo
	ai       AIService
}

func NewQueryService(index database.VectorDatabase, feedback repository.FeedbackRepo, ai AIService) *QueryService {
	return &QueryService{
		index:    index,
		feedback: feedback,
		ai:       ai,
	}
}

// Answer retrieves the top-k chunks for the question and generates an
// answer from them. chatHistory is accepted for future conditioning; the
// baseline prompt uses only the current question plus retrieved context.
// Generation errors propagate.
func (s *QueryService) Answer(ctx context.Context, question string, chatHistory []types.QAPair, k int, filter types.MetadataFilter) (*types.QueryResult, error) {
	_ = chatHistory

	log.Printf("Query: %s", question)
	results, err := s.index.Search(ctx, question, k, filter)
	if err != nil {
		return nil, err
	}
	log.Printf("Retrieved %d documents", len(results))

	instructions, prompt := s.BuildPrompt(question, results)
	answer, err := s.ai.Generate(ctx, instructions, prompt)
	if err != nil {
		return nil, err
	}

	return &types.QueryResult{
		Question: question,
		Answer:   answer,
		Sources:  formatSources(results),
	}, nil
}

// AnswerStream behaves like Answer but delivers the answer incrementally
// through handler when the backend supports streaming. Backends without
// streaming fall back to a single Generate call; the returned result is the
// same either way.
func (s *QueryService) AnswerStream(ctx context.Context, question string, chatHistory []types.QAPair, k int, filter types.MetadataFilter, handler types.StreamHandler) (*types.QueryResult, error) {
	_ = chatHistory

	log.Printf("Query (stream): %s", question)
	results, err := s.index.Search(ctx, question, k, filter)
	if err != nil {
		return nil, err
	}

	instructions, prompt := s.BuildPrompt(question, results)
	var answer string
	if streamer, ok := s.ai.(StreamingAIService); ok && handler != nil {
		answer, err = streamer.GenerateStream(ctx, instructions, prompt, handler)
	} else {
		answer, err = s.ai.Generate(ctx, instructions, prompt)
	}
	if err != nil {
		return nil, err
	}

	return &types.QueryResult{
		Question: question,
		Answer:   answer,
		Sources:  formatSources(results),
	}, nil
}

// BuildPrompt returns the generator instructions (base rules plus any
// negative-feedback advisory) and the user prompt with the numbered context
// block.
func (s *QueryService) BuildPrompt(question string, results []types.SearchResult) (string, string) {
	var ctxLines []string
	for i, r := range results {
		ctxLines = append(ctxLines, fmt.Sprintf("[%d] %s", i+1, r.Content))
	}

	instructions := systemInstructions
	if advisory := s.negativeFeedbackAdvisory(); advisory != "" {
		instructions += "\n\nLearning from user feedback:\n" + advisory
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(ctxLines, "\n\n"), question)
	return instructions, prompt
}

// negativeFeedbackAdvisory builds a short "avoid answers like these" block
// from the most recent negative feedback. Feedback never filters or
// re-ranks retrieval; it only steers the generator.
func (s *QueryService) negativeFeedbackAdvisory() string {
	negatives, err := s.feedback.RecentNegative(negativeFeedbackN)
	if err != nil {
		log.Printf("Warning: failed to load feedback: %v", err)
		return ""
	}
	if len(negatives) == 0 {
		return ""
	}
	lines := []string{"Avoid these types of answers that users found unhelpful:"}
	for _, fb := range negatives {
		lines = append(lines, "Q: "+fb.Query)
		lines = append(lines, "Bad A: "+truncate(fb.Answer, maxFeedbackAnswerLen)+"...")
	}
	return strings.Join(lines, "\n")
}

func formatSources(results []types.SearchResult) []types.SearchResult {
	sources := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		r.Content = truncate(r.Content, maxSourceContentLen)
		sources = append(sources, r)
	}
	return sources
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
