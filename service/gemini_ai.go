package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService generates answers through the Gemini API. Multiple API keys
// can be supplied; on a failed call the service rotates to the next key and
// retries once.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	modelName  string
	client     *genai.Client
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}
	service := &GeminiService{
		apiKeys:   apiKeys,
		modelName: modelName,
	}
	if err := service.initClient(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *GeminiService) initClient() error {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	return s.initClient()
}

func (s *GeminiService) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.generate(ctx, instructions, prompt)
	if err != nil && len(s.apiKeys) > 1 {
		if rotateErr := s.rotateAPIKey(); rotateErr != nil {
			return "", rotateErr
		}
		answer, err = s.generate(ctx, instructions, prompt)
	}
	return answer, err
}

func (s *GeminiService) generate(ctx context.Context, instructions, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instructions)},
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response generated")
	}
	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			answer.WriteString(string(text))
		}
	}
	if answer.Len() == 0 {
		return "", fmt.Errorf("unexpected response content from model %s", s.modelName)
	}
	return answer.String(), nil
}
