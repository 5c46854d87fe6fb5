package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

// Generator produces the final answer from the query and its reranked
// contexts.
type Generator interface {
	GenerateAnswer(ctx context.Context, question string, contexts []string) (string, error)
}

// GeminiGenerator generates answers with a Gemini model through the genai
// client.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// maxContextWords caps the packed context so the prompt stays inside the
// model's input window.
const maxContextWords = 400

// NewGeminiGenerator creates a generator for the given Gemini model.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{
		client: client,
		model:  model,
	}
}

// GenerateAnswer implements Generator.
func (g *GeminiGenerator) GenerateAnswer(ctx context.Context, question string, contexts []string) (string, error) {
	prompt := BuildAnswerPrompt(question, contexts)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.8)),
		TopP:            genai.Ptr(float32(0.9)),
		MaxOutputTokens: 256,
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		log.Printf("SERVICE: Gemini returned no candidates for question %q", question)
		return "I'm sorry, I couldn't generate a response.", nil
	}

	var answer strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer.WriteString(part.Text)
		}
	}
	return answer.String(), nil
}

// BuildAnswerPrompt packs the reranked contexts and the question into the
// answer prompt. The joined context is truncated to maxContextWords words.
func BuildAnswerPrompt(question string, contexts []string) string {
	contextText := strings.Join(contexts, " ")
	words := strings.Fields(contextText)
	if len(words) > maxContextWords {
		contextText = strings.Join(words[:maxContextWords], " ")
	}

	return fmt.Sprintf(`You are an expert AI assistant.
Use the following context to answer the question clearly and concisely.

Context:
%s

Question:
%s

Answer in 3-5 sentences:`, contextText, question)
}
