package services

import (
	"context"
	"fmt"
	"time"

	"taskpilot/internal/config"
	"taskpilot/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

// LLMRunner executes language-heavy tasks through the OpenAI chat API.
// It handles communication and learning category tasks; everything else is
// delegated to the fallback runner.
type LLMRunner struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	fallback    TaskRunner
}

// NewLLMRunner creates an OpenAI-backed runner. fallback handles categories
// the LLM is not suited for.
func NewLLMRunner(cfg config.OpenAIConfig, fallback TaskRunner) *LLMRunner {
	return &LLMRunner{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		fallback:    fallback,
	}
}

// handlesCategory reports whether the LLM runs this category itself
func (r *LLMRunner) handlesCategory(category models.TaskCategory) bool {
	return category == models.CategoryCommunication || category == models.CategoryLearning
}

// Run executes the task via chat completion, or via the fallback runner for
// categories outside the LLM's remit.
func (r *LLMRunner) Run(ctx context.Context, task *models.Task, model *models.AIModelMetadata) (*RunResult, error) {
	if !r.handlesCategory(task.Category) {
		return r.fallback.Run(ctx, task, model)
	}

	prompt := fmt.Sprintf("You are an on-device task assistant. Complete the following %s task and reply with the result only.\n\nTask: %s\n\n%s",
		task.Category, task.Name, task.Description)

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, models.WrapAgentError(models.ErrTaskExecutionFailed,
			fmt.Sprintf("chat completion failed for task %s", task.ID), err)
	}
	if len(resp.Choices) == 0 {
		return nil, models.NewAgentError(models.ErrTaskExecutionFailed,
			fmt.Sprintf("chat completion returned no choices for task %s", task.ID))
	}

	return &RunResult{
		Output:      resp.Choices[0].Message.Content,
		InferenceMs: float64(time.Since(start).Milliseconds()),
	}, nil
}
