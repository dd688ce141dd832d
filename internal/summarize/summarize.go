// Package summarize turns a long transcript into a structured summary by
// chunking it, summarizing each chunk through a chat model, and running a
// second pass over the recombined intermediate summaries.
package summarize

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/narrativelab/narratives/internal/llm"
)

const (
	// DefaultMaxChunkChars bounds the character budget of a single chunk.
	DefaultMaxChunkChars = 1000
	// DefaultChunkTokens caps the output of each per-chunk call.
	DefaultChunkTokens = 300
	// DefaultFinalTokens caps the output of the final structuring pass.
	DefaultFinalTokens = 1000
	// DefaultTemperature keeps summaries close to the source text.
	DefaultTemperature = 0.3

	systemPrompt = "You are a highly knowledgeable assistant."
	chunkPrompt  = "Summarize the following text: %s"
	finalPrompt  = "Summarizes this text to about 500 words focusing on the main theme, " +
		"key points, author's sentiment, and conclusions. Includes: " +
		"1. Intro Overview, highlighting the content's main objective. " +
		"2. Key Points, summarizing main discussions. " +
		"3. Author's Sentiment, outlining the tone and viewpoint. " +
		"4. Conclusions, noting final thoughts and implications. --> %s"
)

// Error reports a failed text-generation call. It aborts the whole
// ProcessText run: a partial summary is never returned or persisted.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarization failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine drives the two-pass summarization against an injected chat client.
type Engine struct {
	Client llm.Client
	Model  string
	// MaxChunkChars overrides DefaultMaxChunkChars when positive.
	MaxChunkChars int
	// ChunkTokens and FinalTokens override the per-call output budgets.
	ChunkTokens int
	FinalTokens int
	// Temperature overrides DefaultTemperature when positive.
	Temperature float32
}

// Chunk splits text on whitespace and greedily packs words into chunks no
// longer than maxChars. A single word longer than the budget is placed alone
// in its own chunk. Joining the chunks with single spaces reconstructs the
// whitespace-tokenized word sequence.
func Chunk(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	words := strings.Fields(text)
	var chunks []string
	var current []string
	length := 0
	for _, w := range words {
		if length+len(w) > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{w}
			length = len(w)
			continue
		}
		current = append(current, w)
		length += len(w) + 1 // account for the joining space
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// ProcessText summarizes each chunk of text, joins the intermediate summaries,
// and issues one final structuring call. Any failure from the chat service
// aborts the run with a *Error.
func (e *Engine) ProcessText(ctx context.Context, text string) (string, error) {
	chunks := Chunk(text, e.MaxChunkChars)

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		s, err := e.complete(ctx, fmt.Sprintf(chunkPrompt, chunk), e.chunkTokens())
		if err != nil {
			return "", &Error{Stage: fmt.Sprintf("chunk %d/%d", i+1, len(chunks)), Err: err}
		}
		summaries = append(summaries, s)
	}

	combined := strings.Join(summaries, " ")
	final, err := e.complete(ctx, fmt.Sprintf(finalPrompt, combined), e.finalTokens())
	if err != nil {
		return "", &Error{Stage: "final pass", Err: err}
	}
	return final, nil
}

func (e *Engine) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: e.temperature(),
		MaxTokens:   maxTokens,
		N:           1,
	}
	resp, err := e.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (e *Engine) chunkTokens() int {
	if e.ChunkTokens > 0 {
		return e.ChunkTokens
	}
	return DefaultChunkTokens
}

func (e *Engine) finalTokens() int {
	if e.FinalTokens > 0 {
		return e.FinalTokens
	}
	return DefaultFinalTokens
}

func (e *Engine) temperature() float32 {
	if e.Temperature > 0 {
		return e.Temperature
	}
	return DefaultTemperature
}
