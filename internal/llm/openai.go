package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// searchToolName is the evidence-search tool exposed to the model.
const searchToolName = "evidence_search"

// maxToolRounds bounds the tool-call loop so a chatty model cannot
// spin forever.
const maxToolRounds = 4

// OpenAIProvider implements the Provider interface for OpenAI models.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// Respond generates a response using OpenAI's Chat Completions API.
// When the request carries a search capability it is exposed as a
// function tool and tool calls are executed inline.
func (p *OpenAIProvider) Respond(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1500
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.System},
		{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
	}

	var tools []openai.Tool
	if req.Search != nil {
		tools = []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        searchToolName,
				Description: "Search the web for evidence about a claim, source, or media asset.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"query": {"type": "string", "description": "The search query"}
					},
					"required": ["query"]
				}`),
			},
		}}
	}

	for round := 0; round <= maxToolRounds; round++ {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: req.Temperature,
			Tools:       tools,
		})
		if err != nil {
			return "", classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response from OpenAI")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 || req.Search == nil {
			return msg.Content, nil
		}

		// Execute tool calls and feed results back.
		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    p.runSearchTool(ctx, req.Search, call),
			})
		}
	}

	return "", fmt.Errorf("tool-call loop exceeded %d rounds", maxToolRounds)
}

// runSearchTool executes one evidence_search tool call. Search
// failures are reported back to the model as text rather than
// aborting the reasoning call.
func (p *OpenAIProvider) runSearchTool(ctx context.Context, search SearchFunc, call openai.ToolCall) string {
	if call.Function.Name != searchToolName {
		return fmt.Sprintf("unknown tool: %s", call.Function.Name)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf("invalid tool arguments: %v", err)
	}

	result, err := search(ctx, args.Query)
	if err != nil {
		return fmt.Sprintf("search error: %v", err)
	}
	return result
}

// classifyOpenAIError maps API 429s onto RateLimitError so callers
// can apply the bounded retry policy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Provider: "openai", Message: apiErr.Message}
	}
	return fmt.Errorf("OpenAI API error: %w", err)
}
