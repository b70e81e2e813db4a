package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 256
)

// Client defines the interface for AI text processing.
type Client interface {
	TranslateToCommand(ctx context.Context, history []Message, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	return newClient(apiKey, apiURL)
}

func newClient(apiKey, url string) *anthropicClient {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, url: url}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
	Tools     []tool    `json:"tools,omitempty"`
}

type tool struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Message is one turn of the conversation with a farmhand.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You translate messages from farmhands into herd ledger commands.

Commands:
/weight <tag> <lbs> [yyyy-mm-dd]   record a weigh-in
/treat <tag> <type> [product]      record a treatment; type is illness, deworm, vaccine, hoof or other
/move <tag> <pasture>              move an animal to a pasture
/note <text>                       add a farm journal entry
/due [days]                        list dams due to give birth
/status <tag>                      show one animal
/weather <place>                   weather and farm forecast for a town or county
/help                              list commands

Rules:
- An animal is referred to by its ear tag (e.g. C-12) or its name.
- Weights are in pounds. Convert kilograms by multiplying by 2.2046 and round to a whole number.
- Use the earlier messages only to resolve which animal "she", "him" or "it" refers to.
- If the message maps to exactly one command, answer with that command.
- If it does not, answer with an empty command.
- Your output must be ONLY a JSON object: {"command": "/weight C-12 845"}`

// TranslateToCommand asks the model to rewrite free text as a single slash
// command. An empty string means the text could not be mapped.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, history []Message, input string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages,
		Message{Role: "user", Content: input},
		// Prefill the assistant response to force JSON.
		Message{Role: "assistant", Content: "{"},
	)

	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  messages,
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	return parseCommand("{" + respBody.Content[0].Text)
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseCommand(text string) (string, error) {
	text = stripFences(text)

	var out struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal ai response: %w", err)
	}

	command := strings.TrimSpace(out.Command)
	if command != "" && !strings.HasPrefix(command, "/") {
		command = "/" + command
	}
	return command, nil
}
