package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/fake"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// getLLMClient creates and returns an LLM client based on the configuration
func getLLMClient(config *Config) (llms.Model, error) {
	if config.LLM.APIKey == "" && config.LLM.Provider != "fake" {
		apiKey, err := GetAPIKeyFromKeyring(config.LLM.Provider)
		if err != nil {
			slog.Warn("failed to read API key from keyring", "provider", config.LLM.Provider, "error", err)
		}
		config.LLM.APIKey = apiKey
	}

	switch config.LLM.Provider {
	case "fake":
		return fake.NewFakeLLM([]string{"Done."}), nil
	case "ollama":
		if err := ensureOllamaReachable(config.LLM.BaseURL); err != nil {
			return nil, err
		}
		opts := []ollama.Option{ollama.WithModel(config.LLM.Model)}
		if config.LLM.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.LLM.BaseURL))
		}
		model, err := ollama.New(opts...)
		if err != nil {
			return nil, err
		}
		return model, nil
	case "openai":
		opts := []openai.Option{openai.WithModel(config.LLM.Model)}
		if config.LLM.APIKey != "" {
			opts = append(opts, openai.WithToken(config.LLM.APIKey))
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.LLM.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return model, nil
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithModel(config.LLM.Model)}
		if config.LLM.APIKey != "" {
			opts = append(opts, anthropic.WithToken(config.LLM.APIKey))
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(config.LLM.BaseURL))
		}
		model, err := anthropic.New(opts...)
		if err != nil {
			return nil, err
		}
		return model, nil
	case "googleai":
		if config.LLM.APIKey == "" {
			return nil, fmt.Errorf("missing Google AI API key. Set it in the config file, the keyring or GEMINI_API_KEY")
		}
		model, err := googleai.New(context.Background(),
			googleai.WithDefaultModel(config.LLM.Model),
			googleai.WithAPIKey(config.LLM.APIKey),
		)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLM.Provider)
	}
}

func ensureOllamaReachable(rawBaseURL string) error {
	baseURL := rawBaseURL
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	} else if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid ollama base URL %q: %w", rawBaseURL, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid ollama base URL %q: host is empty", rawBaseURL)
	}

	versionURL := parsed.ResolveReference(&url.URL{Path: "/api/version"})
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(versionURL.String())
	if err != nil {
		return fmt.Errorf("unable to reach ollama at %s: %w", versionURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("ollama at %s returned status %d", versionURL, resp.StatusCode)
	}
	return nil
}

// Conversation is the chat with the model for one run of the program
type Conversation struct {
	ID string

	mu       sync.Mutex
	model    llms.Model
	messages []llms.MessageContent
}

// NewConversation starts a conversation whose system message lists the catalog skills
func NewConversation(model llms.Model, catalog *skilltext.Catalog) *Conversation {
	c := &Conversation{
		ID:    uuid.NewString(),
		model: model,
	}
	if system := skillsSystemPrompt(catalog); system != "" {
		c.messages = append(c.messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	return c
}

// Ask sends a flattened prompt and returns the reply
func (c *Conversation) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model == nil {
		return "", fmt.Errorf("no model configured")
	}

	messages := append(c.messages[:len(c.messages):len(c.messages)], llms.TextParts(llms.ChatMessageTypeHuman, prompt))
	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	reply := resp.Choices[0].Content
	c.messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, reply))
	slog.Debug("model replied", "conversation", c.ID, "messages", len(c.messages))
	return reply, nil
}

// Len returns the number of messages exchanged, including the system message
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func skillsSystemPrompt(catalog *skilltext.Catalog) string {
	actions := catalog.Actions()
	if len(actions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Prompts may start with one of these skills, optionally followed by a recipient:\n")
	for _, skill := range actions {
		fmt.Fprintf(&b, "- %s", skill.Label)
		if skill.Description != "" {
			fmt.Fprintf(&b, ": %s", skill.Description)
		}
		b.WriteString("\n")
	}
	for _, skill := range catalog.Recipients() {
		fmt.Fprintf(&b, "- recipient %s", skill.Label)
		if skill.Description != "" {
			fmt.Fprintf(&b, " (%s)", skill.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
