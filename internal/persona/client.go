// Package persona turns a bounded slice of conversation history into one
// generated reply in the voice of the site's persona, optionally with one
// generated image. This file holds the upstream API client: a thin
// net/http wrapper over the OpenAI chat-completions and image-generation
// endpoints.
package persona

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Turn is one entry of the conversation window sent upstream.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the upstream model API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient builds a Client with a bounded transport timeout.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type chatCompletionReq struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type chatCompletionResp struct {
	Choices []struct {
		Message Turn `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ChatCompletion performs one non-streaming completion and returns the
// generated text. An empty string is a valid result; the caller decides
// on a fallback.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []Turn, temperature float64, maxTokens int) (string, error) {
	if c.HTTP == nil {
		return "", errors.New("persona: http client is nil")
	}
	body, err := json.Marshal(chatCompletionReq{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	var out chatCompletionResp
	if err := c.post(ctx, "/chat/completions", body, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("upstream: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

type imageGenReq struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type imageGenResp struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateImage synthesizes one image and returns its hosted URL.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(imageGenReq{
		Model:   model,
		Prompt:  prompt,
		N:       1,
		Size:    "1024x1024",
		Quality: "standard",
	})
	if err != nil {
		return "", err
	}

	var out imageGenResp
	if err := c.post(ctx, "/images/generations", body, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("upstream: %s", out.Error.Message)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return "", errors.New("upstream returned no image")
	}
	return out.Data[0].URL, nil
}

// post sends an authenticated JSON request and decodes the response into out.
// Non-2xx statuses are returned as errors with a truncated body excerpt.
func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt := raw
		if len(excerpt) > 512 {
			excerpt = excerpt[:512]
		}
		return fmt.Errorf("upstream status %d: %s", resp.StatusCode, excerpt)
	}
	return json.Unmarshal(raw, out)
}
