// Package extract turns page images of a lunch-menu spread into structured
// menu records by calling an external generative vision model and validating
// the response against a fixed schema.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are an expert at extracting structured nutritional and recipe data from PDF images. " +
	"Extract names, ingredients, preparation steps, and nutritional values. " +
	"Use plain text only (no LaTeX or math symbols) for ingredients and preparation."

const userPrompt = `These images are a single lunch menu (two pages). Extract every menu into this JSON shape and return only JSON:
{"menus":[{"name":string,"nutritionalInfo":{"energy":string,"protein":string,"carbohydrates":string,"iron":string,"vitaminA":string,"zinc":string},"starter":{"name":string,"ingredients":[string],"preparation":[string]}|null,"mainCourse":{"name":string,"ingredients":[string],"preparation":[string]},"drink":{...}|null,"fruit":string|null}]}
Use the complete descriptive dish title for "name" (e.g. "Seco de carne con frejoles"), never a generic label like "Lunch 1". Use plain text for ingredients and steps (e.g. 1/2 cup, not LaTeX).`

// Extractor extracts menu records from one or two page images.
// Implementations raise on schema violation; they never fabricate records.
type Extractor interface {
	Extract(ctx context.Context, images [][]byte) ([]Menu, error)
}

// Client calls an OpenAI-compatible chat completion endpoint with PNG images
// attached as base64 data URLs.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

var _ Extractor = (*Client)(nil)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends the page images to the model and returns the validated menu
// records. A response that cannot be parsed into the schema yields an error
// wrapping ErrSchema.
func (c *Client) Extract(ctx context.Context, images [][]byte) ([]Menu, error) {
	if c.BaseURL == "" || c.Model == "" {
		return nil, fmt.Errorf("extract: base URL and model required")
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("extract: at least one image required")
	}

	parts := []contentPart{{Type: "text", Text: userPrompt}}
	for _, img := range images {
		parts = append(parts, contentPart{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
			},
		})
	}

	payload, err := c.send(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: parts},
	})
	if err != nil {
		return nil, err
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("extract: empty response")
	}

	return parseMenus(payload.Choices[0].Message.Content)
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:          c.Model,
		Messages:       messages,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("extract: decode response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("extract: model error: %s", payload.Error.Message)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 120 * time.Second}
}

// parseMenus strips optional code fences from the model output, unmarshals it
// and validates the result against the schema.
func parseMenus(content string) ([]Menu, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload menusPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := payload.validate(); err != nil {
		return nil, err
	}
	return payload.Menus, nil
}
