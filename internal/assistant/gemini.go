package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements ModelClient using Google's Gemini API with
// function calling and server-side cached content.
type GeminiClient struct {
	client  *genai.Client
	modelID string
	tools   []*genai.Tool
}

// NewGeminiClient creates a new Gemini model client.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("assistant: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		modelID: modelID,
		tools:   geminiTools(SchedulingTools()),
	}, nil
}

// GenerateResponse runs one conversational turn. When the request carries
// a cache handle the static instructions and tool schema are resolved
// server-side; otherwise both are attached to the model inline.
func (c *GeminiClient) GenerateResponse(ctx context.Context, req Request) (*Response, error) {
	model, err := c.buildModel(ctx, req)
	if err != nil {
		return nil, err
	}

	cs := model.StartChat()
	for _, turn := range req.History {
		content := strings.TrimSpace(turn.Text)
		if content == "" {
			continue
		}
		role := "user"
		if turn.Role == "model" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	prompt := req.UserMessage
	if req.DynamicContext != "" {
		prompt = req.DynamicContext + "\n\n" + req.UserMessage
	}

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("assistant: gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("assistant: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("assistant: gemini returned empty content")
	}

	out := &Response{Model: c.modelID}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			args := Args{}
			for k, v := range p.Args {
				args[k] = v
			}
			out.Calls = append(out.Calls, ActionCall{Name: ActionName(p.Name), Args: args})
		}
	}
	out.Text = strings.TrimSpace(text.String())
	return out, nil
}

// buildModel resolves the cached or inline generation path. A model built
// from cached content must not set its own tools or system instruction;
// both already live in the cache.
func (c *GeminiClient) buildModel(ctx context.Context, req Request) (*genai.GenerativeModel, error) {
	if req.CacheName != "" {
		cc, err := c.client.GetCachedContent(ctx, req.CacheName)
		if err != nil {
			return nil, fmt.Errorf("assistant: cached content lookup failed: %w", err)
		}
		return c.client.GenerativeModelFromCachedContent(cc), nil
	}

	model := c.client.GenerativeModel(c.modelID)
	model.Tools = c.tools
	if strings.TrimSpace(req.StaticInstructions) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.StaticInstructions))
	}
	return model, nil
}

// CreateCache registers the static instructions plus tool schema as
// server-side cached content and returns its handle.
func (c *GeminiClient) CreateCache(ctx context.Context, staticInstructions string, ttl time.Duration) (string, error) {
	cc, err := c.client.CreateCachedContent(ctx, &genai.CachedContent{
		Model:             qualifiedModelName(c.modelID),
		SystemInstruction: genai.NewUserContent(genai.Text(staticInstructions)),
		Tools:             c.tools,
		Expiration:        genai.ExpireTimeOrTTL{TTL: ttl},
	})
	if err != nil {
		return "", fmt.Errorf("assistant: failed to create cached content: %w", err)
	}
	return cc.Name, nil
}

// ValidateCache probes whether a cache handle is still live. Lookup
// failures count as invalid.
func (c *GeminiClient) ValidateCache(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	_, err := c.client.GetCachedContent(ctx, name)
	return err == nil
}

// Close releases resources held by the underlying client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func qualifiedModelName(modelID string) string {
	if strings.HasPrefix(modelID, "models/") {
		return modelID
	}
	return "models/" + modelID
}

// geminiTools translates the neutral declarations into the SDK's schema.
func geminiTools(decls []ToolDecl) []*genai.Tool {
	fns := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		props := make(map[string]*genai.Schema, len(decl.Params))
		var required []string
		for _, p := range decl.Params {
			t := genai.TypeString
			if p.Type == "number" {
				t = genai.TypeNumber
			}
			props[p.Name] = &genai.Schema{Type: t, Description: p.Description}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		fns = append(fns, &genai.FunctionDeclaration{
			Name:        string(decl.Name),
			Description: decl.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: fns}}
}
