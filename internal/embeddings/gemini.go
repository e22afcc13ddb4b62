package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/talentmatch/platform/internal/models"
)

var (
	// ErrEmptyInput is returned when an embedding is requested for empty input.
	ErrEmptyInput = errors.New("embeddings: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("embeddings: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("embeddings: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("embeddings: embedding dimension mismatch")
)

const defaultEmbeddingModel = "gemini-embedding-001"

// GeminiClient calls the Gemini embeddings API via the Google Gen AI SDK.
type GeminiClient struct {
	client     *genai.Client
	model      string
	dimensions int
}

// Ensure GeminiClient implements Client interface
var _ Client = (*GeminiClient)(nil)

// GeminiOption configures the GeminiClient.
type GeminiOption func(*GeminiClient)

// WithDimensions sets the requested embedding dimension (must match the vector column).
func WithDimensions(dim int) GeminiOption {
	return func(c *GeminiClient) {
		c.dimensions = dim
	}
}

// WithModel sets the embedding model name (e.g. gemini-embedding-001). Empty uses default.
func WithModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// NewGeminiClient creates a Gemini embeddings client. The default dimension matches
// the profile vector index.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings client: %w", err)
	}

	client := &GeminiClient{
		client:     genaiClient,
		model:      defaultEmbeddingModel,
		dimensions: models.EmbeddingDimensions,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// GetEmbedding returns the embedding vector for the given text using the configured model.
// The returned slice length equals the configured dimensions.
func (c *GeminiClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	out, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return out[0], nil
}

// GetEmbeddings returns one embedding per input text, in input order.
func (c *GeminiClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrInvalidDims
	}

	contents := make([]*genai.Content, 0, len(texts))

	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("%w (index %d)", ErrEmptyInput, i)
		}

		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	model := c.model
	if model == "" {
		model = defaultEmbeddingModel
	}

	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings, want %d", ErrNoEmbeddingInResponse, len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))

	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) != c.dimensions {
			got := 0
			if emb != nil {
				got = len(emb.Values)
			}

			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, got, c.dimensions)
		}

		vec := make([]float32, len(emb.Values))
		copy(vec, emb.Values)
		out[i] = vec
	}

	return out, nil
}
