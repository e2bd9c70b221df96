package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dora-ryukyu/word2vec3d/embedding"
)

const inferenceAPIBaseURL = "https://api-inference.huggingface.co"

// EmbeddingsClient handles HTTP communication with the Hugging Face Inference API
// for generating text embeddings.
type EmbeddingsClient struct {
	baseURL    string
	modelID    string
	token      string
	httpClient *http.Client
}

var _ embedding.Embedder = (*EmbeddingsClient)(nil)

// embeddingsRequest represents the JSON payload sent to the HF Inference API.
type embeddingsRequest struct {
	Inputs  []string        `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// NewEmbeddingsClient creates a new Hugging Face embeddings client.
// If token is empty, it will attempt to read from HF_TOKEN environment variable.
func NewEmbeddingsClient(modelID, token string) *EmbeddingsClient {
	if token == "" {
		token = os.Getenv("HF_TOKEN")
	}
	return &EmbeddingsClient{
		baseURL:    inferenceAPIBaseURL,
		modelID:    modelID,
		token:      token,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Embed converts the provided text into a vector embedding using the Hugging Face Inference API.
func (c *EmbeddingsClient) Embed(ctx context.Context, inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, embedding.ErrEmptyInput
	}
	vectors, err := c.EmbedBatch(ctx, []string{inputText})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends all texts in one feature-extraction request. The model
// must pool to one vector per input (sentence-transformers models do).
func (c *EmbeddingsClient) EmbedBatch(ctx context.Context, inputTexts []string) ([][]float32, error) {
	if len(inputTexts) == 0 {
		return nil, embedding.ErrEmptyInput
	}

	jsonBody, err := json.Marshal(embeddingsRequest{
		Inputs:  inputTexts,
		Options: map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", c.baseURL, c.modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, fmt.Errorf("API error %d: %v", resp.StatusCode, errorBody)
	}

	// The response is a nested array with one embedding per input:
	// [[float, float, ...], [float, float, ...]]
	var response [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(response) != len(inputTexts) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(response), len(inputTexts))
	}

	return response, nil
}
