// Package ollama provides an HTTP client for interacting with the Ollama API.
// It specifically handles text embedding requests, converting text strings into
// high-dimensional vector representations using Ollama's embedding models.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dora-ryukyu/word2vec3d/embedding"
)

// Client handles HTTP communication with the Ollama embedding API.
// It maintains the connection configuration and reuses an HTTP client
// for efficient request handling.
type Client struct {
	baseURL    string       // The base URL of the Ollama server (e.g., "http://localhost:11434")
	modelName  string       // The name of the embedding model to use (e.g., "nomic-embed-text")
	httpClient *http.Client // Reusable HTTP client for making requests
}

var _ embedding.Embedder = (*Client)(nil)

// embeddingRequest represents the JSON payload sent to the Ollama /api/embed endpoint.
// Input is a list so one request can embed a whole batch.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse represents the JSON response from the Ollama /api/embed endpoint.
type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"` // One vector per input, in order
}

// NewClient creates a new Ollama client configured to connect to the specified
// server and use the given embedding model.
func NewClient(baseURL, modelName string) *Client {
	return &Client{
		baseURL:    baseURL,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Embed converts the provided text into a vector embedding using the Ollama API.
func (ollamaClient *Client) Embed(ctx context.Context, inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, embedding.ErrEmptyInput
	}

	embeddingVectors, err := ollamaClient.EmbedBatch(ctx, []string{inputText})
	if err != nil {
		return nil, err
	}
	return embeddingVectors[0], nil
}

// EmbedBatch embeds every text in a single /api/embed request.
func (ollamaClient *Client) EmbedBatch(ctx context.Context, inputTexts []string) ([][]float32, error) {
	if len(inputTexts) == 0 {
		return nil, embedding.ErrEmptyInput
	}

	// Serialize the request payload to JSON
	jsonRequestBody, marshalError := json.Marshal(embeddingRequest{
		Model: ollamaClient.modelName,
		Input: inputTexts,
	})
	if marshalError != nil {
		return nil, fmt.Errorf("marshal request: %w", marshalError)
	}

	embeddingEndpointURL := ollamaClient.baseURL + "/api/embed"
	httpRequest, requestError := http.NewRequestWithContext(ctx, http.MethodPost, embeddingEndpointURL, bytes.NewReader(jsonRequestBody))
	if requestError != nil {
		return nil, fmt.Errorf("create request: %w", requestError)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, postError := ollamaClient.httpClient.Do(httpRequest)
	if postError != nil {
		return nil, fmt.Errorf("post request: %w", postError)
	}
	defer httpResponse.Body.Close()

	// Verify the API returned a successful status code
	if httpResponse.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", httpResponse.StatusCode, bytes.TrimSpace(responseBody))
	}

	var parsedResponse embeddingResponse
	if decodeError := json.NewDecoder(httpResponse.Body).Decode(&parsedResponse); decodeError != nil {
		return nil, fmt.Errorf("decode response: %w", decodeError)
	}

	if len(parsedResponse.Embeddings) != len(inputTexts) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(parsedResponse.Embeddings), len(inputTexts))
	}

	return parsedResponse.Embeddings, nil
}
