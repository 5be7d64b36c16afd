package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GeminiDocumentReader reads images and PDFs with a multimodal Gemini
// model over the inline-data REST API.
type GeminiDocumentReader struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

var _ DocumentReader = &GeminiDocumentReader{}

func NewGeminiDocumentReader(apiKey, modelName string) *GeminiDocumentReader {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiDocumentReader{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiVisionPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiVisionContent struct {
	Role  string             `json:"role,omitempty"`
	Parts []geminiVisionPart `json:"parts"`
}

type geminiVisionRequest struct {
	Contents []geminiVisionContent `json:"contents"`
}

type geminiVisionResponse struct {
	Candidates []struct {
		Content geminiVisionContent `json:"content"`
	} `json:"candidates"`
}

func (r *GeminiDocumentReader) ReadDocument(ctx context.Context, mimeType string, data []byte, instructions string) (string, error) {
	payload := geminiVisionRequest{
		Contents: []geminiVisionContent{
			{
				Role: "user",
				Parts: []geminiVisionPart{
					{InlineData: &geminiInlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(data),
					}},
					{Text: instructions},
				},
			},
		},
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
		r.ModelName,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", r.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var geminiResp geminiVisionResponse
	if err := json.Unmarshal(bodyBytes, &geminiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var out string
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out, nil
}
