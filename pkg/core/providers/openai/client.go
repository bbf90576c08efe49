package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voxbridge/voxbridge/pkg/core"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// doRequest sends a non-streaming request and returns the raw response body.
func (p *Provider) doRequest(ctx context.Context, req *chatRequest) ([]byte, error) {
	resp, err := p.send(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamError(p.Name(), fmt.Sprintf("read response: %v", err), resp.StatusCode)
	}
	return body, nil
}

// doStreamRequest sends a streaming request and returns the SSE body.
func (p *Provider) doStreamRequest(ctx context.Context, req *chatRequest) (io.ReadCloser, error) {
	resp, err := p.send(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (p *Provider) send(ctx context.Context, req *chatRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.chatCompletionsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewUpstreamError(p.Name(), fmt.Sprintf("http request: %v", err), 0)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, p.parseError(resp)
	}
	return resp, nil
}

func (p *Provider) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return core.NewUpstreamError(p.Name(), apiErr.Error.Message, resp.StatusCode)
	}
	return core.NewUpstreamError(p.Name(), fmt.Sprintf("request failed with status %d", resp.StatusCode), resp.StatusCode)
}

func parseResponse(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", core.NewUpstreamError("openai", "malformed response payload", 0)
	}
	if len(resp.Choices) == 0 {
		return "", core.NewUpstreamError("openai", "response contains no choices", 0)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) chatCompletionsURL() string {
	return strings.TrimRight(p.baseURL, "/") + "/chat/completions"
}
