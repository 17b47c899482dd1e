// internal/provider/stream.go
package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/task"
)

// ChatEndpoint is the OpenAI-compatible chat completions path.
const ChatEndpoint = "/chat/completions"

// streamTerminator ends a server-sent event stream.
const streamTerminator = "[DONE]"

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChatCompletions opens a server-sent-events chat completion. The
// fragment channel is closed on exhaustion; at most one error is delivered
// and then the error channel is closed. Cancelling ctx aborts the stream.
func (c *Client) StreamChatCompletions(ctx context.Context, req task.ChatRequest) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		req.Stream = true
		httpReq, err := c.newRequest(ctx, http.MethodPost, ChatEndpoint, req)
		if err != nil {
			errs <- err
			return
		}
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errs <- apiError(resp)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" {
				continue
			}
			if payload == streamTerminator {
				return
			}

			var chunk chatChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				c.logger.Debug("skipping unparseable stream line", zap.Error(err))
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}

			select {
			case chunks <- chunk.Choices[0].Delta.Content:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			// A cancelled request surfaces as a read error on the body.
			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
			errs <- err
		}
	}()

	return chunks, errs
}
