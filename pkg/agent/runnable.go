// Package agent is the client for the remote LangServe runnable that
// computes workout content. The runnable is opaque: we hand it a session
// state (or nothing, to resume from its own checkpoint) and consume a
// stream of incremental events.
package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trainers-ally-be/pkg/workout"
)

// DefaultRecursionLimit bounds the remote graph's step count per invocation.
const DefaultRecursionLimit = 25

// Config addresses one invocation of the runnable.
type Config struct {
	ThreadID       string
	RecursionLimit int
}

// Event is one element of the runnable's event stream. Output is the state
// delta; events without an output are progress-only.
type Event struct {
	Data struct {
		Output map[string]json.RawMessage `json:"output"`
	} `json:"data"`
}

// Result wraps an event or the stream error that terminated it.
type Result struct {
	Event *Event
	Err   error
}

// Runnable is the remote generation agent contract.
type Runnable interface {
	// StreamEvents invokes the runnable and returns its event stream. A nil
	// input resumes the thread from the agent's durable session state. The
	// returned channel is closed when the stream ends; a Result with Err set
	// is the terminal element of a failed stream.
	StreamEvents(ctx context.Context, input *workout.State, cfg Config) (<-chan Result, error)
}

// RemoteRunnable talks to a LangServe route over HTTP server-sent events.
type RemoteRunnable struct {
	BaseURL string
	Client  *http.Client
}

var _ Runnable = &RemoteRunnable{}

// NewRemoteRunnable creates a client for the runnable mounted at baseURL
// (e.g. "http://localhost:8000/workout").
func NewRemoteRunnable(baseURL string) *RemoteRunnable {
	return &RemoteRunnable{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

type streamEventsRequest struct {
	Input   interface{}        `json:"input"`
	Config  streamEventsConfig `json:"config"`
	Version string             `json:"version"`
}

type streamEventsConfig struct {
	Configurable map[string]interface{} `json:"configurable"`
}

func (r *RemoteRunnable) StreamEvents(ctx context.Context, input *workout.State, cfg Config) (<-chan Result, error) {
	limit := cfg.RecursionLimit
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}

	reqPayload := streamEventsRequest{
		Config: streamEventsConfig{
			Configurable: map[string]interface{}{
				"thread_id":       cfg.ThreadID,
				"recursion_limit": limit,
			},
		},
		Version: "v1",
	}
	if input != nil {
		reqPayload.Input = input
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := r.BaseURL + "/stream_events"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runnable request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("runnable error: status %d", resp.StatusCode)
	}

	results := make(chan Result)
	go func() {
		defer close(results)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || data == "[DONE]" {
				continue
			}
			var event Event
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				// Progress-only frames the server emits in other shapes are
				// not state deltas; skip them.
				continue
			}
			select {
			case results <- Result{Event: &event}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case results <- Result{Err: fmt.Errorf("runnable stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return results, nil
}
