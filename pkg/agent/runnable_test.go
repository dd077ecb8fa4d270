package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trainers-ally-be/pkg/workout"
)

func TestStreamEventsParsesSSE(t *testing.T) {
	var gotBody streamEventsRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stream_events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: on_chain_stream\n")
		fmt.Fprint(w, "data: {\"data\":{\"output\":{\"day\":1}}}\n\n")
		fmt.Fprint(w, "data: not json at all\n\n")
		fmt.Fprint(w, "data: {\"data\":{\"output\":{\"done\":true}}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	r := NewRemoteRunnable(server.URL)
	state := workout.DefaultState()
	results, err := r.StreamEvents(context.Background(), &state, Config{ThreadID: "abc"})
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}

	var outputs []map[string]json.RawMessage
	for res := range results {
		if res.Err != nil {
			t.Fatalf("stream error: %v", res.Err)
		}
		outputs = append(outputs, res.Event.Data.Output)
	}

	if len(outputs) != 2 {
		t.Fatalf("events = %d, want 2 (unparseable and [DONE] frames skipped)", len(outputs))
	}
	if string(outputs[0]["day"]) != "1" {
		t.Errorf("first output = %v", outputs[0])
	}
	if string(outputs[1]["done"]) != "true" {
		t.Errorf("second output = %v", outputs[1])
	}

	if gotBody.Version != "v1" {
		t.Errorf("version = %q", gotBody.Version)
	}
	if gotBody.Config.Configurable["thread_id"] != "abc" {
		t.Errorf("thread_id = %v", gotBody.Config.Configurable["thread_id"])
	}
	// Default applied when the caller leaves the limit zero.
	if limit, _ := gotBody.Config.Configurable["recursion_limit"].(float64); int(limit) != DefaultRecursionLimit {
		t.Errorf("recursion_limit = %v", gotBody.Config.Configurable["recursion_limit"])
	}
	if gotBody.Input == nil {
		t.Error("input missing for a fresh invocation")
	}
}

func TestStreamEventsNilInputResumes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		json.NewDecoder(r.Body).Decode(&body)
		if string(body["input"]) != "null" {
			t.Errorf("input = %s, want null for a resume", body["input"])
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	r := NewRemoteRunnable(server.URL)
	results, err := r.StreamEvents(context.Background(), nil, Config{ThreadID: "abc"})
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}
	for range results {
	}
}

func TestStreamEventsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	r := NewRemoteRunnable(server.URL)
	if _, err := r.StreamEvents(context.Background(), nil, Config{ThreadID: "abc"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestStreamEventsContextCancel(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"data\":{\"output\":{\"day\":1}}}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRemoteRunnable(server.URL)
	results, err := r.StreamEvents(ctx, nil, Config{ThreadID: "abc"})
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}

	<-results
	cancel()

	// The channel must close (possibly after a terminal error result) once
	// the context is cancelled.
	for range results {
	}
}
