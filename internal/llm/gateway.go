// Package llm - gateway.go turns one prompt into one typed result.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/jonathan/interview-agent/internal/schemas"
)

// Shape is the form of output a task expects from the model.
type Shape string

const (
	ShapeText   Shape = "text"
	ShapeObject Shape = "object"
	ShapeList   Shape = "list"
)

// Task describes one upstream request.
type Task struct {
	// Name identifies the task in logs and errors (e.g. "generate-questions").
	Name   string
	Prompt string
	Shape  Shape
	Tier   ModelTier
	// Schema is an optional JSON Schema the parsed value must satisfy.
	Schema string
}

// ResultKind tags a gateway Result.
type ResultKind int

const (
	// ResultOK means the upstream answered in the expected shape.
	ResultOK ResultKind = iota
	// ResultFallback means the upstream answered but the text could not be
	// parsed into the expected shape. Raw holds what it said.
	ResultFallback
	// ResultError means no usable answer was produced.
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultFallback:
		return "fallback"
	default:
		return "error"
	}
}

// Result is the outcome of Gateway.Run. Exactly one of Value (object/list
// shapes), Text (text shape) or Raw (fallback) is meaningful for a given Kind.
type Result struct {
	Kind  ResultKind
	Value json.RawMessage
	Text  string
	Raw   string
	Err   error
}

// Decode unmarshals an OK object or list result into v.
func (r Result) Decode(v any) error {
	if r.Kind != ResultOK {
		return fmt.Errorf("cannot decode %s result", r.Kind)
	}
	if len(r.Value) == 0 {
		return fmt.Errorf("result has no value")
	}
	return json.Unmarshal(r.Value, v)
}

// ErrorKind classifies gateway failures.
type ErrorKind string

const (
	ErrUpstreamUnavailable ErrorKind = "upstream_unavailable"
	ErrMalformedResponse   ErrorKind = "malformed_response"
	ErrTimeout             ErrorKind = "timeout"
)

// GatewayError represents a failed or unusable upstream call.
type GatewayError struct {
	Task    string
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Task, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Task, e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// IsGatewayError reports whether err is a GatewayError of the given kind.
func IsGatewayError(err error, kind ErrorKind) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Kind == kind
}

// Gateway wraps a Client with deadline handling, output normalization and
// error classification. It keeps no state between calls and never retries.
type Gateway struct {
	client  Client
	timeout time.Duration
}

// NewGateway creates a gateway over client. A zero timeout relies on the
// caller's context alone.
func NewGateway(client Client, timeout time.Duration) *Gateway {
	return &Gateway{client: client, timeout: timeout}
}

// Run executes the task and classifies the outcome.
func (g *Gateway) Run(ctx context.Context, task Task) Result {
	if g == nil || g.client == nil {
		return errorResult(task, ErrUpstreamUnavailable, "no LLM client configured", nil)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var (
		text string
		err  error
	)
	if task.Shape == ShapeText || task.Shape == "" {
		text, err = g.client.GenerateContent(ctx, task.Prompt, task.Tier)
	} else {
		text, err = g.client.GenerateJSON(ctx, task.Prompt, task.Tier)
	}
	if err != nil {
		kind := classify(ctx, err)
		log.Printf("[llm] %s failed after %s: %s: %v", task.Name, time.Since(start).Round(time.Millisecond), kind, err)
		return errorResult(task, kind, "upstream call failed", err)
	}

	res := normalize(task, text)
	if res.Kind != ResultOK {
		log.Printf("[llm] %s returned unusable output: %v", task.Name, res.Err)
	}
	return res
}

// Transcribe converts recorded audio to text using the client's transcription capability.
func (g *Gateway) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	const name = "transcribe"
	t, ok := g.client.(Transcriber)
	if g.client == nil || !ok {
		return "", &GatewayError{Task: name, Kind: ErrUpstreamUnavailable, Message: "provider does not support transcription"}
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	text, err := t.Transcribe(ctx, filename, audio)
	if err != nil {
		kind := classify(ctx, err)
		log.Printf("[llm] %s failed: %s: %v", name, kind, err)
		return "", &GatewayError{Task: name, Kind: kind, Message: "upstream call failed", Cause: err}
	}
	return text, nil
}

// Speak synthesizes text to audio using the client's speech capability.
func (g *Gateway) Speak(ctx context.Context, text string) ([]byte, error) {
	const name = "speak"
	s, ok := g.client.(Speaker)
	if g.client == nil || !ok {
		return nil, &GatewayError{Task: name, Kind: ErrUpstreamUnavailable, Message: "provider does not support speech synthesis"}
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	audio, err := s.Speak(ctx, text)
	if err != nil {
		kind := classify(ctx, err)
		log.Printf("[llm] %s failed: %s: %v", name, kind, err)
		return nil, &GatewayError{Task: name, Kind: kind, Message: "upstream call failed", Cause: err}
	}
	return audio, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

func classify(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}

func errorResult(task Task, kind ErrorKind, msg string, cause error) Result {
	return Result{
		Kind: ResultError,
		Err:  &GatewayError{Task: task.Name, Kind: kind, Message: msg, Cause: cause},
	}
}

func fallbackResult(task Task, raw, msg string, cause error) Result {
	return Result{
		Kind: ResultFallback,
		Raw:  raw,
		Err:  &GatewayError{Task: task.Name, Kind: ErrMalformedResponse, Message: msg, Cause: cause},
	}
}

// normalize parses upstream text into the task's expected shape.
func normalize(task Task, text string) Result {
	raw := strings.TrimSpace(text)

	if task.Shape == ShapeText || task.Shape == "" {
		if raw == "" {
			return fallbackResult(task, raw, "empty response", nil)
		}
		return Result{Kind: ResultOK, Text: raw}
	}

	cleaned := CleanJSONBlock(raw)
	if !json.Valid([]byte(cleaned)) {
		return fallbackResult(task, raw, "response is not valid JSON", nil)
	}

	value := []byte(cleaned)
	switch task.Shape {
	case ShapeObject:
		if !startsWith(value, '{') {
			return fallbackResult(task, raw, "expected a JSON object", nil)
		}
	case ShapeList:
		if startsWith(value, '{') {
			// JSON-mode providers wrap lists in a single-key object.
			unwrapped, ok := unwrapList(value)
			if !ok {
				return fallbackResult(task, raw, "expected a JSON array", nil)
			}
			value = unwrapped
		}
		if !startsWith(value, '[') {
			return fallbackResult(task, raw, "expected a JSON array", nil)
		}
	}

	if task.Schema != "" {
		if err := schemas.ValidateJSONString(task.Schema, string(value)); err != nil {
			return fallbackResult(task, raw, "response does not match schema", err)
		}
	}

	return Result{Kind: ResultOK, Value: json.RawMessage(value)}
}

func startsWith(b []byte, c byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == c
}

// unwrapList returns the only array-valued field of an object.
func unwrapList(obj []byte) ([]byte, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return nil, false
	}
	var found []byte
	for _, v := range fields {
		if startsWith(v, '[') {
			if found != nil {
				return nil, false
			}
			found = v
		}
	}
	return found, found != nil
}
