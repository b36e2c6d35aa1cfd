package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/amberorigin46/news-ai-auto/internal/config"
)

const (
	DefaultModel   = "gemini-3-flash-preview"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
)

var tracer = otel.Tracer("github.com/amberorigin46/news-ai-auto/internal/ai")

// Schema is the OpenAPI subset Gemini accepts as a response schema.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Request is a single-turn generation request.
type Request struct {
	Prompt string
	// Schema, when set, asks for application/json output of this shape.
	Schema *Schema
	// Grounded enables the Google Search tool.
	Grounded bool
}

// Citation is a web grounding chunk attached to the answer.
type Citation struct {
	Title string
	URI   string
}

type Response struct {
	Text      string
	Citations []Citation
}

// Generator produces structured text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ Generator = (*Gemini)(nil)

// New creates a Gemini client from the given AI config.
func New(cfg *config.AIConfig, apiKey string) (*Gemini, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured (set ai.api_key or %s)", config.EnvAIKey)
	}

	g := &Gemini{
		apiKey:  apiKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.baseURL == "" {
		g.baseURL = DefaultBaseURL
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return g, nil
}

func (g *Gemini) Model() string { return g.model }

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

func buildRequest(req Request) generateRequest {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.Grounded {
		body.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	if req.Schema != nil {
		body.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}
	return body
}

func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "gemini.generateContent", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("gen_ai.system", "gemini"),
		attribute.String("gen_ai.request.model", g.model),
		attribute.Bool("gemini.grounded", req.Grounded),
	)

	resp, err := g.call(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("gemini.citations", len(resp.Citations)))
	return resp, nil
}

func (g *Gemini) call(ctx context.Context, req Request) (*Response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("gemini rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encoding gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", g.baseURL, apiVersion, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, data)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("gemini returned invalid JSON envelope")
	}
	return parseResponse(data), nil
}

// parseResponse reads the first candidate. Missing fields yield zero values.
func parseResponse(data []byte) *Response {
	candidate := gjson.GetBytes(data, "candidates.0")

	var text strings.Builder
	candidate.Get("content.parts.#.text").ForEach(func(_, v gjson.Result) bool {
		text.WriteString(v.String())
		return true
	})

	var citations []Citation
	candidate.Get("groundingMetadata.groundingChunks").ForEach(func(_, chunk gjson.Result) bool {
		web := chunk.Get("web")
		if !web.Exists() {
			return true
		}
		citations = append(citations, Citation{
			Title: web.Get("title").String(),
			URI:   web.Get("uri").String(),
		})
		return true
	})

	return &Response{Text: text.String(), Citations: citations}
}
