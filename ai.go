package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const analysisAttemptTimeout = 25 * time.Second

// Analysis is the structured output requested from the model. One shape serves
// both ingestion paths; fields a path does not need stay at their zero value.
type Analysis struct {
	CleanlinessScore    float64 `json:"cleanlinessScore" jsonschema_description:"Cleanliness of the water, 0.0 to 100.0"`
	StatusLabel         string  `json:"statusLabel" jsonschema_description:"One of Safe, Warning, Dangerous"`
	Analysis            string  `json:"analysis" jsonschema_description:"Narrative of what is visible in the sample"`
	EstimatedPH         float64 `json:"estimated_ph" jsonschema_description:"Estimated pH 0-14 based on visual appearance"`
	EstimatedTurbidity  float64 `json:"estimated_turbidity" jsonschema_description:"Estimated turbidity in NTU based on visual appearance"`
	ShutdownRecommended bool    `json:"shutdown_recommended" jsonschema_description:"Whether supply to the affected segment should be cut"`
	ShutdownReason      string  `json:"shutdown_reason" jsonschema_description:"Reason for the shutdown recommendation, empty otherwise"`
	Recommendations     string  `json:"recommendations" jsonschema_description:"Advice for the submitter"`
}

// degradedAnalysis is the fixed payload returned after every model candidate
// has been exhausted. Downstream save logic always has a well-formed object.
func degradedAnalysis() *Analysis {
	return &Analysis{
		CleanlinessScore:   0,
		StatusLabel:        "AI Busy / Quota Exceeded",
		Analysis:           "The AI service is currently experiencing high traffic. Please try again later.",
		EstimatedPH:        7.0,
		EstimatedTurbidity: 5.0,
	}
}

// aiFailure tags why a model candidate was skipped, so the fallback loop's
// continue decision is a category check rather than error-text matching.
type aiFailure int

const (
	aiFailureQuota aiFailure = iota
	aiFailureModelNotFound
	aiFailureOther
)

func (f aiFailure) String() string {
	switch f {
	case aiFailureQuota:
		return "quota exhausted"
	case aiFailureModelNotFound:
		return "model not found"
	}
	return "transient error"
}

func classifyAIError(err error) aiFailure {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429:
			return aiFailureQuota
		case 404:
			return aiFailureModelNotFound
		}
	}
	return aiFailureOther
}

// chatCompleter is the slice of the OpenAI client the analyzer needs; tests
// substitute a fake.
type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Analyzer walks an ordered list of model candidates until one returns a
// structurally valid JSON analysis. Any per-candidate failure is non-fatal:
// one bad model must not abort the whole request.
type Analyzer struct {
	chat           chatCompleter
	models         []string
	schema         any
	attemptTimeout time.Duration
}

// NewAnalyzer builds the analyzer. An empty API key yields a degraded analyzer
// whose every call returns the fixed fallback payload, so submissions are never
// blocked by a missing credential.
func NewAnalyzer(apiKey string, modelCandidates []string) *Analyzer {
	a := &Analyzer{
		models:         modelCandidates,
		schema:         generateSchema[Analysis](),
		attemptTimeout: analysisAttemptTimeout,
	}
	if apiKey == "" {
		log.Println("WARNING: OPENAI_API_KEY not set, analysis will run degraded")
		return a
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	a.chat = &client.Chat.Completions
	return a
}

// Analyze never returns an error: exhausting every candidate produces the
// degraded payload instead. refImage may be nil.
func (a *Analyzer) Analyze(ctx context.Context, prompt string, refImage, sampleImage []byte) *Analysis {
	if a.chat == nil {
		return degradedAnalysis()
	}

	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(prompt)}
	if refImage != nil {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: jpegDataURL(refImage)}))
	}
	parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: jpegDataURL(sampleImage)}))

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "water_analysis",
		Description: openai.String("Structured water quality analysis of the sample image"),
		Schema:      a.schema,
		Strict:      openai.Bool(true),
	}
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
	}

	for _, model := range a.models {
		params.Model = openai.ChatModel(model)

		attemptCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
		chat, err := a.chat.New(attemptCtx, params)
		cancel()
		if err != nil {
			log.Printf("analysis with %s failed (%s), trying next candidate: %v", model, classifyAIError(err), err)
			continue
		}
		if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
			log.Printf("analysis with %s returned empty content, trying next candidate", model)
			continue
		}

		var out Analysis
		if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &out); err != nil {
			log.Printf("analysis with %s returned invalid JSON, trying next candidate: %v", model, err)
			continue
		}
		out.normalizeScore()
		return &out
	}

	log.Println("all analysis model candidates failed or quota exhausted")
	return degradedAnalysis()
}

// normalizeScore rescales a fractional cleanliness score in (0, 1] to a 0-100
// percentage; values above 1 pass through unchanged.
func (an *Analysis) normalizeScore() {
	if an.CleanlinessScore > 0 && an.CleanlinessScore <= 1.0 {
		an.CleanlinessScore *= 100
	}
}

func jpegDataURL(b []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(b)
}

// generateSchema reflects a strict JSON schema for the structured output request.
func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
