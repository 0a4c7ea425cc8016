package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baristalabs/coffee/backend/internal/config"
)

// HuggingFaceGateway calls the hosted inference API for the
// code-specialized model.
type HuggingFaceGateway struct {
	cfg    config.HuggingFaceConfig
	client *http.Client
}

// NewHuggingFace creates the coder gateway from explicit configuration.
func NewHuggingFace(cfg config.HuggingFaceConfig) *HuggingFaceGateway {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HuggingFaceGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the answering model.
func (g *HuggingFaceGateway) Name() string {
	return g.cfg.Model
}

type hfParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	ReturnFullText    bool    `json:"return_full_text"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

// Generate flattens the conversation window into a completion prompt and
// calls the inference endpoint once. A 503 from the API means the model
// is still loading and surfaces as ErrModelWarmingUp.
func (g *HuggingFaceGateway) Generate(ctx context.Context, req Request) (string, error) {
	if !g.cfg.Enabled() {
		return "", fmt.Errorf("huggingface: %w", ErrMissingCredential)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = g.cfg.Temperature
	}

	payload := hfRequest{
		Inputs: FlattenPrompt(req.System, req.Turns),
		Parameters: hfParameters{
			MaxNewTokens:      maxTokens,
			Temperature:       temperature,
			TopP:              0.9,
			RepetitionPenalty: 1.1,
			ReturnFullText:    false,
		},
		Options: hfOptions{
			WaitForModel: true,
			UseCache:     false,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &TransportError{Backend: "huggingface", Err: err}
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/" + g.cfg.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Backend: "huggingface", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Backend: "huggingface", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Backend: "huggingface", Err: err}
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", fmt.Errorf("huggingface: %w", ErrModelWarmingUp)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Backend: "huggingface", Status: resp.StatusCode, Body: string(respBody)}
	}

	text, err := decodeGeneratedText(respBody)
	if err != nil {
		return "", &TransportError{Backend: "huggingface", Err: err}
	}

	return strings.TrimSpace(text), nil
}

// decodeGeneratedText accepts the inference API's response shapes: a list
// of generations, a single generation object, or a bare JSON string.
func decodeGeneratedText(body []byte) (string, error) {
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}

	var single struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText, nil
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain, nil
	}

	return "", fmt.Errorf("unrecognized response shape: %s", string(body))
}
