package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the local inference server address.
	DefaultEndpoint = "http://127.0.0.1:8000/generate"
	// DefaultMaxTokens bounds the generated answer when a request sets none.
	DefaultMaxTokens = 1028
	// DefaultTimeout bounds one review round trip.
	DefaultTimeout = 120 * time.Second

	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
	errorBodyLimit    = 512

	errorEncodeRequestFormat    = "encode review request: %w"
	errorBuildRequestFormat     = "build review request: %w"
	errorSendRequestFormat      = "send review request to %s: %w"
	errorUnexpectedStatusFormat = "%w: %s returned %d: %s"
	errorDecodeResponseFormat   = "decode review response: %w"
)

// ErrUnexpectedStatus reports a non-2xx answer from the endpoint.
var ErrUnexpectedStatus = errors.New("unexpected review status")

// Config configures a Client.
type Config struct {
	Endpoint   string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Request is one review: the code to look at and what the user asks about it.
type Request struct {
	Code      string
	Message   string
	Model     string
	MaxTokens int
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	Model     string `json:"model,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Client posts review prompts to an inference endpoint.
type Client struct {
	endpoint   string
	maxTokens  int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a Client with defaults applied to zero fields.
func NewClient(config Config) *Client {
	client := &Client{
		endpoint:   config.Endpoint,
		maxTokens:  config.MaxTokens,
		httpClient: config.HTTPClient,
		logger:     config.Logger,
	}
	if client.endpoint == "" {
		client.endpoint = DefaultEndpoint
	}
	if client.maxTokens <= 0 {
		client.maxTokens = DefaultMaxTokens
	}
	if client.httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client.httpClient = &http.Client{Timeout: timeout}
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}
	return client
}

// Endpoint returns the address reviews are sent to.
func (client *Client) Endpoint() string {
	return client.endpoint
}

// Review sends the prompt built from request and returns the generated text.
func (client *Client) Review(ctx context.Context, request Request) (string, error) {
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = client.maxTokens
	}
	body, err := json.Marshal(generateRequest{
		Prompt:    Prompt(request.Code, request.Message),
		MaxTokens: maxTokens,
		Model:     request.Model,
	})
	if err != nil {
		return "", fmt.Errorf(errorEncodeRequestFormat, err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf(errorBuildRequestFormat, err)
	}
	httpRequest.Header.Set(contentTypeHeader, contentTypeJSON)

	started := time.Now()
	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return "", fmt.Errorf(errorSendRequestFormat, client.endpoint, err)
	}
	defer response.Body.Close()

	client.logger.Debug("review response",
		zap.String("endpoint", client.endpoint),
		zap.Int("status", response.StatusCode),
		zap.Int("prompt_bytes", len(body)),
		zap.Duration("elapsed", time.Since(started)))

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, errorBodyLimit))
		return "", fmt.Errorf(errorUnexpectedStatusFormat, ErrUnexpectedStatus, client.endpoint, response.StatusCode, bytes.TrimSpace(detail))
	}

	var decoded generateResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf(errorDecodeResponseFormat, err)
	}
	return decoded.Text, nil
}
