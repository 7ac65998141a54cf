package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"

	"github.com/phrazzld/agent-api/internal/config"
)

const (
	promptPrefix     = "You are an AI assistant. Process this command: "
	offlineResponse  = "Processed command: "
	noCommandMessage = "No command provided"
)

// contentGenerator is the subset of the genai Models service used here.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Interpreter answers free-text commands using a Gemini model.
type Interpreter struct {
	logger     *slog.Logger
	generator  contentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
}

// NewInterpreter creates an Interpreter from cfg. An empty API key yields an
// offline interpreter that makes no network calls.
func NewInterpreter(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Interpreter, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	logger = logger.With("component", "gemini_interpreter")

	if cfg.GeminiAPIKey == "" {
		logger.WarnContext(ctx, "no Gemini API key configured, using offline interpreter")
		return newInterpreter(logger, nil, cfg), nil
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	logger.InfoContext(ctx, "Gemini interpreter initialized", "model", cfg.ModelName)
	return newInterpreter(logger, client.Models, cfg), nil
}

func newInterpreter(logger *slog.Logger, generator contentGenerator, cfg config.LLMConfig) *Interpreter {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delaySeconds := cfg.RetryDelaySeconds
	if delaySeconds < 1 {
		delaySeconds = 2
	}

	return &Interpreter{
		logger:     logger,
		generator:  generator,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(delaySeconds) * time.Second,
	}
}

// Offline reports whether the interpreter runs without the Gemini API.
func (i *Interpreter) Offline() bool {
	return i.generator == nil
}

// ProcessCommand returns the model's answer to text.
func (i *Interpreter) ProcessCommand(ctx context.Context, text string) (string, error) {
	if i.Offline() {
		if strings.TrimSpace(text) == "" {
			return noCommandMessage, nil
		}
		i.logger.DebugContext(ctx, "offline interpreter processed command", "command_length", len(text))
		return offlineResponse + text, nil
	}

	return i.generateWithRetry(ctx, promptPrefix+text)
}

// generateWithRetry calls the API, retrying transient errors with
// exponential backoff and 50% jitter. A response that cannot be used is
// permanent and returned without retrying.
func (i *Interpreter) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	backoff := retry.WithMaxRetries(uint64(i.maxRetries),
		retry.WithJitterPercent(50, retry.NewExponential(i.baseDelay)))

	var (
		text      string
		attempt   int
		lastErr   error
		permanent error
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		i.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attempt,
			"max_attempts", i.maxRetries+1)

		resp, err := i.generator.GenerateContent(ctx, i.model, genai.Text(prompt), nil)
		if err != nil {
			i.logger.ErrorContext(ctx, "Gemini API call failed",
				"attempt", attempt,
				"error", err)
			lastErr = err
			return retry.RetryableError(err)
		}

		text, permanent = extractText(resp)
		return permanent
	})

	switch {
	case permanent != nil:
		i.logger.WarnContext(ctx, "permanent Gemini error, not retrying", "error", permanent)
		return "", permanent
	case err == nil:
		return text, nil
	case lastErr == nil || ctx.Err() != nil:
		return "", fmt.Errorf("%w: %v", ErrTransientFailure, err)
	default:
		return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
			ErrTransientFailure, i.maxRetries, lastErr)
	}
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts", ErrInvalidResponse)
	}
	return b.String(), nil
}
