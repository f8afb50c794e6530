package engine

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go-kit/llm"
)

// CallLLMTuned sends a prompt with explicit temperature and max_tokens.
// Returns the raw completion text — repair/parsing is the caller's concern.
// Raw-output length is the main truncation signal, so it is always logged.
func CallLLMTuned(ctx context.Context, model, prompt string, temperature float64, maxTokens int) (string, error) {
	IncrLLMCall()

	var resp string
	err := TrackOperation(ctx, "llm:"+model, func(ctx context.Context) error {
		var err error
		resp, err = cfg.LLMClient.Complete(ctx, model, prompt,
			llm.WithChatTemperature(temperature),
			llm.WithChatMaxTokens(maxTokens),
		)
		return err
	})
	if err != nil {
		IncrLLMError()
		return "", err
	}

	slog.Debug("llm completion",
		slog.String("model", model),
		slog.Int("raw_length", len(resp)),
		slog.String("head", Truncate(resp, 120)))
	return resp, nil
}
