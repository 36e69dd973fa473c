package service

import (
	"context"

	"cash-ai/internal/config"

	"github.com/sirupsen/logrus"
)

// NewDrafter returns the Gemini classifier when an API key is configured and
// the keyword rule drafter otherwise.
func NewDrafter(ctx context.Context, cfg *config.Config, logger *logrus.Logger) Drafter {
	if cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not set, using rule drafter")
		return NewRuleDrafter(logger)
	}

	d, err := NewGeminiDrafter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.WithError(err).Warn("Gemini client unavailable, using rule drafter")
		return NewRuleDrafter(logger)
	}
	logger.WithField("model", cfg.GeminiModel).Info("Using Gemini drafter")
	return d
}
