package whoop

import (
	"go.uber.org/fx"

	"fitjournal/internal/config"
)

var Module = fx.Module("whoop",
	fx.Provide(NewClient),
	fx.Provide(func(cfg *config.Config) *SignatureVerifier {
		return NewSignatureVerifier(cfg.Whoop.WebhookSecret)
	}),
)
