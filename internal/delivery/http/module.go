package http

import (
	"go.uber.org/fx"

	"fitjournal/internal/delivery/http/handler"
	"fitjournal/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewHealthHandler,
		handler.NewOAuthHandler,
		handler.NewWebhookHandler,
		handler.NewWhoopHandler,
		router.NewRouter,
	),
)
