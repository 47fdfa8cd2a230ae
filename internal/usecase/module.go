package usecase

import (
	"go.uber.org/fx"

	"fitjournal/internal/worker"
)

var Module = fx.Module("usecase",
	fx.Provide(NewOAuthUsecase),
	fx.Provide(NewSyncUsecase),
	fx.Provide(NewMatchUsecase),
	fx.Provide(NewAutoSessionUsecase),
	fx.Provide(NewWebhookUsecase),
	fx.Provide(func(s SyncUsecase) worker.Syncer { return s }),
)
