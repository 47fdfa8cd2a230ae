package repository

import (
	"go.uber.org/fx"
)

var Module = fx.Module("repository",
	fx.Provide(NewConnectionRepository),
	fx.Provide(NewWorkoutCacheRepository),
	fx.Provide(NewRecoveryCacheRepository),
	fx.Provide(NewSessionRepository),
	fx.Provide(NewProfileRepository),
	fx.Provide(NewReadinessRepository),
	fx.Provide(NewStateStore),
)
