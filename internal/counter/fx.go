package counter

import (
	"github.com/TechharaInc/Tanaka/internal/counter/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("counter.store",
	fx.Provide(repository.New),
)
