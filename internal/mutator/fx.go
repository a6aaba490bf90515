package mutator

import (
	"github.com/TechharaInc/Tanaka/internal/mutator/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mutator.service",
	fx.Provide(service.New),
)
