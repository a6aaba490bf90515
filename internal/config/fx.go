package config

import "go.uber.org/fx"

// Path is the configuration file location handed to the fx graph.
type Path string

func provide(path Path) (Config, error) {
	return Load(string(path))
}

var Module = fx.Module("config",
	fx.Provide(provide),
)
