package db

import "time"

type Config struct {
	URL             string
	Name            string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	Tracing         bool
	Metrics         bool
}
