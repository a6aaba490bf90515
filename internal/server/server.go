package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/TechharaInc/Tanaka/internal/config"
	counterdomain "github.com/TechharaInc/Tanaka/internal/counter/domain"
	"github.com/TechharaInc/Tanaka/internal/observability"
	obstracing "github.com/TechharaInc/Tanaka/internal/observability/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module serves the operational HTTP surface when http.addr is set.
var Module = fx.Module("http.server",
	fx.Provide(providePinger),
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(run),
)

const maxRankEntries = 100

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Ranker reads a guild scoreboard.
type Ranker interface {
	Top(ctx context.Context, guildID string, k int) ([]counterdomain.Score, error)
}

type Server struct {
	ranker   Ranker
	checks   map[string]Pinger
	gatherer prometheus.Gatherer
	log      *zap.Logger
}

type Params struct {
	fx.In

	Ranker counterdomain.Store
	Checks map[string]Pinger
	Log    *zap.Logger
}

func NewServer(p Params) *Server {
	return &Server{
		ranker:   p.Ranker,
		checks:   p.Checks,
		gatherer: prometheus.DefaultGatherer,
		log:      p.Log.Named("http"),
	}
}

func providePinger(db *gorm.DB, rdb *redis.Client) map[string]Pinger {
	return map[string]Pinger{
		"sql": PingerFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	}
}

func NewEngine(obsCfg observability.Config, s *Server) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", s.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	r.GET("/guilds/:guild/rank", s.Rank)
}

func (s *Server) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.log.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}
	c.JSON(status, gin.H{"checks": checks})
}

type rankEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

func (s *Server) Rank(c *gin.Context) {
	guildID := c.Param("guild")

	k := counterdomain.DefaultTop
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRankEntries {
			AbortWithError(c, newValidationError("k", "out_of_range", "k must be between 1 and 100"))
			return
		}
		k = n
	}

	scores, err := s.ranker.Top(c.Request.Context(), guildID, k)
	if err != nil {
		if errors.Is(err, counterdomain.ErrInvalidKey) {
			AbortWithError(c, newValidationError("guild", "required", "guild is required"))
			return
		}
		AbortWithError(c, errors.Join(ErrServiceUnavailable, err))
		return
	}

	entries := make([]rankEntry, 0, len(scores))
	for i, sc := range scores {
		entries = append(entries, rankEntry{Rank: i + 1, Name: sc.Name, Score: sc.Score})
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": guildID, "data": entries})
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	if cfg.HTTP.Addr == "" {
		log.Info("http surface disabled")
		return
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http surface listening", zap.String("addr", cfg.HTTP.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
