package cli

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vytor/uptriv/internal/api"
	"github.com/vytor/uptriv/internal/cache"
	"github.com/vytor/uptriv/internal/config"
	"github.com/vytor/uptriv/internal/content"
	"github.com/vytor/uptriv/internal/db"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/puzzle"
	"github.com/vytor/uptriv/internal/repository/sqlite"
	"github.com/vytor/uptriv/internal/services"
)

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg       config.Config
	db        *db.DB
	redis     *redis.Client
	store     *content.Store
	scheduler *puzzle.Scheduler

	users       services.UserService
	game        services.GameService
	stats       services.StatsService
	leaderboard services.LeaderboardService
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log := logger.FromContext(ctx)

	store, err := loadContent(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("content bank loaded: %d categories, %d resources", len(store.Categories()), len(store.Catalog()))

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	client := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis at %s unreachable, puzzle memo will miss until it recovers: %v", cfg.RedisAddr, err)
		} else {
			log.Info("puzzle memo enabled: redis=%s ttl=%s", cfg.RedisAddr, cfg.PuzzleMemoTTL)
		}
		cancel()
	}

	users := sqlite.NewUserRepository(database.DB)
	friends := sqlite.NewFriendRepository(database.DB)
	rows := sqlite.NewPuzzleCacheRepository(database.DB)
	answers := sqlite.NewAnswerRepository(database.DB)
	completions := sqlite.NewCompletionRepository(database.DB)
	dismissals := sqlite.NewDismissalRepository(database.DB)

	scheduler := puzzle.NewScheduler(rows, store, cache.NewMemo(client, cfg.PuzzleMemoTTL))
	loc := cfg.Location()

	return &app{
		cfg:       cfg,
		db:        database,
		redis:     client,
		store:     store,
		scheduler: scheduler,

		users: services.NewUserService(users, friends),
		game: services.NewGameService(scheduler, users, rows, answers, completions, store, func() string {
			return models.DayOf(time.Now(), loc)
		}),
		stats:       services.NewStatsService(answers, dismissals, store),
		leaderboard: services.NewLeaderboardService(users, friends, answers),
	}, nil
}

func loadContent(cfg config.Config) (*content.Store, error) {
	if cfg.ContentPath != "" {
		return content.LoadFile(cfg.ContentPath)
	}
	return content.Default()
}

func (a *app) server() *api.Server {
	return &api.Server{
		UserService:        a.users,
		GameService:        a.game,
		StatsService:       a.stats,
		LeaderboardService: a.leaderboard,
		Ready:              a.db.Ready,
		CookieSecure:       a.cfg.CookieSecure,
	}
}

func (a *app) Close() {
	log := logger.Default()
	if a.redis != nil {
		log.Debug("closing redis client")
		_ = a.redis.Close()
	}
	log.Debug("closing database connection")
	_ = a.db.Close()
}
