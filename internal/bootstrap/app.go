package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"message-api/internal/config"
	"message-api/internal/logging"
	mysqlClient "message-api/internal/platform/mysql"
	rabbitmqClient "message-api/internal/platform/rabbitmq"
	redisClient "message-api/internal/platform/redis"
	sqliteClient "message-api/internal/platform/sqlite"
	"message-api/internal/repository"
	"message-api/internal/worker"
)

// App holds the process-wide resources. Redis and MQConn are nil when the
// matching feature is disabled in config.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.EventAuditWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logging.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	db, err := openDatabase(ctx, a.Config, a.Logger)
	if err != nil {
		return err
	}
	a.DB = db
	if err := repository.Migrate(db); err != nil {
		return err
	}
	a.Logger.Info("database ready", zap.String("driver", a.Config.Database.Driver))

	if a.Config.CacheEnabled() {
		redisCli, err := redisClient.New(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
		if err != nil {
			return err
		}
		a.Redis = redisCli
		a.Logger.Info("list cache enabled", zap.String("addr", a.Config.Redis.Addr))
	}

	if a.Config.EventsEnabled() {
		mqConn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.MQConn = mqConn

		eventRepo := repository.NewMessageEventRepository(db)
		eventWorker := worker.NewEventAuditWorker(mqConn, eventRepo, a.Config.RabbitMQ.EventQueue, a.Logger)
		if err := eventWorker.Start(ctx); err != nil {
			return fmt.Errorf("start event worker failed: %w", err)
		}
		a.EventWorker = eventWorker
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case "mysql":
		return mysqlClient.New(ctx, cfg.MySQLDSN(), logger)
	default:
		return sqliteClient.New(ctx, cfg.SQLite.Path, logger)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
