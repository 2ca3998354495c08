package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/logging"
	"task-tracker/internal/repositories"
	"task-tracker/internal/sessions"
)

// stores は設定で選ばれたリポジトリとセッションストア、その後始末をまとめたものです。
type stores struct {
	users    repositories.UserRepository
	tasks    repositories.TaskRepository
	sessions sessions.Store
	ping     func(ctx context.Context) error
	closers  []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logging.Logger.WithError(err).Warn("Failed to close store")
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}
	var users repositories.UserRepository
	var tasks repositories.TaskRepository

	switch cfg.Store.Driver {
	case "mysql":
		db, err := database.InitMySQL(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)
		if err := database.MigrateMySQL(ctx, db); err != nil {
			st.Close()
			return nil, err
		}
		users = repositories.NewMySQLUserRepository(db)
		tasks = repositories.NewMySQLTaskRepository(db)
		st.ping = db.PingContext
	case "mongo":
		client, db, err := database.InitMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() error { return client.Disconnect(context.Background()) })
		users = repositories.NewMongoUserRepository(db)
		tasks = repositories.NewMongoTaskRepository(db)
		st.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	default:
		logging.Logger.Warn("Using in-memory store; data is lost on restart")
		users = repositories.NewMemoryUserRepository()
		tasks = repositories.NewMemoryTaskRepository()
		st.ping = func(context.Context) error { return nil }
	}

	st.users = repositories.NewBreakerUserRepository(users, repositories.NewStoreBreaker("users"))
	st.tasks = repositories.NewBreakerTaskRepository(tasks, repositories.NewStoreBreaker("tasks"))

	switch cfg.Session.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			st.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		st.closers = append(st.closers, rdb.Close)
		st.sessions = sessions.NewRedisStore(rdb)
		logging.Logger.WithField("addr", cfg.Session.RedisAddr).Info("Using redis session store")
	default:
		st.sessions = sessions.NewMemoryStore()
	}

	return st, nil
}
