// Package database はMySQLとMongoDBへの接続とスキーマ準備を行います。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-tracker/internal/logging"
	"task-tracker/internal/repositories"
)

// InitMySQL はデータベース接続を初期化し、疎通を確認します。
func InitMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logging.Logger.Info("Successfully connected to MySQL database")
	return db, nil
}

// mysqlSchema はアプリケーションが使うテーブルです。
// tasks.seq は挿入順の並び替え用で、外部には出しません。
// users 削除時のタスク連鎖削除は行いません。
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		seq BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		id CHAR(36) NOT NULL UNIQUE,
		user_id CHAR(36) NOT NULL,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		due_date DATE NULL,
		priority VARCHAR(20) NOT NULL DEFAULT 'Medium',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_tasks_user (user_id, seq)
	)`,
}

// MigrateMySQL はテーブルが無ければ作成します。
func MigrateMySQL(ctx context.Context, db *sql.DB) error {
	for _, stmt := range mysqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// InitMongo はMongoDBに接続し、インデックスを準備したデータベースを返します。
func InitMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("database connection for MongoDB failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("MongoDB connection ping error: %w", err)
	}
	db := client.Database(dbName)
	if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	logging.Logger.WithField("database", dbName).Info("Successfully connected to MongoDB")
	return client, db, nil
}
