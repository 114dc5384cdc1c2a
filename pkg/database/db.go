package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/salesdash/config"
)

// Options selects and addresses the product store.
type Options struct {
	Driver          string // mongo | memory | sqlite | postgres | mysql | sqlserver
	DSN             string // SQL drivers only
	MongoURL        string
	MongoDatabase   string
	MongoCollection string
}

// OptionsFromConfig reads the store settings from the loaded configuration.
func OptionsFromConfig() Options {
	return Options{
		Driver:          config.DatabaseDriver(),
		DSN:             config.DatabaseDSN(),
		MongoURL:        config.MongoURL(),
		MongoDatabase:   config.MongoDatabase(),
		MongoCollection: config.MongoCollection(),
	}
}

// Conn is an open store connection. Exactly one of Mongo or SQL is set,
// unless the driver is "memory", in which case neither is.
type Conn struct {
	Driver string
	Mongo  *mongo.Client
	SQL    *gorm.DB

	mongoDB         string
	mongoCollection string
}

// Connect opens the store named by opts.Driver and verifies it is reachable.
// Returns an error instead of exiting so the caller can shut down gracefully.
func Connect(ctx context.Context, opts Options) (*Conn, error) {
	conn := &Conn{
		Driver:          opts.Driver,
		mongoDB:         opts.MongoDatabase,
		mongoCollection: opts.MongoCollection,
	}

	switch opts.Driver {
	case "memory":
		return conn, nil
	case "mongo":
		client, err := connectMongo(ctx, opts.MongoURL)
		if err != nil {
			return nil, err
		}
		conn.Mongo = client
		return conn, nil
	}

	db, err := connectSQL(ctx, opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	conn.SQL = db
	return conn, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("database: mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: mongo ping: %w", err)
	}
	return client, nil
}

func connectSQL(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // use pkg/logger, not GORM's own
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is required for SQL drivers")
	}
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: mongo, memory, sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// MongoCollection returns the products collection. Nil for non-mongo drivers.
func (c *Conn) MongoCollection() *mongo.Collection {
	if c.Mongo == nil {
		return nil
	}
	return c.Mongo.Database(c.mongoDB).Collection(c.mongoCollection)
}

// Close releases the underlying client or pool.
func (c *Conn) Close(ctx context.Context) error {
	switch {
	case c.Mongo != nil:
		return c.Mongo.Disconnect(ctx)
	case c.SQL != nil:
		sqlDB, err := c.SQL.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
