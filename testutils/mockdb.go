package testutils

import (
	"database/sql"
	"testing"

	"notes-app/notes/config"
	"notes-app/notes/database"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupMockDB sets up a gorm postgres connection backed by sqlmock.
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		panic(err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		panic(err)
	}

	mockDB := &database.Database{
		DB: gormDB,
	}

	close := func() {
		db.Close()
	}

	return mockDB, mock, close
}

// SetupSQLiteDB opens a migrated in-memory sqlite database that is closed with the test.
func SetupSQLiteDB(t testing.TB) *database.Database {
	t.Helper()

	cfg := config.Config{
		AppEnv:         "test",
		DBDriver:       "sqlite",
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
	}
	db, err := database.Setup(cfg, ":memory:")
	if err != nil {
		t.Fatalf("failed to set up sqlite database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}
