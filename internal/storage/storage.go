package storage

import (
	"errors"
	"os"
	"sync"
	"time"

	"untitledone/internal/config"
	"untitledone/internal/util/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

const uniqueViolationCode = "23505"

var (
	db   *gorm.DB
	once sync.Once
)

func GetDb() *gorm.DB {
	once.Do(func() {
		log := logger.GetLogger()

		conn, err := gorm.Open(postgres.Open(config.GetEnv().DatabaseDsn), &gorm.Config{
			Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
		})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		sqlDb, err := conn.DB()
		if err != nil {
			log.Error("Failed to get database handle", "error", err)
			os.Exit(1)
		}

		sqlDb.SetConnMaxIdleTime(5 * time.Minute)
		sqlDb.SetConnMaxLifetime(30 * time.Minute)
		sqlDb.SetMaxIdleConns(10)
		sqlDb.SetMaxOpenConns(20)

		db = conn
	})

	return db
}

// IsUniqueViolation reports whether err carries a postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	return false
}
