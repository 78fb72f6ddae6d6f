package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	env_utils "untitledone/internal/util/env"
	"untitledone/internal/util/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

type EnvVariables struct {
	IsTesting       bool
	DatabaseDsn     string            `env:"DATABASE_DSN"    required:"true"`
	EnvMode         env_utils.EnvMode `env:"ENV_MODE"        required:"true"`
	BackendRootPath string            `env:"BACKEND_ROOT_PATH"`
	// public origin used to build share links, deep links and redirects
	SiteOrigin string `env:"SITE_ORIGIN"     required:"true"`
	// cache
	ValkeyHost     string `env:"VALKEY_HOST"     required:"true"`
	ValkeyPort     string `env:"VALKEY_PORT"     required:"true"`
	ValkeyUsername string `env:"VALKEY_USERNAME"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyIsSsl    bool   `env:"VALKEY_IS_SSL"   env-default:"false"`
	// realtime fan-out; empty keeps notifications on this instance only
	RedisURL string `env:"REDIS_URL"`
	// email; empty host disables outgoing mail
	SmtpHost     string `env:"SMTP_HOST"`
	SmtpPort     int    `env:"SMTP_PORT"       env-default:"587"`
	SmtpUsername string `env:"SMTP_USERNAME"`
	SmtpPassword string `env:"SMTP_PASSWORD"`
	SmtpFrom     string `env:"SMTP_FROM"       env-default:"UntitledOne <no-reply@untitledone.local>"`
	// digest
	DigestCron string `env:"DIGEST_CRON"     env-default:"0 0 8 * * *"`
}

var (
	env  EnvVariables
	once sync.Once
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)
	return env
}

func loadEnvVariables() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	backendRoot := cwd
	for {
		if _, err := os.Stat(filepath.Join(backendRoot, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(backendRoot)
		if parent == backendRoot {
			break
		}

		backendRoot = parent
	}

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(backendRoot, ".env"),
	}

	var loaded bool
	for _, path := range envPaths {
		log.Info("Trying to load .env", "path", path)
		if err := godotenv.Load(path); err == nil {
			log.Info("Successfully loaded .env", "path", path)
			loaded = true
			break
		}
	}

	if !loaded {
		// containers pass everything through the environment
		log.Warn("No .env file found, reading configuration from the environment only")
	}

	err = cleanenv.ReadEnv(&env)
	if err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	if env.BackendRootPath == "" {
		env.BackendRootPath = backendRoot
	}

	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			env.IsTesting = true
			break
		}
	}

	if env.EnvMode != env_utils.EnvModeDevelopment && env.EnvMode != env_utils.EnvModeProduction {
		log.Error("ENV_MODE is invalid", "mode", env.EnvMode)
		os.Exit(1)
	}
	log.Info("ENV_MODE loaded", "mode", env.EnvMode)

	env.SiteOrigin = strings.TrimRight(env.SiteOrigin, "/")
	if env.SiteOrigin == "" {
		log.Error("SITE_ORIGIN is empty")
		os.Exit(1)
	}

	if env.SmtpHost == "" {
		log.Warn("SMTP_HOST is empty, email notifications are disabled")
	}

	if env.RedisURL == "" {
		log.Warn("REDIS_URL is empty, realtime notifications stay on this instance")
	}

	log.Info("Environment variables loaded successfully!")
}
