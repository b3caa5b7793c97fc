package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/joho/godotenv"
)

const Development = "development"

var ErrMissingSecret = errors.New("JWT_SECRET must be set outside development")

type Google struct {
	WebClientID     string
	IOSClientIDDev  string
	IOSClientIDProd string
	AndroidClientID string
}

type Apple struct {
	PrivateKeyPath string
	KeyID          string
	TeamID         string
	BundleID       string
}

type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	ClientOrigin string
	JWTSecret    string
	SessionTTL   time.Duration
	Google       Google
	Apple        Apple
	Game         game.Settings
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	def := game.DefaultSettings()
	return Config{
		Env:          getEnv("APP_ENV", Development),
		Port:         getEnv("PORT", "3000"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:8080"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		Google: Google{
			WebClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			IOSClientIDDev:  os.Getenv("IOS_GOOGLE_CLIENT_ID_DEV"),
			IOSClientIDProd: os.Getenv("IOS_GOOGLE_CLIENT_ID_PROD"),
			AndroidClientID: os.Getenv("ANDROID_GOOGLE_CLIENT_ID"),
		},
		Apple: Apple{
			PrivateKeyPath: os.Getenv("PRIVATE_KEY_FILE_PATH"),
			KeyID:          os.Getenv("APPLE_KEY_ID"),
			TeamID:         os.Getenv("APPLE_TEAM_ID"),
			BundleID:       os.Getenv("APPLE_BUNDLE_ID"),
		},
		Game: game.Settings{
			Rounds:        getEnvInt("GAME_ROUNDS", def.Rounds),
			QuestionCount: getEnvInt("GAME_QUESTION_COUNT", def.QuestionCount),
			TimeToWrite:   getEnvDuration("GAME_TIME_TO_WRITE", def.TimeToWrite),
			TimeToAnswer:  getEnvDuration("GAME_TIME_TO_ANSWER", def.TimeToAnswer),
			QuestionDelay: getEnvDuration("GAME_QUESTION_DELAY", def.QuestionDelay),
			RoundDelay:    getEnvDuration("GAME_ROUND_DELAY", def.RoundDelay),
			Points:        getEnvInt("GAME_POINTS", def.Points),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) Validate() error {
	if c.Env != Development && c.JWTSecret == "" {
		return ErrMissingSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
