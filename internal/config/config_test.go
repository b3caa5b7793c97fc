package config

import (
	"testing"
	"time"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "CLIENT_ORIGIN", "JWT_SECRET", "SESSION_TTL",
		"GAME_ROUNDS", "GAME_QUESTION_COUNT", "GAME_TIME_TO_WRITE", "GAME_TIME_TO_ANSWER",
		"GAME_QUESTION_DELAY", "GAME_ROUND_DELAY", "GAME_POINTS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, Development, cfg.Env)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, game.DefaultSettings(), cfg.Game)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "shh")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("GAME_ROUNDS", "5")
	t.Setenv("GAME_TIME_TO_ANSWER", "45s")
	t.Setenv("GAME_POINTS", "25")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.Game.Rounds)
	assert.Equal(t, 45*time.Second, cfg.Game.TimeToAnswer)
	assert.Equal(t, 25, cfg.Game.Points)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GAME_ROUNDS", "abc")
	t.Setenv("GAME_POINTS", "-4")
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()

	def := game.DefaultSettings()
	assert.Equal(t, def.Rounds, cfg.Game.Rounds)
	assert.Equal(t, def.Points, cfg.Game.Points)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
}

func TestValidate_RequiresSecretOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	require.ErrorIs(t, cfg.Validate(), ErrMissingSecret)
}
