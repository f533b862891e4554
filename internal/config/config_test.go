package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
venue:
  name: "Test Loft"
  telegram_admin: "test_admin"

storage:
  backend: memory

booking:
  dates: ["Сегодня", "Завтра"]
  times: ["18:00", "20:00"]

services:
  - id: 1
    title: "Кальян Classic"
    price: 1200
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Loft", cfg.Venue.Name)
	assert.Equal(t, "test_admin", cfg.Venue.TelegramAdmin)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, []string{"Сегодня", "Завтра"}, cfg.Booking.Dates)

	// Omitted fields fall back to defaults
	assert.Equal(t, "₽", cfg.Venue.Currency)
	assert.Equal(t, "data", cfg.Storage.Dir)
	assert.Equal(t, "configs/hall.yaml", cfg.HallConfigPath)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TEST_LOUNGE_ADMIN", "env_admin")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "venue:\n  telegram_admin: \"${TEST_LOUNGE_ADMIN}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env_admin", cfg.Venue.TelegramAdmin)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Smoky Loft", cfg.Venue.Name)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, []string{"Сегодня", "Завтра", "Послезавтра"}, cfg.Booking.Dates)
	assert.Len(t, cfg.Booking.Times, 6)
}

func TestValidDateAndTime(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.ValidDate("Сегодня"))
	assert.True(t, cfg.ValidDate("Послезавтра"))
	assert.False(t, cfg.ValidDate("Вчера"))
	assert.False(t, cfg.ValidDate(""))

	assert.True(t, cfg.ValidTime("18:00"))
	assert.True(t, cfg.ValidTime("00:00"))
	assert.False(t, cfg.ValidTime("19:30"))
}

func TestServiceByID(t *testing.T) {
	cfg := Default()
	cfg.Services = []Service{
		{ID: 1, Title: "Кальян Classic", Price: 1200},
		{ID: 2, Title: "Авторский Микс", Price: 1700},
	}

	svc := cfg.ServiceByID(2)
	require.NotNil(t, svc)
	assert.Equal(t, "Авторский Микс", svc.Title)
	assert.Nil(t, cfg.ServiceByID(99))
}
