package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "cookbook-api", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8000", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "cookbook", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)

		assert.Equal(t, "./media", cfg.Media.Root)
		assert.Equal(t, "/media", cfg.Media.BaseURL)

		assert.Equal(t, RendererWkhtmltopdf, cfg.PDF.Renderer)
		assert.True(t, cfg.PDF.UseXvfb)
		assert.Equal(t, "xvfb-run", cfg.PDF.XvfbPath)
		assert.Equal(t, "640x480x16", cfg.PDF.XvfbScreen)
		assert.Equal(t, 1.0, cfg.PDF.Zoom)
		assert.Equal(t, "ignore", cfg.PDF.LoadErrorHandling)
		assert.Equal(t, 60*time.Second, cfg.PDF.RenderTimeout)
		assert.Equal(t, 90*time.Second, cfg.PDF.LeaseTTL)
		assert.Equal(t, 2, cfg.PDF.Workers)
		assert.Equal(t, 100, cfg.PDF.QueueSize)
		assert.True(t, cfg.PDF.RecoverOnStart)

		assert.Equal(t, StorageFilesystem, cfg.Storage.Driver)
		assert.False(t, cfg.Redis.Enabled)
		assert.True(t, cfg.Swagger.Enabled)
		assert.Equal(t, "cookbook-api", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with COOKBOOK prefix", func(t *testing.T) {
		t.Setenv("COOKBOOK_APP_PORT", "9000")
		t.Setenv("COOKBOOK_DATABASE_DRIVER", "sqlite")
		t.Setenv("COOKBOOK_DATABASE_SQLITE_PATH", "/tmp/test.db")
		t.Setenv("COOKBOOK_PDF_RENDERER", "chromedp")
		t.Setenv("COOKBOOK_PDF_WORKERS", "4")
		t.Setenv("COOKBOOK_PDF_USE_XVFB", "false")
		t.Setenv("COOKBOOK_PDF_RENDER_TIMEOUT", "30s")
		t.Setenv("COOKBOOK_REDIS_ENABLED", "true")
		t.Setenv("COOKBOOK_SWAGGER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/test.db", cfg.Database.SQLitePath)
		assert.Equal(t, RendererChromedp, cfg.PDF.Renderer)
		assert.Equal(t, 4, cfg.PDF.Workers)
		assert.False(t, cfg.PDF.UseXvfb)
		assert.Equal(t, 30*time.Second, cfg.PDF.RenderTimeout)
		assert.Equal(t, 60*time.Second, cfg.PDF.LeaseTTL)
		assert.True(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Swagger.Enabled)
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown database driver",
			env:     map[string]string{"COOKBOOK_DATABASE_DRIVER": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "unknown renderer",
			env:     map[string]string{"COOKBOOK_PDF_RENDERER": "princexml"},
			wantErr: "pdf.renderer",
		},
		{
			name:    "unknown storage driver",
			env:     map[string]string{"COOKBOOK_STORAGE_DRIVER": "ftp"},
			wantErr: "storage.driver",
		},
		{
			name:    "s3 without bucket",
			env:     map[string]string{"COOKBOOK_STORAGE_DRIVER": "s3"},
			wantErr: "storage.bucket",
		},
		{
			name: "lease shorter than render timeout",
			env: map[string]string{
				"COOKBOOK_PDF_RENDER_TIMEOUT": "2m",
				"COOKBOOK_PDF_LEASE_TTL":      "30s",
			},
			wantErr: "pdf.lease_ttl",
		},
		{
			name: "idle conns exceed open conns",
			env: map[string]string{
				"COOKBOOK_DATABASE_MAX_OPEN_CONNS": "2",
				"COOKBOOK_DATABASE_MAX_IDLE_CONNS": "5",
			},
			wantErr: "max_idle_conns",
		},
		{
			name:    "production requires database password",
			env:     map[string]string{"COOKBOOK_APP_ENV": "production"},
			wantErr: "database.password",
		},
		{
			name: "production rejects wildcard CORS",
			env: map[string]string{
				"COOKBOOK_APP_ENV":                "production",
				"COOKBOOK_DATABASE_PASSWORD":      "secret",
				"COOKBOOK_HTTP_CORS_ALLOW_ORIGINS": "*",
			},
			wantErr: "cors_allow_origins",
		},
		{
			name:    "sampling ratio out of range",
			env:     map[string]string{"COOKBOOK_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFrom_TOML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[app]
name = "kitchen"

[pdf]
zoom = 1.25
xvfb_screen = "1024x768x24"

[storage]
driver = "s3"
bucket = "recipes"
access_key = "ak"
secret_key = "sk"
`)))

	cfg, err := loadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "kitchen", cfg.App.Name)
	assert.Equal(t, "kitchen", cfg.Telemetry.ServiceName)
	assert.Equal(t, 1.25, cfg.PDF.Zoom)
	assert.Equal(t, "1024x768x24", cfg.PDF.XvfbScreen)
	assert.Equal(t, StorageS3, cfg.Storage.Driver)
	assert.Equal(t, "recipes", cfg.Storage.Bucket)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("builds postgres URL", func(t *testing.T) {
		d := DatabaseConfig{
			Host: "db", Port: 5432, User: "cook", Password: "pw",
			DBName: "cookbook", SSLMode: "disable",
		}
		assert.Equal(t, "postgres://cook:pw@db:5432/cookbook?sslmode=disable", d.DSN())
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		d := DatabaseConfig{
			Host: "db", Port: 5432, User: "cook", Password: "p@ss/w:rd",
			DBName: "cookbook", SSLMode: "require",
		}
		dsn := d.DSN()
		assert.Contains(t, dsn, "p%40ss%2Fw%3Ard")
		assert.Contains(t, dsn, "sslmode=require")
	})
}
