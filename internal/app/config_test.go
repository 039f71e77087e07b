package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/persistence"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, persistence.DriverFile, cfg.StoreDriver)
	require.Equal(t, persistence.DefaultKey, cfg.StoreKey)
	require.Equal(t, "clamp", cfg.WithdrawPolicy)
	require.Equal(t, "warehouse_operator_01", cfg.DefaultOperator)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Greater(t, cfg.AppWriteTimeout, cfg.AppRequestTimeout)
	require.Greater(t, cfg.AppWriteTimeout, cfg.GenAITimeout)
	require.False(t, cfg.IsProduction())

	genai := cfg.GenAIClientConfig()
	require.Equal(t, cfg.GenAITimeout, genai.Timeout)
	require.Equal(t, cfg.GenAIBaseURL, genai.BaseURL)
}

func TestLoadConfigRejectsWriteTimeoutBelowRequestTimeout(t *testing.T) {
	t.Setenv("APP_WRITE_TIMEOUT", "15s")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "write timeout")
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "store driver")
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("WITHDRAW_POLICY", "borrow")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "withdraw policy")
}

func TestLoadConfigS3RequiresBucket(t *testing.T) {
	t.Setenv("STORE_DRIVER", "s3")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("S3_BUCKET", "stock")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	opts := cfg.StoreOptions()
	require.Equal(t, "stock", opts.S3.Bucket)
	require.Equal(t, persistence.DriverS3, opts.Driver)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("STOCKROOM_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("STOCKROOM_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	require.Equal(t, "from-file", os.Getenv("STOCKROOM_DOTENV_PROBE"))
}
