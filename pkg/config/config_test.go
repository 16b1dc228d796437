package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

const minimalConfig = `
database:
  host: localhost
  user: indexer
  password: secret
ethereum:
  rpc_url: http://localhost:8545
indexer:
  sources:
    - address: "0x1111111111111111111111111111111111111111"
      start_block: 1000
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, uint64(1000), cfg.Indexer.WindowBlocks)
	require.Equal(t, uint64(100), cfg.Indexer.SubrangeBlocks)
	require.Equal(t, 8, cfg.Indexer.FetchConcurrency)
	require.Equal(t, 5*time.Second, cfg.Indexer.IdleInterval)
	require.Equal(t, 18, cfg.Indexer.TokenDecimals)
	require.False(t, cfg.Competition.Enabled)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
  window_blocks: 250
  subrange_blocks: 50
logging:
  format: console
`))
	require.NoError(t, err)

	require.Equal(t, uint64(250), cfg.Indexer.WindowBlocks)
	require.Equal(t, uint64(50), cfg.Indexer.SubrangeBlocks)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadRejectsMissingSources(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  host: localhost
ethereum:
  rpc_url: http://localhost:8545
`))
	require.ErrorContains(t, err, "indexer.sources is required")
}

func TestLoadRejectsSourceWithoutStartBlock(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  host: localhost
ethereum:
  rpc_url: http://localhost:8545
indexer:
  sources:
    - address: "0x1111111111111111111111111111111111111111"
`))
	require.ErrorContains(t, err, "start_block is required")
}

func TestLoadRejectsEnabledCompetitionWithoutKey(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
competition:
  enabled: true
  source: "0x2222222222222222222222222222222222222222"
  collateral_threshold: "1000000000000000000"
`))
	require.ErrorContains(t, err, "ethereum.private_key is required")
}

func TestLoadRejectsBadCollateralThreshold(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  host: localhost
ethereum:
  rpc_url: http://localhost:8545
  private_key: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
indexer:
  sources:
    - address: "0x1111111111111111111111111111111111111111"
      start_block: 1000
competition:
  enabled: true
  source: "0x2222222222222222222222222222222222222222"
  collateral_threshold: "1.5e18"
`))
	require.ErrorContains(t, err, "collateral_threshold")
}

func TestThresholdParses(t *testing.T) {
	c := &CompetitionConfig{CollateralThreshold: "42000000000000000000"}
	want, _ := new(big.Int).SetString("42000000000000000000", 10)
	require.Equal(t, 0, c.Threshold().Cmp(want))
}

func TestGetConnectionString(t *testing.T) {
	c := &DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "launchpad", SSLMode: "disable",
	}
	require.Equal(t,
		"host=db port=5432 user=u password=p dbname=launchpad sslmode=disable",
		c.GetConnectionString())
}
