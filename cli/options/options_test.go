package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenfee/feemap/pkg/config"
	"github.com/tokenfee/feemap/pkg/config/netmode"
	"github.com/tokenfee/feemap/pkg/core/storage/dbconfig"
	"github.com/urfave/cli"
	"go.uber.org/zap/zapcore"
)

func TestGetNetwork(t *testing.T) {
	t.Run("privnet", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		require.Equal(t, netmode.PrivNet, GetNetwork(ctx))
	})

	t.Run("testnet", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.Bool("testnet", true, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		require.Equal(t, netmode.TestNet, GetNetwork(ctx))
	})

	t.Run("mainnet", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.Bool("mainnet", true, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		require.Equal(t, netmode.MainNet, GetNetwork(ctx))
	})

	t.Run("unittest", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.Bool("unittest", true, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		require.Equal(t, netmode.UnitTestNet, GetNetwork(ctx))
	})
}

func TestGetConfigFromContext(t *testing.T) {
	t.Run("config path", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-path", "../../config", "")
		set.Bool("testnet", true, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		cfg, err := GetConfigFromContext(ctx)
		require.NoError(t, err)
		require.Equal(t, netmode.TestNet, cfg.ProtocolConfiguration.Magic)
	})

	t.Run("config file", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-file", "../../config/protocol.unit_testnet.yml", "")
		set.Bool("mainnet", true, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		cfg, err := GetConfigFromContext(ctx)
		require.NoError(t, err)
		require.Equal(t, netmode.UnitTestNet, cfg.ProtocolConfiguration.Magic)
	})

	t.Run("missing", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-path", t.TempDir(), "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		_, err := GetConfigFromContext(ctx)
		require.Error(t, err)
	})
}

func TestHandleLoggingParams(t *testing.T) {
	d := t.TempDir()
	testLog := filepath.Join(d, "file.log")

	t.Run("logdir is a file", func(t *testing.T) {
		logfile := filepath.Join(d, "logdir")
		require.NoError(t, os.WriteFile(logfile, []byte{1, 2, 3}, os.ModePerm))
		cfg := config.ApplicationConfiguration{
			LogPath: filepath.Join(logfile, "file.log"),
		}
		_, _, err := HandleLoggingParams(false, cfg)
		require.Error(t, err)
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogLevel: "loud",
		}
		_, _, err := HandleLoggingParams(false, cfg)
		require.Error(t, err)
	})

	t.Run("default", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath: testLog,
		}
		logger, lvl, err := HandleLoggingParams(false, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = logger.Sync() })
		require.Equal(t, zapcore.InfoLevel, lvl.Level())
		require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("warn", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath:  testLog,
			LogLevel: "warn",
		}
		logger, lvl, err := HandleLoggingParams(false, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = logger.Sync() })
		require.Equal(t, zapcore.WarnLevel, lvl.Level())
		require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("debug", func(t *testing.T) {
		cfg := config.ApplicationConfiguration{
			LogPath:  testLog,
			LogLevel: "warn",
		}
		logger, lvl, err := HandleLoggingParams(true, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = logger.Sync() })
		require.Equal(t, zapcore.DebugLevel, lvl.Level())
		require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestInitStore(t *testing.T) {
	s, err := InitStore(config.ApplicationConfiguration{
		DBConfiguration: dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = InitStore(config.ApplicationConfiguration{
		DBConfiguration: dbconfig.DBConfiguration{Type: "unknown"},
	})
	require.Error(t, err)
}
