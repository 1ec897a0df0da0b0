package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tally/internal/session"
)

// Settings are resolved from flags, then TALLY_* environment variables, then
// tally.toml, then defaults.
type Settings struct {
	APIURL       string        `mapstructure:"api_url"`
	Demo         bool          `mapstructure:"demo"`
	SessionFile  string        `mapstructure:"session_file"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Output       string        `mapstructure:"output"`
	Verbose      bool          `mapstructure:"verbose"`
	AMQPURL      string        `mapstructure:"amqp_url"`
	AMQPExchange string        `mapstructure:"amqp_exchange"`
	AMQPQueue    string        `mapstructure:"amqp_queue"`
}

const (
	outputTable = "table"
	outputJSON  = "json"
)

func addSettingsFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default: ./tally.toml or $XDG_CONFIG_HOME/tally/tally.toml)")
	f.String("api-url", "http://localhost:3000", "base URL of the transaction API")
	f.Bool("demo", false, "read /api/demoTransactions instead of /api/transactions")
	f.String("session-file", session.DefaultPath(), "file holding cached transactions and analysis settings")
	f.Duration("timeout", 10*time.Second, "HTTP timeout for loading transactions")
	f.StringP("output", "o", outputTable, "output format: table or json")
	f.BoolP("verbose", "v", false, "log debug output to stderr")
	f.String("amqp-url", "", "RabbitMQ URL used by import")
	f.String("amqp-exchange", "tally", "exchange used by import")
	f.String("amqp-queue", "import_transactions", "queue used by import")
}

// loadSettings binds cmd's flags into a fresh viper instance and decodes them.
func loadSettings(cmd *cobra.Command) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"api-url", "demo", "session-file", "timeout", "output", "verbose", "amqp-url", "amqp-exchange", "amqp-queue"} {
		key := strings.ReplaceAll(name, "-", "_")
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if err := readConfigFile(v, cmd); err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if s.Output != outputTable && s.Output != outputJSON {
		return Settings{}, fmt.Errorf("invalid output %q: must be table or json", s.Output)
	}
	return s, nil
}

func readConfigFile(v *viper.Viper, cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("TALLY_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tally")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "tally"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
