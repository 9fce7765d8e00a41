package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudx-io/draftauction/core"
)

// Config keys shared by flags, BIDSIM_ environment variables and the config file
const (
	keyConfig         = "config"
	keyBudget         = "budget"
	keyMaxWinsPerTeam = "max_wins_per_team"
	keyLogLevel       = "log_level"
	keyArchive        = "archive"
)

// settings is the resolved configuration of one command invocation
type settings struct {
	Params   core.Params
	LogLevel string
	Archive  string
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "bid-simulator",
		Short: "Sealed-bid draft auction simulator",
		Long: `bid-simulator clears a sealed-bid draft auction. Every team's bids are
rescaled to a common budget, ties are broken by random draws and players
are awarded greedily, highest bid first, under a per-team cap.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(keyConfig, "c", "", "config file (default is ./bid-simulator.yaml if present)")
	flags.Float64(keyBudget, core.DefaultBudget, "budget every team's bids are rescaled to")
	flags.Int("max-wins", core.DefaultMaxWinsPerTeam, "maximum players one team may win")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String(keyArchive, "", "SQLite run archive path")

	_ = v.BindPFlag(keyConfig, flags.Lookup(keyConfig))
	_ = v.BindPFlag(keyBudget, flags.Lookup(keyBudget))
	_ = v.BindPFlag(keyMaxWinsPerTeam, flags.Lookup("max-wins"))
	_ = v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(keyArchive, flags.Lookup(keyArchive))

	rootCmd.AddCommand(newSimulateCmd(v))
	rootCmd.AddCommand(newMonteCarloCmd(v))
	rootCmd.AddCommand(newShowCmd(v))

	return rootCmd
}

func initConfig(v *viper.Viper) error {
	// Set defaults first so they're available even without a config file
	v.SetDefault(keyBudget, core.DefaultBudget)
	v.SetDefault(keyMaxWinsPerTeam, core.DefaultMaxWinsPerTeam)
	v.SetDefault(keyLogLevel, "info")

	v.SetEnvPrefix("BIDSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString(keyConfig); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("bid-simulator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		// Read config file if it exists (ignore error if not found)
		_ = v.ReadInConfig()
	}

	level, err := zerolog.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", v.GetString(keyLogLevel), err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		Params: core.Params{
			Budget:         v.GetFloat64(keyBudget),
			MaxWinsPerTeam: v.GetInt(keyMaxWinsPerTeam),
		},
		LogLevel: v.GetString(keyLogLevel),
		Archive:  v.GetString(keyArchive),
	}
	if err := core.ValidateParams(s.Params); err != nil {
		return settings{}, err
	}
	return s, nil
}
