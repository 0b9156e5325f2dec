package cli

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sdg-quest/internal/apiclient"
	"sdg-quest/internal/app"
	"sdg-quest/internal/badge"
	"sdg-quest/internal/config"
	"sdg-quest/internal/credentials"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	port        string
	api         string
	credentials string
}

// Execute runs the CLI.
func Execute() error {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "sdg-quest",
		Short:        "SDG Quest quizzes: play, track badges, and run the score backend",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.port, "port", "", "port to listen on (start)")
	cmd.PersistentFlags().StringVar(&opts.api, "api", "", "base URL of the quiz API")
	cmd.PersistentFlags().StringVar(&opts.credentials, "credentials", "", "path to the credentials file")

	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewPlayCmd(opts))
	cmd.AddCommand(NewDashboardCmd(opts))
	cmd.AddCommand(NewLoginCmd(opts))
	cmd.AddCommand(NewLogoutCmd(opts))
	cmd.AddCommand(NewTokenCmd(opts))
	cmd.AddCommand(NewWatchCmd(opts))
	return cmd
}

// load resolves config as file, then environment, then flags.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	if o.port != "" {
		cfg.Server.Port = o.port
	}
	if o.api != "" {
		cfg.Client.API = o.api
	}
	if o.credentials != "" {
		cfg.Client.Credentials = o.credentials
	}
	return cfg, nil
}

func credentialStore(cfg config.Config) *credentials.Store {
	if cfg.Client.Credentials != "" {
		return credentials.NewStore(cfg.Client.Credentials)
	}
	return credentials.NewStore(credentials.DefaultPath())
}

func clientTimeout(cfg config.Config) time.Duration {
	return config.TTLDuration(cfg.Client.Timeout, app.DefaultFetchTimeout)
}

func apiClient(cfg config.Config) *apiclient.Client {
	return apiclient.New(cfg.Client.API, clientTimeout(cfg))
}

func badgeRules(cfg config.Config) (badge.Rules, error) {
	rules := badge.DefaultRules()
	reducer, err := badge.ReducerByName(cfg.Badges.Reducer)
	if err != nil {
		return rules, err
	}
	rules.Reducer = reducer
	return rules, nil
}
