package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/cmd/cli/commands"
	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/clients/gmailclient"
	"github.com/jakechorley/neighbourly/pkg/clients/sheetsclient"
	"github.com/jakechorley/neighbourly/pkg/metrics"
	"github.com/jakechorley/neighbourly/pkg/postgres"
	"github.com/jakechorley/neighbourly/pkg/utils"
	"github.com/jakechorley/neighbourly/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	closeDB func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Neighbourly CLI - Match neighbors into dinner and activity groups",
		Long:  `A CLI tool for forming neighbor groups from community matching policies, previewing runs, and introducing group members.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(commands.Needs(cmd))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MatchGroupsCmd(app))
	rootCmd.AddCommand(commands.SimulateCmd(app))
	rootCmd.AddCommand(commands.ScoreCandidateCmd(app))
	rootCmd.AddCommand(commands.ValidatePolicyCmd(app))
	rootCmd.AddCommand(commands.ApplyPolicyCmd(app))
	rootCmd.AddCommand(commands.ShowTemplateCmd(app))
	rootCmd.AddCommand(commands.ImportProfilesCmd(app))
	rootCmd.AddCommand(commands.ApproveRunCmd(app))
	rootCmd.AddCommand(commands.NextRoundsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdownApp()
		os.Exit(1)
	}
}

// initApp sets up the logger and as much of the app as the command needs
func initApp(needs string) error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, err = logging.New(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env), zap.String("needs", needs))

	if needs == commands.NeedsNothing {
		return nil
	}

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	if needs == commands.NeedsConfig {
		return nil
	}

	app.Logger.Debug("Loading OAuth client configuration")
	oauthClientCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthCfg, err := utils.GetOAuthConfig(oauthClientCfg)
	if err != nil {
		return fmt.Errorf("failed to create OAuth config: %w", err)
	}

	token, err := utils.GetTokenWithFlow(app.Ctx, oauthCfg, env, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to get OAuth token: %w", err)
	}
	app.Logger.Debug("OAuth token ready")

	// Both clients share the token, which carries every application scope
	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, oauthCfg, token)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully")

	app.GmailClient, err = gmailclient.NewClient(app.Ctx, oauthCfg, token, app.Cfg.GmailUserID, app.Cfg.GmailSender)
	if err != nil {
		return fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.Logger.Debug("Gmail client initialized successfully")

	app.Logger.Debug("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB = database.Close

	if err := database.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = database
	app.Logger.Debug("Database initialized successfully")

	app.Metrics = metrics.NewRecorder()

	return nil
}

// shutdownApp flushes metrics and releases connections. Safe to call more than once.
func shutdownApp() {
	if app.Metrics != nil && app.Cfg != nil && app.Cfg.MetricsTextfile != "" {
		if err := app.Metrics.WriteTextfile(app.Cfg.MetricsTextfile); err != nil && app.Logger != nil {
			app.Logger.Warn("Failed to write metrics textfile", zap.Error(err))
		}
		app.Metrics = nil
	}

	if closeDB != nil {
		closeDB()
		closeDB = nil
	}

	if app.Logger != nil {
		app.Logger.Sync()
	}
}
