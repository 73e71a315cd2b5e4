package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/brizzai/dishom-client/internal/app"
	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/config"
	"github.com/brizzai/dishom-client/internal/guard"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	Execute()
}

// errNotSignedIn is returned by commands that need a stored session
var errNotSignedIn = errors.New("not signed in, run `dishom login` first")

// cfg is loaded before any sub command runs
var cfg *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dishom",
	Short: "Command line client for the Dishom platform",
	Long: `dishom signs in to the Dishom backend, keeps the session between runs and
gives access to the profile, the dashboard metrics and an MCP server exposing both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}

		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		return logger.InitLogger(&cfg.Logging)
	}

	defer func() {
		_ = logger.Sync()
	}()

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	}

	rootCmd.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newMeCmd(),
		newProfileCmd(),
		newPasswordCmd(),
		newPasswordResetCmd(),
		newMetricsCmd(),
		newDashboardCmd(),
		newServeCmd(),
	)
}

// withService starts the client stack, hands the account service to fn and
// stops the stack afterwards. extra targets are populated as well.
func withService(cmd *cobra.Command, fn func(ctx context.Context, service *auth.Service) error, extra ...any) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var service *auth.Service
	a, err := app.Start(ctx, cfg, append([]any{&service}, extra...)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(context.Background()); err != nil {
			logger.Warn("Failed to stop application", zap.Error(err))
		}
	}()

	return fn(ctx, service)
}

// requireUser passes the hydrated session through the route guard
func requireUser(ctx context.Context, service *auth.Service) (models.User, error) {
	state, err := guard.Require(ctx, service.Session())
	if errors.Is(err, guard.ErrNotAuthenticated) {
		return nil, errNotSignedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return state.User, nil
}

// protected wraps fn with requireUser
func protected(fn func(ctx context.Context, service *auth.Service, user models.User) error) func(ctx context.Context, service *auth.Service) error {
	return func(ctx context.Context, service *auth.Service) error {
		user, err := requireUser(ctx, service)
		if err != nil {
			return err
		}
		return fn(ctx, service, user)
	}
}
