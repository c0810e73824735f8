// Package cmd contains all CLI commands for carectl
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"carectl/client"
	"carectl/config"
	"carectl/internal/auth"
	"carectl/internal/guard"
	"carectl/internal/infrastructure/store"
	"carectl/internal/infrastructure/token"
	"carectl/internal/output"
	"carectl/internal/service"
	"carectl/utils/logger"
)

var (
	cfgFile   string
	verbose   bool
	colorFlag string
	cfg       *config.Config
	log       *slog.Logger
	printer   *output.Printer
	version   = "dev"

	app *application
)

// application wires the session machinery and feature services together,
// the way the original app assembles its auth context and services once
// at the top of the tree.
type application struct {
	store        *store.FileStore
	inspector    *token.Inspector
	manager      *auth.Manager
	api          *client.Client
	hospitals    *service.Hospitals
	appointments *service.Appointments
	insurance    *service.Insurance
	treatments   *service.Treatments
	symptoms     *service.Symptoms
	profile      *service.Profile
	dashboard    *service.Dashboard
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "carectl",
	Short: "CareCompare patient CLI",
	Long: `carectl is the command line client for the CareCompare healthcare
platform: hospital search and comparison, appointment booking, insurance
plan browsing, a symptom checker, and profile management.

Example usage:
  carectl login alice            # Sign in with a username
  carectl hospitals search --name mercy
  carectl appointments book --hospital 3 --date 2026-09-20 --doctor "Dr. Chen" --specialty Cardiology
  carectl symptoms "headache and fever"
  carectl dashboard              # Aggregated overview`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if cliErr, ok := err.(*output.CLIError); ok {
			if printer == nil {
				printer = output.NewPrinter(false)
			}
			printer.FormatError(cliErr)
			os.Exit(cliErr.ExitCode)
		}
	}
	return err
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .carectl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initApp loads configuration and assembles the client stack.
func initApp() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "could not load configuration",
			Detail:     err.Error(),
			Suggestion: "Check .carectl.yaml syntax or use --config",
			ExitCode:   output.ExitConfigError,
		}
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log = logger.Init(cfg.Logging.Format, level)

	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}
	printer = output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: cfg.Output.Colors,
	})

	sessionStore := store.NewFileStore(cfg.Session.File)
	inspector := token.NewInspector()

	api := client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Store:   sessionStore,
		Logger:  log,
		OnSessionExpired: func() {
			printer.Warning("Session expired. Please log in again.")
		},
	})
	gateway := client.NewAuthGateway(cfg.API.BaseURL, cfg.API.AuthTimeout, log)
	manager := auth.NewManager(sessionStore, inspector, gateway, log, auth.Options{
		RefreshInterval:  cfg.Auth.RefreshInterval,
		RefreshFloor:     cfg.Auth.RefreshFloor,
		DebounceWindow:   cfg.Auth.DebounceWindow,
		InFlightWait:     cfg.Auth.InFlightWait,
		RefreshTimeout:   cfg.Auth.RefreshTimeout,
		RefreshThreshold: cfg.Auth.RefreshThreshold,
	})
	api.SetRefresher(manager)

	app = &application{
		store:        sessionStore,
		inspector:    inspector,
		manager:      manager,
		api:          api,
		hospitals:    service.NewHospitals(api, cfg.API.RegistryURL, log),
		appointments: service.NewAppointments(api, sessionStore, log),
		insurance:    service.NewInsurance(api),
		treatments:   service.NewTreatments(api),
		symptoms:     service.NewSymptoms(api, log),
		profile:      service.NewProfile(api, sessionStore, manager, log),
		dashboard:    service.NewDashboard(api, sessionStore, log),
	}
	return nil
}

// requireSession is the CLI's route guard: protected commands pass
// through it before running. Cached credentials admit optimistically; a
// stale session kicks a debounced refresh first, matching how protected
// views behave in the app.
func requireSession(ctx context.Context, target string) error {
	in := guard.Input{
		State:               app.manager.State(),
		Loading:             app.manager.Loading(),
		HasLocalCredentials: app.manager.Session().HasCredentials(),
		Target:              target,
	}

	if !in.HasLocalCredentials && in.Loading {
		// No local fallback: resolve the session check before deciding.
		app.manager.VerifySession(ctx)
		in.State = app.manager.State()
		in.Loading = false
	}

	switch out := guard.Evaluate(in); out.Decision {
	case guard.Admit:
		last, ok := app.store.LastRefresh()
		if guard.ShouldKickRefresh(last, ok, time.Now()) {
			if res := app.manager.Refresh(ctx); !res.Success && res.Err != nil {
				log.Debug("background refresh failed", "error", res.Err)
			}
		}
		return nil
	default:
		return &output.CLIError{
			Summary:    "login required",
			Detail:     fmt.Sprintf("%q is a protected view", out.ReturnTo),
			Suggestion: fmt.Sprintf("Run 'carectl login' and retry 'carectl %s'", out.ReturnTo),
			ExitCode:   output.ExitAuthError,
		}
	}
}

// fail converts a service error into the CLI error taxonomy.
func fail(err error) error {
	return output.FromError(err)
}

// dash renders empty values as a placeholder in tables.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parseID parses a numeric id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, &output.CLIError{
			Summary:  fmt.Sprintf("invalid id %q: must be a positive number", arg),
			ExitCode: output.ExitUsageError,
		}
	}
	return id, nil
}
