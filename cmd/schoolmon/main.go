// Command schoolmon is the client for the school monitoring API. Running it
// without a subcommand opens the terminal UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schoolmon/internal/client"
	"schoolmon/internal/i18n"
	"schoolmon/internal/model"
	"schoolmon/internal/session"
	"schoolmon/internal/tui"
)

var version = "dev"
var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("server", "http://localhost:8080")
	viper.SetDefault("grpc", "localhost:9090")
	viper.SetDefault("lang", i18n.DefaultLang)
	viper.SetDefault("page_size", 5)
	viper.SetDefault("token_file", "")
	viper.SetDefault("camera", "")
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schoolmon",
		Short: "Monitor schools and their devices",
		Long: `schoolmon lists schools, shows the health of their devices and
registers new devices by QR code against the schoolmon API.

Running without a subcommand launches the interactive TUI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			i18n.Init(viper.GetString("lang"))
			return nil
		},
		RunE: runTUI,
	}
	cmd.Version = version

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.schoolmon.yaml or ./.schoolmon.yaml)")
	cmd.PersistentFlags().String("server", "http://localhost:8080", "base URL of the schoolmon API")
	cmd.PersistentFlags().String("lang", i18n.DefaultLang, "interface language")
	cmd.PersistentFlags().String("token-file", "", "where the session token is kept (default is the user config dir)")
	cmd.PersistentFlags().Int("page-size", 5, "schools per page")

	_ = viper.BindPFlag("server", cmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("lang", cmd.PersistentFlags().Lookup("lang"))
	_ = viper.BindPFlag("token_file", cmd.PersistentFlags().Lookup("token-file"))
	_ = viper.BindPFlag("page_size", cmd.PersistentFlags().Lookup("page-size"))

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newSchoolsCmd())
	cmd.AddCommand(newSchoolCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newTUICmd())
	return cmd
}

// initConfig reads .schoolmon.yaml from the home or working directory and
// SCHOOLMON_* environment variables. A missing file is not an error.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".schoolmon")
	}

	viper.SetEnvPrefix("SCHOOLMON")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// app is the per-invocation client state: the API client with the session
// restored from the token file.
type app struct {
	client *client.Client
	tokens session.FileStore
	stored bool
}

func newApp() (*app, error) {
	path := viper.GetString("token_file")
	if path == "" {
		var err error
		if path, err = session.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}
	tokens := session.FileStore{Path: path}
	token, err := tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &app{
		client: client.New(viper.GetString("server"), session.Restore(token)),
		tokens: tokens,
		stored: token != "",
	}, nil
}

// requireSession fails early when there is no stored token.
func (a *app) requireSession() error {
	if !a.client.IsAuthenticated() {
		return fmt.Errorf("%w, run schoolmon login", model.ErrAuthRequired)
	}
	return nil
}

// observe drops the stored token once the server has rejected it.
func (a *app) observe(err error) error {
	if model.IsAuthRequired(err) && a.stored {
		if rmErr := a.tokens.Remove(); rmErr != nil {
			return fmt.Errorf("%w (remove token: %v)", err, rmErr)
		}
		a.stored = false
		return fmt.Errorf("%w, run schoolmon login", err)
	}
	return err
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	camera, _ := cmd.Flags().GetString("camera")
	if camera == "" {
		camera = viper.GetString("camera")
	}
	return tui.Run(cmd.Context(), a.client, tui.Options{
		PageSize:   viper.GetInt("page_size"),
		CameraPath: camera,
		Tokens:     a.tokens,
	})
}
