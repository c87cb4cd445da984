package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"schoolsby-client/lib/configutil"
	"schoolsby-client/lib/scrapers/schoolsby"
	"schoolsby-client/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	cfg Config
	tel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "schoolsby-cli",
	Short: "schoolsby-cli fetches and prints records from a schools.by school.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = readConfig()
		var err error
		tel, err = telemetry.Setup(cmd.Context(), "schoolsby-cli", cfg.Telemetry)
		if err != nil {
			fatal("failed to setup telemetry", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := tel.Shutdown(cmd.Context()); err != nil {
			slog.Error("failed to shutdown telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(message string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
	os.Exit(1)
}

type Config struct {
	// school subdomain prefix, e.g. "https://demo.schools.by/"
	Subdomain string `json:"subdomain"`
	IPBypass  bool   `json:"ip_bypass"`

	Username string `json:"username"`
	Password string `json:"password"`

	// cookie pair from a previous login; used when set so repeated
	// invocations don't re-run the handshake
	CSRFToken string `json:"csrftoken"`
	SessionID string `json:"sessionid"`

	Telemetry telemetry.Config `json:"telemetry"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		fatal("failed to read config.json5", err)
	}
	return cfg
}

func createClient() *schoolsby.Client {
	client, err := schoolsby.NewClient(schoolsby.Options{
		BaseURL:  cfg.Subdomain,
		IPBypass: cfg.IPBypass,
	})
	if err != nil {
		fatal("failed to initialize client", err)
	}
	return client
}

// credentials returns the configured cookie pair, logging in with the
// configured username/password when no cookies are present.
func credentials(ctx context.Context, client *schoolsby.Client) schoolsby.Credentials {
	if cfg.CSRFToken != "" && cfg.SessionID != "" {
		return schoolsby.Credentials{CSRFToken: cfg.CSRFToken, SessionID: cfg.SessionID}
	}
	creds, err := client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		fatal("failed to login", err)
	}
	return creds
}
