// ABOUTME: Entry point for apollo-gateway, the typed Apollo.io tool gateway
// ABOUTME: Builds the cobra command tree and runs it under a signal-aware context

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389/apollo-gateway/internal/config"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                    _ _
   __ _ _ __   ___ | | | ___         __ _  __ _| |_ _____      ____ _ _   _
  / _' | '_ \ / _ \| | |/ _ \ _____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
 | (_| | |_) | (_) | | | (_) |_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
  \__,_| .__/ \___/|_|_|\___/       \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
       |_|                          |___/                             |___/
`

// cli carries the flags shared by every subcommand.
type cli struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "apollo-gateway",
		Short:         "apollo-gateway - typed Apollo.io tools over MCP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		fmt.Sprintf("config file (default $%s or ~/.config/apollo-gateway/gateway.yaml)", config.EnvConfigPath))

	root.AddCommand(
		c.serveCmd(),
		c.stdioCmd(),
		c.toolsCmd(),
		c.callCmd(),
		c.failuresCmd(),
		c.usageCmd(),
		c.tokenCmd(),
		c.initCmd(),
		c.healthCmd(),
	)
	return root
}

// loadConfig reads the --config file when given. Otherwise the default file
// is used if present, with the environment as the fallback.
func (c *cli) loadConfig() (*config.Config, string, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return nil, c.configPath, fmt.Errorf("loading config: %w", err)
		}
		return cfg, c.configPath, nil
	}
	cfg, source, err := config.Resolve(config.DefaultPath())
	if err != nil {
		return nil, source, fmt.Errorf("loading config: %w", err)
	}
	return cfg, source, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
