// ABOUTME: Subcommands for apollo-gateway: serve, stdio, tools, call, failures, usage, token, init, health
// ABOUTME: Each command loads config lazily so tools and init work without an API key

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/spf13/cobra"

	"github.com/2389/apollo-gateway/internal/apollo"
	"github.com/2389/apollo-gateway/internal/auth"
	"github.com/2389/apollo-gateway/internal/builtins"
	"github.com/2389/apollo-gateway/internal/config"
	"github.com/2389/apollo-gateway/internal/gateway"
	"github.com/2389/apollo-gateway/internal/packs"
	"github.com/2389/apollo-gateway/internal/store"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway (MCP endpoint, health and API)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cyan := color.New(color.FgCyan)
			cyan.Fprint(out, banner)
			gray := color.New(color.FgHiBlack)
			gray.Fprintf(out, "    version: %s\n\n", version)

			cfg, source, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Logging, out)

			green := color.New(color.FgGreen)
			yellow := color.New(color.FgYellow)
			startupLine := func(label, value string) {
				green.Fprint(out, "    ▶ ")
				fmt.Fprintf(out, "%-10s ", label)
				yellow.Fprintln(out, value)
			}
			startupLine("config", source)
			startupLine("upstream", cfg.Apollo.BaseURL)
			startupLine("http", "http://"+cfg.Server.HTTPAddr+"/mcp")
			if cfg.Database.Path != "" {
				startupLine("failures", cfg.Database.Path)
			} else {
				startupLine("failures", "in memory")
			}
			fmt.Fprintln(out)

			gw, err := gateway.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating gateway: %w", err)
			}
			return gw.Run(cmd.Context())
		},
	}
}

func (c *cli) stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve every tool over MCP stdio (logs go to stderr)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())

			gw, err := gateway.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating gateway: %w", err)
			}
			return gw.RunStdio(cmd.Context())
		},
	}
}

func (c *cli) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools and the capabilities they require",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := packs.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err := registry.RegisterBuiltinPack(builtins.ApolloPack(nil)); err != nil {
				return err
			}
			registry.Freeze()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tCAPABILITIES\tDESCRIPTION")
			for _, tool := range registry.GetAllTools() {
				summary, _, _ := strings.Cut(tool.Description, "\n")
				fmt.Fprintf(tw, "%s\t%s\t%s\n", tool.Name, strings.Join(tool.RequiredCapabilities, ","), summary)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [arguments-json]",
		Short: "Invoke one tool and print its payload (null when absent)",
		Long: "Invoke one tool and print its payload as JSON.\n" +
			"Arguments are read from stdin when omitted or given as \"-\".\n" +
			"Example: apollo-gateway call organization_enrichment '{\"query\":{\"domain\":\"apollo.io\"}}'",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readArguments(cmd, args)
			if err != nil {
				return err
			}

			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())

			gw, err := gateway.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating gateway: %w", err)
			}
			defer gw.Close()

			result, err := gw.Router().Invoke(cmd.Context(), args[0], raw)
			switch {
			case errors.Is(err, packs.ErrToolNotFound):
				return fmt.Errorf("unknown tool %q (see \"apollo-gateway tools\")", args[0])
			case errors.Is(err, apollo.ErrInvalidQuery):
				return err
			case err != nil:
				return fmt.Errorf("calling %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if result.Absent {
				fmt.Fprintln(out, "null")
				return nil
			}
			data, err := json.MarshalIndent(result.Payload, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding payload: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}
}

func readArguments(cmd *cobra.Command, args []string) (json.RawMessage, error) {
	var data []byte
	if len(args) == 2 && args[1] != "-" {
		data = []byte(args[1])
	} else {
		var err error
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading arguments: %w", err)
		}
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return nil, errors.New("arguments must be a JSON object")
	}
	return json.RawMessage(data), nil
}

func (c *cli) failuresCmd() *cobra.Command {
	var (
		limit     int
		operation string
		reason    string
		since     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List recorded upstream failures, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Database.Path == "" {
				fmt.Fprintln(out, "failures are kept in memory only; set database.path to persist them")
				return nil
			}

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening failure store: %w", err)
			}
			defer st.Close()

			filter := store.FailureFilter{Limit: limit}
			if operation != "" {
				filter.Operation = &operation
			}
			if reason != "" {
				r := store.FailureReason(reason)
				filter.Reason = &r
			}
			if since > 0 {
				t := time.Now().Add(-since)
				filter.Since = &t
			}

			failures, err := st.ListFailures(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("listing failures: %w", err)
			}
			if len(failures) == 0 {
				fmt.Fprintln(out, "no failures recorded")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tOPERATION\tREASON\tSTATUS\tREQUEST\tDETAIL")
			for _, f := range failures {
				detail := f.Error
				if detail == "" {
					detail = truncate(f.Body, 60)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					f.Timestamp.Local().Format(time.DateTime), f.Operation, f.Reason, f.StatusCode, f.RequestID, detail)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum failures to show")
	cmd.Flags().StringVar(&operation, "operation", "", "only this operation (e.g. people_search)")
	cmd.Flags().StringVar(&reason, "reason", "", "only this reason (e.g. rate_limited)")
	cmd.Flags().DurationVar(&since, "since", 0, "only failures within this window (e.g. 24h)")
	return cmd
}

func (c *cli) usageCmd() *cobra.Command {
	var (
		tool      string
		principal string
		since     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show tool call counts by outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Database.Path == "" {
				fmt.Fprintln(out, "usage is kept in memory only; set database.path to persist it")
				return nil
			}

			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			var filter store.UsageFilter
			if tool != "" {
				filter.Tool = &tool
			}
			if principal != "" {
				filter.PrincipalID = &principal
			}
			if since > 0 {
				t := time.Now().Add(-since)
				filter.Since = &t
			}

			stats, err := st.GetUsageStats(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("reading usage: %w", err)
			}
			if len(stats) == 0 {
				fmt.Fprintln(out, "no tool calls recorded")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tCALLS\tPAYLOAD\tABSENT\tINVALID\tERROR\tAVG")
			for _, u := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
					u.Tool, u.Calls, u.Payloads, u.Absent, u.Invalid, u.Errors, u.AvgDuration.Round(time.Millisecond))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "only this tool")
	cmd.Flags().StringVar(&principal, "principal", "", "only calls made by this principal")
	cmd.Flags().DurationVar(&since, "since", 0, "only calls within this window (e.g. 24h)")
	return cmd
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		principal string
		caps      []string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with auth.jwt_secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}
			if strings.TrimSpace(principal) == "" {
				return errors.New("--principal is required")
			}

			verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
			if err != nil {
				return err
			}
			token, err := verifier.Generate(principal, caps, ttl)
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&principal, "principal", "p", "", "principal the token is issued to")
	cmd.Flags().StringSliceVar(&caps, "caps", []string{builtins.CapSearch}, "capabilities granted")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func (c *cli) initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.configPath
			if path == "" {
				path = config.DefaultPath()
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(config.Starter), 0o600); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprint(out, "✓ ")
			fmt.Fprintf(out, "wrote %s\n", path)
			fmt.Fprintf(out, "  set %s, then run: apollo-gateway serve\n", config.EnvAPIKey)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check a running gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}

			url := fmt.Sprintf("http://%s/health/ready", cfg.Server.HTTPAddr)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("creating request: %w", err)
			}

			httpClient := cleanhttp.DefaultClient()
			httpClient.Timeout = 5 * time.Second
			resp, err := httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))
			return nil
		},
	}
}
