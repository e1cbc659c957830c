// fundalens — fundamental analysis for US-listed equities.
//
// Fetches public financial statements, computes valuation ratios, the
// Piotroski F-Score, growth rates and a DCF valuation, and prints a
// consolidated per-ticker report.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/fundalens/api"
	"github.com/seenimoa/fundalens/internal/config"
	"github.com/seenimoa/fundalens/internal/engine"
	"github.com/seenimoa/fundalens/internal/infra"
	"github.com/seenimoa/fundalens/internal/logging"
	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/internal/providers"
	"github.com/seenimoa/fundalens/internal/report"
)

// Version information (set via ldflags at build time).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fundalens",
	Short: "Fundamental analysis for US-listed equities",
	Long: `fundalens fetches public financial statements from free providers
(Alpha Vantage, Yahoo Finance, stockanalysis.com), computes valuation
ratios, the Piotroski F-Score, growth rates and a DCF valuation, and
prints a consolidated report per ticker.

Examples:
  fundalens analyze AAPL
  fundalens analyze MSFT --format json --news
  fundalens analyze NVDA --provider yahoo --risk-free-rate 0.043
  fundalens serve --addr :8900`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first so ALPHAVANTAGE_API_KEY is visible to the config
		// loader; missing file is not an error.
		_ = godotenv.Load()

		var err error
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			cfg, err = config.LoadFromFile(path)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Logging.Level = "debug"
		}
		logger = logging.Setup(cfg.Logging)

		infra.SetHTTPTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file (default: auto-discover)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// analyzeCmd runs one analysis and prints the report to stdout.
// Logs go to stderr so the report stays pipeable.
var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "Analyze one ticker and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		reg, err := buildRegistry()
		if err != nil {
			return err
		}
		eng := engine.New(reg, cfg, logger)

		opts := engine.Options{}
		opts.Provider, _ = cmd.Flags().GetString("provider")
		if news, _ := cmd.Flags().GetBool("news"); news {
			opts.WithNews = cfg.News.Enabled
		}
		opts.NewsLimit, _ = cmd.Flags().GetInt("news-limit")

		flags := cmd.Flags()
		if flags.Changed("risk-free-rate") {
			v, _ := flags.GetFloat64("risk-free-rate")
			opts.RiskFreeRate = &v
		}
		if flags.Changed("market-return") {
			v, _ := flags.GetFloat64("market-return")
			opts.MarketReturn = &v
		}
		if flags.Changed("terminal-growth") {
			v, _ := flags.GetFloat64("terminal-growth")
			opts.TerminalGrowth = &v
		}

		rep, err := eng.Analyze(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}

		out, err := report.Render(rep, format)
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimSuffix(out, "\n"))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("format", "text", "output format: text or json")
	analyzeCmd.Flags().String("provider", "", "preferred provider: alphavantage, yahoo or stockanalysis")
	analyzeCmd.Flags().Bool("news", false, "attach recent headlines to the report")
	analyzeCmd.Flags().Int("news-limit", 0, "max headlines (default from config)")
	analyzeCmd.Flags().Float64("risk-free-rate", 0, "CAPM risk-free rate override, fractional (0.0411 = 4.11%)")
	analyzeCmd.Flags().Float64("market-return", 0, "CAPM expected market return override, fractional")
	analyzeCmd.Flags().Float64("terminal-growth", 0, "DCF terminal growth override, fractional")
}

// serveCmd starts the REST API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}
		eng := engine.New(reg, cfg, logger)

		srv := api.NewServer(cfg, reg, eng, logger)
		srv.SetVersion(version)

		addr := cfg.API.Addr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8900)")
}

// providersCmd lists the registered data providers.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered data providers and their models",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}

		infos := reg.List()
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

		line := strings.Repeat("═", 60)
		fmt.Println(line)
		fmt.Println("  Registered providers")
		fmt.Println(line)
		for _, info := range infos {
			fmt.Printf("\n  %s — %s\n", info.Name, info.Description)
			fmt.Printf("    Website: %s\n", info.Website)

			byCategory := make(map[string][]string)
			for _, m := range info.Models {
				name := string(m)
				if def, ok := reg.DefaultProvider(m); ok && def == info.Name {
					name += " (default)"
				}
				cat := provider.ModelCategory(m)
				byCategory[cat] = append(byCategory[cat], name)
			}
			for _, cat := range []string{"Fundamentals", "Market", "News"} {
				names := byCategory[cat]
				if len(names) == 0 {
					continue
				}
				sort.Strings(names)
				fmt.Printf("    %-14s %s\n", cat+":", strings.Join(names, ", "))
			}

			for _, cred := range info.Credentials {
				if cred.Required {
					fmt.Printf("    Requires: %s (env %s)\n", cred.Name, cred.EnvVar)
				}
			}
		}
		fmt.Println()
		fmt.Println(line)
		return nil
	},
}

// configCmd prints the effective configuration and masked API key status.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Repeat("═", 60)
		fmt.Println(line)
		fmt.Println("  fundalens — effective configuration")
		fmt.Println(line)

		fmt.Println("\n  Providers:")
		fmt.Printf("    Primary:          %s\n", cfg.Providers.Primary)
		fmt.Printf("    Yahoo:            %s\n", onOff(cfg.Providers.Yahoo.Enabled))
		fmt.Printf("    StockAnalysis:    %s\n", onOff(cfg.Providers.StockAnalysis.Enabled))

		fmt.Println("\n  Analysis:")
		fmt.Printf("    Risk-free rate:    %.4f\n", cfg.Analysis.RiskFreeRate)
		fmt.Printf("    Market return:     %.4f\n", cfg.Analysis.MarketReturn)
		fmt.Printf("    Terminal growth:   %.4f\n", cfg.Analysis.TerminalGrowth)
		fmt.Printf("    Projection years:  %d\n", cfg.Analysis.ProjectionYears)
		fmt.Printf("    Max growth years:  %d\n", cfg.Analysis.MaxGrowthYears)
		fmt.Printf("    Fallback growth:   %.4f\n", cfg.Analysis.FallbackGrowth)
		fmt.Printf("    Fallback discount: %.4f\n", cfg.Analysis.FallbackDiscount)

		fmt.Println("\n  Runtime:")
		fmt.Printf("    HTTP timeout:      %ds\n", cfg.HTTP.TimeoutSeconds)
		fmt.Printf("    API address:       %s\n", cfg.API.Addr)
		fmt.Printf("    News:              %s (limit %d, %d extra feeds)\n",
			onOff(cfg.News.Enabled), cfg.News.Limit, len(cfg.News.Feeds))
		fmt.Printf("    Logging:           %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)

		fmt.Println("\n  API keys:")
		for _, key := range config.CheckAPIKeys(cfg) {
			if key.IsSet {
				fmt.Printf("    ✅ %s: set (%s: %s)\n", key.Name, key.Source, key.Masked)
			} else {
				fmt.Printf("    ❌ %s: not set\n", key.Name)
			}
		}
		fmt.Println()
		fmt.Println(line)
		return nil
	},
}

// versionCmd prints build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fundalens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// buildRegistry registers all configured providers into a fresh registry.
func buildRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg); err != nil {
		return nil, err
	}
	return reg, nil
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
