package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/portion/internal/logger"
	"github.com/jmylchreest/portion/internal/output"
	"github.com/jmylchreest/portion/pkg/fetcher"
	"github.com/jmylchreest/portion/pkg/portion"
	"github.com/jmylchreest/portion/pkg/quantity"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Scrape recipe pages and store single-serving ingredients",
	Long: `Scrape recipe pages, read their schema.org Recipe metadata and store
each recipe with ingredient quantities divided by the recipe yield.

Pages are processed one at a time in the order given. A page that fails to
load or carries no recipe is logged and skipped.

Examples:
  # Default: headless Chrome, append to rec.csv
  portion scrape -u "https://www.food.com/recipe/palak-paneer-13965"

  # Plain HTTP fetch, JSON to stdout, decimal quantities
  portion scrape --fetch-mode static --format json --quantity-format decimal \
      https://example.com/recipe

  # URL list from a file, one page every two seconds
  portion scrape --input urls.txt --delay 2s --format sqlite -o recipes.db`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// URL inputs
	flags.StringSliceP("url", "u", nil, "URL(s) to scrape (can be repeated)")
	flags.StringP("input", "i", "", "file with URLs (YAML list or one per line)")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: rec.csv for csv, stdout for json/jsonl/yaml)")
	flags.String("format", string(output.FormatCSV), "output format: "+output.FormatList())
	flags.Bool("detailed", false, "write full records (url, yield, servings) for json/jsonl/yaml")
	flags.Bool("summary", true, "print a summary table when done")

	// Scaling settings
	flags.Int("servings", 1, "number of servings to scale ingredients to")
	flags.String("quantity-format", "fraction", "quantity format: fraction, decimal")

	// Fetch settings
	flags.String("fetch-mode", string(fetcher.ModeDynamic), "fetch mode: static, dynamic")
	flags.Duration("timeout", 30*time.Second, "page load timeout")
	flags.Duration("wait", 3*time.Second, "settle time after page load (dynamic only)")
	flags.String("wait-for", "", "CSS selector to wait for before reading the page (dynamic only)")
	flags.String("max-body-size", "0", "max response size, e.g. 10MB (static only, 0=collector default)")
	flags.String("chrome-path", "", "path to the Chrome binary (dynamic only)")
	flags.String("user-agent", "", "override the browser user agent")
	flags.Duration("delay", 0, "minimum delay between pages")

	// Bind to viper
	for key, name := range map[string]string{
		"output":          "output",
		"format":          "format",
		"detailed":        "detailed",
		"servings":        "servings",
		"quantity_format": "quantity-format",
		"fetch_mode":      "fetch-mode",
		"timeout":         "timeout",
		"wait":            "wait",
		"wait_for":        "wait-for",
		"max_body_size":   "max-body-size",
		"chrome_path":     "chrome-path",
		"user_agent":      "user-agent",
		"delay":           "delay",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("scrape command starting")

	// Collect URLs
	urls, _ := cmd.Flags().GetStringSlice("url")
	urls = append(urls, args...)
	if inputPath, _ := cmd.Flags().GetString("input"); inputPath != "" {
		fromFile, err := readURLFile(inputPath)
		if err != nil {
			logger.Error("failed to load input file", "path", inputPath, "error", err)
			return err
		}
		logger.Debug("loaded urls from file", "path", inputPath, "count", len(fromFile))
		urls = append(urls, fromFile...)
	}
	urls = cleanURLs(urls)
	if len(urls) == 0 {
		return cmd.Help()
	}

	render, err := rendererFor(viper.GetString("quantity_format"))
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	// Max body size (0 or empty means collector default)
	var maxBodySize int
	if s := strings.TrimSpace(viper.GetString("max_body_size")); s != "" && s != "0" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			logger.Error("invalid max-body-size", "value", s, "error", err)
			return err
		}
		maxBodySize = int(n)
	}

	cfg := fetcher.DefaultConfig()
	cfg.Timeout = viper.GetDuration("timeout")
	cfg.MaxBodySize = maxBodySize
	cfg.ChromePath = viper.GetString("chrome_path")
	if ua := viper.GetString("user_agent"); ua != "" {
		cfg.UserAgent = ua
	}

	mode := fetcher.Mode(viper.GetString("fetch_mode"))
	f, err := fetcher.New(mode, cfg)
	if err != nil {
		logger.Error("failed to create fetcher", "mode", mode, "error", err)
		return err
	}
	// Note: fetcher is closed by runner.Close()

	runID := uuid.NewString()
	sink, err := output.Open(format, output.Options{
		Path:     viper.GetString("output"),
		Stdout:   cmd.OutOrStdout(),
		RunID:    runID,
		Detailed: viper.GetBool("detailed"),
	})
	if err != nil {
		_ = f.Close()
		logger.Error("failed to open output", "format", format, "error", err)
		return err
	}

	runner, err := portion.New(f, sink,
		portion.WithRunID(runID),
		portion.WithServings(viper.GetInt("servings")),
		portion.WithDelay(viper.GetDuration("delay")),
		portion.WithRenderer(render),
		portion.WithFetchOptions(fetcher.Options{
			WaitForSelector: viper.GetString("wait_for"),
			WaitDuration:    viper.GetDuration("wait"),
		}),
	)
	if err != nil {
		_ = f.Close()
		_ = sink.Close()
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer func() { _ = runner.Close() }()

	logger.Info("scraping", "pages", len(urls), "mode", f.Type(), "format", format, "run_id", runID)
	sum := runner.Run(ctx, urls)

	if err := sink.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to finalize output", "format", format, "error", err)
		return err
	}

	if show, _ := cmd.Flags().GetBool("summary"); show && !viper.GetBool("quiet") {
		fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(sum))
	}
	return nil
}

// rendererFor maps a --quantity-format value to a quantity formatter.
func rendererFor(name string) (func(quantity.Quantity) string, error) {
	switch strings.ToLower(name) {
	case "", "fraction":
		return quantity.Render, nil
	case "decimal":
		return quantity.RenderDecimal, nil
	default:
		return nil, fmt.Errorf("unknown quantity format: %s (use 'fraction' or 'decimal')", name)
	}
}
