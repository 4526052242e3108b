package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Bixxler/nextech/internal/config"
	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/server"
	"github.com/Bixxler/nextech/internal/story"
	"github.com/Bixxler/nextech/internal/ui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	logLevel   string
	quiet      bool

	fetchPage   int
	fetchSize   int
	fetchQuery  string
	fetchFormat string

	openWith string
)

var rootCmd = &cobra.Command{
	Use:           "nextech",
	Short:         "Newest Hacker News stories, cached",
	Long:          "nextech fetches the newest Hacker News stories, keeps a short-lived cache of them and serves them over HTTP or in the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the story list over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(debuglog.LevelInfo)
		if err != nil {
			return err
		}
		defer debuglog.Close()

		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderBanner(Version))
		}

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		srv := server.New(cfg.Server, p.service,
			server.WithIndex(p.index),
			server.WithMetrics(p.metrics.Handler()),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the story list once and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(debuglog.LevelOff)
		if err != nil {
			return err
		}
		defer debuglog.Close()

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		stories, err := p.service.GetStories(cmd.Context())
		if err != nil {
			return err
		}
		return printStories(cmd.OutOrStdout(), stories)
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the story list interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(debuglog.LevelOff)
		if err != nil {
			return err
		}
		defer debuglog.Close()

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		opener := ui.NewOpener(openWith)
		browser := ui.NewBrowser(p.service.GetStories, opener.Open)
		if _, err := tea.NewProgram(browser, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running browser: %w", err)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/nextech/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		path := config.DefaultPath()
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			return
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nextech %s\n", Version)
		fmt.Println("Hacker News new stories service")
		fmt.Println("github.com/Bixxler/nextech")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, off); overrides config")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")

	fetchCmd.Flags().IntVar(&fetchPage, "page", 1, "Page to print (1-based)")
	fetchCmd.Flags().IntVar(&fetchSize, "size", story.DefaultPageSize, "Stories per page")
	fetchCmd.Flags().StringVar(&fetchQuery, "query", "", "Only stories whose title or url contains this text")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "text", "Output format: text, markdown or json")

	browseCmd.Flags().StringVar(&openWith, "open-with", "", "Command used to open story URLs")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(serveCmd, fetchCmd, browseCmd, configCmd, versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and sets up logging. fallback is the
// level used when neither the flag nor a configured level is set.
func loadConfig(fallback debuglog.LogLevel) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := fallback
	switch {
	case logLevel != "":
		level = debuglog.ParseLogLevel(logLevel)
	case cfg.Log.File != "" || fallback != debuglog.LevelOff:
		level = debuglog.ParseLogLevel(cfg.Log.Level)
	}

	if cfg.Log.File != "" {
		err = debuglog.Setup(level, cfg.Log.File)
	} else {
		err = debuglog.Setup(level)
	}
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	return cfg, nil
}

func printStories(w io.Writer, stories []story.Story) error {
	filtered := story.Filter(stories, fetchQuery)
	page := story.Paginate(filtered, fetchPage, fetchSize)

	switch fetchFormat {
	case "text", "":
		fmt.Fprintln(w, ui.RenderStories(page, 0))
	case "markdown", "md":
		out, err := ui.RenderMarkdown(page, 0)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	default:
		return fmt.Errorf("unknown format %q", fetchFormat)
	}
	return nil
}
