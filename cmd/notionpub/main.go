// Command notionpub builds and previews a static blog whose posts live in a
// Notion database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eringen/notionpub"
	"github.com/eringen/notionpub/scaffold"
)

// version is set at build time via ldflags.
var version = "dev"

type cli struct {
	Config   string `short:"c" help:"Configuration file path" default:"notionpub.yaml" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`

	Build struct {
		Offline bool `help:"Render from the stored snapshot without calling Notion"`
	} `cmd:"" help:"Fetch posts from Notion and generate the site"`

	Serve struct {
		Addr         string        `help:"Listen address (overrides the config)"`
		RebuildEvery time.Duration `help:"Rebuild the site on this interval, 0 disables (overrides the config)"`
		Build        bool          `help:"Build once before serving"`
	} `cmd:"" help:"Serve the generated site, drafts preview and metrics"`

	Init struct {
		Dir   string `help:"Directory to write the starter files to" default:"." type:"path"`
		Name  string `help:"Site name (defaults to the directory name)"`
		Force bool   `help:"Overwrite existing files"`
	} `cmd:"" help:"Write a starter notionpub.yaml and .env.example"`

	Version struct{} `cmd:"" help:"Print the notionpub version"`
}

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "notionpub: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("notionpub"),
		kong.Description("A static blog generator backed by a Notion database."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var level slog.Level
	if err := level.UnmarshalText([]byte(args.LogLevel)); err != nil {
		return err
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	switch kctx.Command() {
	case "build":
		return runBuild(ctx, logger, args)
	case "serve":
		return runServe(ctx, logger, args)
	case "init":
		return runInit(args)
	case "version":
		fmt.Printf("notionpub %s\n", version)
		return nil
	default:
		return fmt.Errorf("unknown command %q", kctx.Command())
	}
}

func runBuild(ctx context.Context, logger *slog.Logger, args cli) error {
	cfg, err := notionpub.LoadConfig(args.Config)
	if err != nil {
		return err
	}
	app := notionpub.New(cfg, notionpub.WithLogger(logger))
	defer app.Close()

	m, err := app.Build(ctx, notionpub.BuildOptions{Offline: args.Build.Offline})
	if err != nil {
		return err
	}
	logger.Info("site written", "dir", cfg.OutputDir, "pages", len(m.Pages))
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, args cli) error {
	cfg, err := notionpub.LoadConfig(args.Config)
	if err != nil {
		return err
	}
	if args.Serve.Addr != "" {
		cfg.Addr = args.Serve.Addr
	}
	if args.Serve.RebuildEvery > 0 {
		cfg.RebuildEvery = args.Serve.RebuildEvery
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app := notionpub.New(cfg, notionpub.WithLogger(logger), notionpub.WithMetrics(reg))
	defer app.Close()

	if args.Serve.Build {
		if _, err := app.Build(ctx, notionpub.BuildOptions{}); err != nil {
			return err
		}
	}
	return app.Serve(ctx)
}

func runInit(args cli) error {
	name := args.Init.Name
	if name == "" {
		name = scaffold.ToTitle(filepath.Base(args.Init.Dir))
	}
	created, err := scaffold.Write(args.Init.Dir, scaffold.Data{
		SiteName: name,
		URL:      notionpub.EnvOr("SITE_URL", "http://localhost:3000"),
	}, args.Init.Force)
	for _, p := range created {
		fmt.Printf("  created %s\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Println("  cp .env.example .env   # add NOTION_TOKEN and NOTION_DATABASE_ID")
	fmt.Println("  notionpub build")
	fmt.Println("  notionpub serve")
	return nil
}
