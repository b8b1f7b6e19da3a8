package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prodscan/prodscan"
	"github.com/prodscan/prodscan/analyze"
	"github.com/prodscan/prodscan/gemini"
	"github.com/prodscan/prodscan/goquery"
	prodhttp "github.com/prodscan/prodscan/http"
	"github.com/prodscan/prodscan/onnx"
	prodslog "github.com/prodscan/prodscan/slog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Addr      string        `default:":8080" help:"HTTP listen address"`
	StaticDir string        `default:"static" help:"Directory with bundled front-end assets"`
	Timeout   time.Duration `short:"t" default:"10s" help:"Page fetch timeout"`
	Label     string        `default:"PRODUCT" help:"Target entity label"`
	RateLimit float64       `default:"0" help:"Analyze requests per second (0 disables limiting)"`
	Burst     int           `default:"5" help:"Rate limit burst size"`
	Verbose   bool          `short:"v" help:"Enable debug logging"`

	Oracle string `default:"onnx" enum:"onnx,gemini" help:"Entity oracle backend"`

	// ONNX oracle artifacts.
	Model        string `default:"ner_model/model.onnx" help:"Token-classification model path"`
	Tokenizer    string `default:"ner_model/tokenizer.json" help:"Tokenizer path"`
	ModelConfig  string `default:"ner_model/config.json" help:"Model config.json with id2label"`
	OrtLibrary   string `help:"onnxruntime shared library path (optional)"`
	GeminiAPIKey string `env:"GEMINI_API_KEY" help:"API key for the gemini oracle"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("prodscan"),
		kong.Description("Analyze a web page for product-name mentions"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// The oracle is loaded once at boot. A failed load degrades to the
	// unloaded oracle so the server still starts and /health reports
	// the state; requests then return empty results.
	oracle := m.openOracle(ctx, cli, logger)
	if closer, ok := oracle.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	fetcher := prodslog.NewLoggingFetcher(
		prodhttp.NewFetcher(prodhttp.WithTimeout(cli.Timeout)),
		logger,
	)
	scorer := analyze.NewScorer(prodslog.NewLoggingOracle(oracle, logger), cli.Label, logger)
	analyzer := analyze.NewAnalyzer(fetcher, goquery.NewExtractor(), scorer, logger)

	opts := []prodhttp.ServerOption{
		prodhttp.WithLogger(logger),
	}
	if cli.StaticDir != "" {
		opts = append(opts, prodhttp.WithStaticDir(cli.StaticDir))
	}
	if cli.RateLimit > 0 {
		opts = append(opts, prodhttp.WithRateLimit(cli.RateLimit, cli.Burst))
	}
	server := prodhttp.NewServer(cli.Addr, analyzer, oracle, opts...)

	logger.Info("starting server",
		"addr", cli.Addr,
		"oracle", cli.Oracle,
		"model_loaded", oracle.Loaded(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		return server.Close()
	})
	return g.Wait()
}

// openOracle builds the configured oracle backend, falling back to the
// unloaded oracle when the backend cannot be initialized.
func (m *Main) openOracle(ctx context.Context, cli *CLI, logger *slog.Logger) prodscan.EntityOracle {
	switch cli.Oracle {
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cli.GeminiAPIKey})
		if err != nil {
			logger.Error("failed to create gemini client", "err", err)
			return prodscan.UnloadedOracle{}
		}
		return gemini.NewOracle(client)
	default:
		oracle, err := onnx.NewOracle(onnx.Config{
			ModelPath:     cli.Model,
			TokenizerPath: cli.Tokenizer,
			LabelsPath:    cli.ModelConfig,
			LibraryPath:   cli.OrtLibrary,
		})
		if err != nil {
			logger.Error("failed to load NER model", "err", err)
			return prodscan.UnloadedOracle{}
		}
		return oracle
	}
}
