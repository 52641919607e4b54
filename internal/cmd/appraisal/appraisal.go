// Package appraisal parses the appraisal CLI flags and values properties
// read from a file or stdin.
package appraisal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/louisbranch/appraisal/internal/platform/cmd"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/rules"
	"github.com/louisbranch/appraisal/internal/services/valuation/report"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage/sqlite"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
)

// ErrInvalidAttributes is returned when at least one input could not be
// appraised. Details are written to stderr before it is returned.
var ErrInvalidAttributes = errors.New("invalid property attributes")

// Config holds appraisal command configuration.
type Config struct {
	RulesPath string `env:"RULES_PATH"`
	ModelsDir string `env:"MODELS_DIR"`
	Simulate  bool   `env:"SIMULATE"`
	// DBPath optionally records every valuation in a SQLite log.
	DBPath   string `env:"DB_PATH"`
	Format   string `env:"FORMAT" envDefault:"text"`
	Lang     string `env:"LANG" envDefault:"en-US"`
	Batch    bool   `env:"BATCH"`
	Parallel int    `env:"PARALLEL"`
	// Input is the attribute file; "-" reads stdin.
	Input string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "rule configuration file (JSON or YAML)")
		fs.StringVar(&cfg.ModelsDir, "models", cfg.ModelsDir, "directory of <quantity>_model.json files")
		fs.BoolVar(&cfg.Simulate, "simulate", cfg.Simulate, "simulate predictions when no model is available")
		fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "record valuations in this SQLite database")
		fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: json, text or csv")
		fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "language of the text summary")
		fs.BoolVar(&cfg.Batch, "batch", cfg.Batch, "input is a list of attribute objects")
		fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "batch workers (0 uses GOMAXPROCS)")
	})
	if err != nil {
		return Config{}, err
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	switch cfg.Format {
	case FormatJSON, FormatText, FormatCSV:
	default:
		return Config{}, fmt.Errorf("format %q is not supported", cfg.Format)
	}
	if cfg.Parallel < 0 {
		return Config{}, fmt.Errorf("parallel must not be negative")
	}
	switch fs.NArg() {
	case 0:
		cfg.Input = "-"
	case 1:
		cfg.Input = fs.Arg(0)
	default:
		return Config{}, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	return cfg, nil
}

// Streams are the command's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run appraises the configured input and writes the report to streams.Out.
func Run(ctx context.Context, cfg Config, streams Streams) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAppraisal, func(ctx context.Context) error {
		return run(ctx, cfg, streams)
	})
}

func run(ctx context.Context, cfg Config, streams Streams) error {
	tag, err := language.Parse(cfg.Lang)
	if err != nil {
		return fmt.Errorf("parse language: %w", err)
	}
	data, err := readInput(cfg.Input, streams.In)
	if err != nil {
		return err
	}

	pipeline, closeStore, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Batch {
		inputs, err := decodeBatch(data, cfg.Input)
		if err != nil {
			return err
		}
		items, err := pipeline.AppraiseBatch(ctx, inputs, cfg.Parallel)
		if err != nil {
			return err
		}
		return writeBatch(streams, cfg.Format, tag, items)
	}

	input, err := decodeSingle(data, cfg.Input)
	if err != nil {
		return err
	}
	valuation, err := pipeline.Appraise(ctx, input)
	var invalid *app.ValidationError
	if errors.As(err, &invalid) {
		writeInvalid(streams.Err, "", invalid)
		return ErrInvalidAttributes
	}
	if err != nil {
		return err
	}
	return writeValuation(streams.Out, cfg.Format, tag, valuation)
}

func newPipeline(ctx context.Context, cfg Config) (*app.Pipeline, func(), error) {
	engine := rules.NewEngine(rules.LoadConfig(cfg.RulesPath))
	registry := predict.LoadRegistry(cfg.ModelsDir)
	for _, status := range registry.Status() {
		if !status.Available && cfg.ModelsDir != "" {
			log.Printf("model %s unavailable: %s", status.Quantity, status.Error)
		}
	}

	pipeline := app.NewPipeline(engine, registry, cfg.Simulate, nil)
	if strings.TrimSpace(cfg.DBPath) == "" {
		return pipeline, func() {}, nil
	}
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	pipeline.Store = store
	return pipeline, func() {
		if err := store.Close(); err != nil {
			log.Printf("close valuation store: %v", err)
		}
	}, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, fmt.Errorf("stdin is not available")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// isYAML reports whether the input should be decoded as YAML. Stdin is JSON.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decodeSingle(data []byte, path string) (map[string]any, error) {
	var input map[string]any
	if err := decode(data, path, &input); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	if input == nil {
		return nil, fmt.Errorf("decode attributes: input is empty")
	}
	return input, nil
}

func decodeBatch(data []byte, path string) ([]map[string]any, error) {
	var inputs []map[string]any
	if err := decode(data, path, &inputs); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return inputs, nil
}

func decode(data []byte, path string, target any) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, target)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeValuation(w io.Writer, format string, tag language.Tag, v app.Valuation) error {
	switch format {
	case FormatJSON:
		return report.WriteJSON(w, v)
	case FormatCSV:
		return report.WriteCSV(w, v)
	default:
		return report.WriteSummary(w, v, tag)
	}
}

func writeBatch(streams Streams, format string, tag language.Tag, items []app.BatchItem) error {
	invalidCount := 0
	for _, item := range items {
		if item.Invalid != nil {
			invalidCount++
			writeInvalid(streams.Err, fmt.Sprintf("item %d: ", item.Index), item.Invalid)
		}
	}

	if format == FormatJSON {
		if err := report.WriteJSON(streams.Out, items); err != nil {
			return err
		}
	} else {
		first := true
		for _, item := range items {
			if item.Valuation == nil {
				continue
			}
			if !first {
				if _, err := fmt.Fprintln(streams.Out); err != nil {
					return err
				}
			}
			first = false
			if err := writeValuation(streams.Out, format, tag, *item.Valuation); err != nil {
				return err
			}
		}
	}

	if invalidCount > 0 {
		return fmt.Errorf("%w: %d of %d items", ErrInvalidAttributes, invalidCount, len(items))
	}
	return nil
}

func writeInvalid(w io.Writer, prefix string, invalid *app.ValidationError) {
	for _, msg := range invalid.Errors {
		fmt.Fprintf(w, "%serror: %s\n", prefix, msg)
	}
	for _, msg := range invalid.Warnings {
		fmt.Fprintf(w, "%swarning: %s\n", prefix, msg)
	}
}
