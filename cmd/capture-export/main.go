// Command capture-export saves capture records from a JSON document as a CSV
// or XLSX file.
//
//	capture-export -in captures.json -out exports -prefix leads
//	curl -s $API/captures | capture-export -path data.items -format xlsx
//
// Defaults for -out, -prefix, -locale and -tz come from the CAPTURE_EXPORT_*
// environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidwall/gjson"

	"leadexport/internal/config"
	"leadexport/internal/delivery"
	apierrors "leadexport/internal/errors"
	"leadexport/internal/exporter"
	"leadexport/internal/infrastructure"
	"leadexport/internal/middleware"
	"leadexport/internal/services"
	"leadexport/pkg/contracts"
	api "leadexport/pkg/contracts/api/v1"
	"leadexport/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	in       string
	out      string
	prefix   string
	format   string
	path     string
	locale   string
	timezone string
	json     bool
	version  bool
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("capture-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "-", "input JSON file, - for stdin")
	fs.StringVar(&opts.out, "out", cfg.Export.OutputDir, "output directory")
	fs.StringVar(&opts.prefix, "prefix", cfg.Export.DefaultPrefix, "filename prefix")
	fs.StringVar(&opts.format, "format", string(domain.ExportFormatCSV), "csv | xlsx")
	fs.StringVar(&opts.path, "path", "", "gjson path of the record array inside the document")
	fs.StringVar(&opts.locale, "locale", cfg.Export.Locale, "locale used to render captured_at")
	fs.StringVar(&opts.timezone, "tz", cfg.Export.Timezone, "IANA time zone used to render captured_at")
	fs.BoolVar(&opts.json, "json", false, "print a JSON summary instead of the written path")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	err := fs.Parse(args)
	return opts, err
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}

	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetVersionString())
		return 0
	}

	// stdout carries the result, so logs always go to stderr.
	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	records, err := readRecords(opts.in, opts.path, stdin)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read records", slog.String("input", opts.in), slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	cfg.Export.Locale = opts.locale
	cfg.Export.Timezone = opts.timezone
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	formatter, err := exporter.NewLocaleFormatter(opts.locale, loc)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	exp := exporter.New(exporter.WithFormatter(formatter), exporter.WithLogger(logger))
	svc := services.NewExportService(exp, middleware.NewValidator(), services.ExportOptions{
		DefaultPrefix: cfg.Export.DefaultPrefix,
		MaxRecords:    cfg.Export.MaxRecords,
	}, logger)

	dir := delivery.NewDirectory(opts.out, logger)
	res, err := svc.Export(ctx, dir, api.ExportRequest{
		Records:        records,
		FilenamePrefix: opts.prefix,
		Format:         domain.ExportFormat(opts.format),
	})
	if err != nil {
		printError(stderr, err)
		return 1
	}

	if !res.Delivered {
		fmt.Fprintln(stderr, "no records to export, nothing written")
		return 0
	}

	if opts.json {
		summary := res.Summary()
		summary.Path = dir.LastPath()
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintln(stdout, dir.LastPath())
	return 0
}

// readRecords loads the record array from a file or stdin. path selects the
// array inside a wrapper document using gjson syntax.
func readRecords(in, path string, stdin io.Reader) ([]domain.CaptureRecord, error) {
	var (
		data []byte
		err  error
	)
	if in == "" || in == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(in)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return nil, errors.New("input is not valid JSON")
	}

	doc := gjson.ParseBytes(data)
	if path != "" {
		doc = gjson.GetBytes(data, path)
		if !doc.Exists() {
			return nil, fmt.Errorf("path %q not found in input", path)
		}
	}
	if doc.Type == gjson.Null {
		return nil, nil
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("expected a JSON array of records, got %s", doc.Type)
	}

	var records []domain.CaptureRecord
	if err := json.Unmarshal([]byte(doc.Raw), &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

func printError(w io.Writer, err error) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "error: %s\n", apiErr.Message)
	switch details := apiErr.Details.(type) {
	case apierrors.ValidationErrors:
		for _, fe := range details.Errors {
			fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
		}
	case string:
		fmt.Fprintf(w, "  %s\n", details)
	}
}
