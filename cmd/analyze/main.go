package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"liftline/internal/config"
	"liftline/internal/infrastructure"
	"liftline/internal/services"
	"liftline/internal/validation"
	"liftline/pkg/contracts/domain"
)

// inputList collects repeated -in flags.
type inputList []string

func (l *inputList) String() string { return strings.Join(*l, ",") }

func (l *inputList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var inputs inputList
	flag.Var(&inputs, "in", "input workbook file or directory with .xlsx exports (repeatable)")
	outDir := flag.String("out", "", "output directory for rendered timelines (defaults to alongside each input)")
	rulesFile := flag.String("rules", "", "rule configuration file (defaults to the embedded rule set)")
	threshold := flag.Int("threshold", 0, "delay threshold in minutes, 0 uses the rule file value")
	debug := flag.Bool("debug", false, "write a <name>.debug.json report for each workbook")
	concurrency := flag.Int("concurrency", 4, "number of workbooks analyzed in parallel")
	flag.Parse()

	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -in workbook or directory is required")
		flag.Usage()
		os.Exit(2)
	}
	if *concurrency < 1 {
		*concurrency = 1
	}
	if *threshold < 0 || *threshold > 1440 {
		fmt.Fprintln(os.Stderr, "threshold must be between 0 and 1440 minutes")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *rulesFile != "" {
		cfg.Analysis.RulesFile = *rulesFile
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	service, err := services.NewAnalysisServiceWithLogger(cfg, logger, nil)
	if err != nil {
		logger.Error("Failed to initialize analysis service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validator := validation.NewFileValidator(logger)
	paths, err := expandInputs(validator, inputs)
	if err != nil {
		logger.Error("Failed to resolve inputs", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Warn("No workbooks matched the requested inputs")
		fmt.Println("No workbooks to analyze")
		return
	}

	if *outDir != "" {
		if err := validator.ValidateOutputDirectory(*outDir); err != nil {
			logger.Error("Failed to prepare output directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	opts := domain.AnalysisOptions{
		DelayThresholdMinutes: *threshold,
		IncludeDebug:          *debug,
	}

	logger.Info("Starting timeline analysis",
		slog.Int("workbooks", len(paths)),
		slog.Int("concurrency", *concurrency),
		slog.Int("threshold_minutes", *threshold),
		slog.Bool("debug", *debug))

	// A single workbook without -out renders the timeline to stdout
	if len(paths) == 1 && *outDir == "" {
		if err := analyzeToStdout(service, paths[0], opts, *debug); err != nil {
			logger.Error("Analysis failed",
				slog.String("workbook", paths[0]),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Found %d workbooks\n", len(paths))

	var failed atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := service.AnalyzeFile(ctx, path, opts)
			if err != nil {
				logger.Error("Analysis failed",
					slog.String("workbook", path),
					slog.String("error", err.Error()))
				failed.Add(1)
				return nil
			}

			if err := writeOutputs(path, *outDir, result, *debug); err != nil {
				logger.Error("Failed to write outputs",
					slog.String("workbook", path),
					slog.String("error", err.Error()))
				failed.Add(1)
				return nil
			}

			fmt.Printf("Analyzed %s (%d rows)\n", filepath.Base(path), len(result.Rows))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Analysis aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if n := failed.Load(); n > 0 {
		logger.Error("Analysis finished with failures",
			slog.Int64("failed", n),
			slog.Int("total", len(paths)))
		fmt.Printf("Analyzed %d of %d workbooks\n", int64(len(paths))-n, len(paths))
		os.Exit(1)
	}

	logger.Info("Analysis complete", slog.Int("workbooks", len(paths)))
	fmt.Println("All workbooks analyzed")
}

// expandInputs resolves -in arguments into a sorted, deduplicated list of
// workbook paths. Directories are scanned for .xlsx exports, skipping Office
// lock files.
func expandInputs(validator *validation.FileValidator, inputs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", in, err)
		}

		if info.IsDir() {
			if err := validator.ValidateInputDirectory(in, "*"+config.UploadFileExtension); err != nil {
				return nil, err
			}
			matches, err := filepath.Glob(filepath.Join(in, "*"+config.UploadFileExtension))
			if err != nil {
				return nil, fmt.Errorf("failed to scan directory %s: %w", in, err)
			}
			for _, m := range matches {
				if strings.HasPrefix(filepath.Base(m), "~$") {
					continue
				}
				add(m)
			}
			continue
		}

		if err := validator.ValidateWorkbookFile(in); err != nil {
			return nil, err
		}
		add(in)
	}

	sort.Strings(paths)
	return paths, nil
}

func analyzeToStdout(service *services.AnalysisService, path string, opts domain.AnalysisOptions, debug bool) error {
	result, err := service.AnalyzeFile(context.Background(), path, opts)
	if err != nil {
		return err
	}

	if debug {
		if err := writeDebugReport(debugPath(path, ""), result); err != nil {
			return err
		}
	}

	fmt.Println(result.Text)
	return nil
}

func writeOutputs(input, outDir string, result *domain.AnalysisResult, debug bool) error {
	if err := os.WriteFile(timelinePath(input, outDir), []byte(result.Text+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write timeline: %w", err)
	}
	if debug {
		if err := writeDebugReport(debugPath(input, outDir), result); err != nil {
			return err
		}
	}
	return nil
}

func writeDebugReport(path string, result *domain.AnalysisResult) error {
	payload, err := json.MarshalIndent(result.Debug, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode debug report: %w", err)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write debug report: %w", err)
	}
	return nil
}

func timelinePath(input, outDir string) string {
	return outputPath(input, outDir, ".txt")
}

func debugPath(input, outDir string) string {
	return outputPath(input, outDir, ".debug.json")
}

func outputPath(input, outDir, suffix string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem+suffix)
}
