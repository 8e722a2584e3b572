// Package main provides the coordmatch command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/coordmatch/internal/discover"
	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/output"
	"github.com/inodb/coordmatch/internal/run"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitError carries a process exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(viper.New(), stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsage
}

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "coordmatch <inputDirectory> [outputDirectory]",
		Short: "Match genomic coordinates to GTF exon and intron regions",
		Long: `Walks <inputDirectory> for coordinate files (.txt, "chrom<TAB>position" per line)
and annotation files (.gtf), and reports for every coordinate the first exon
containing it, else the first intron, else no match.

Writes outfile.txt (the report) and logFile.txt (the diagnostic trace) to
[outputDirectory], default the current directory. Both are overwritten.`,
		Example: `  coordmatch data/
  coordmatch data/ results/
  coordmatch --on-parse-error abort --merge reject data/ results/
  coordmatch --verify data/`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := runMatch(v, args, stdout, stderr); code != ExitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.coordmatch.yaml)")
	flags.String("sort-order", "tuple", "Region sort key: tuple (chrom, start) or concat (legacy text order)")
	flags.String("on-parse-error", "skip", "Malformed line policy: skip or abort")
	flags.String("merge", "all", "Policy for several files of one kind: all, first or reject")
	flags.Int("progress-every", index.DefaultProgressEvery, "Print a progress dot every N scanned regions (0 disables)")
	flags.Bool("verify", false, "Cross-check every match with DuckDB and write verify.txt")
	flags.Bool("verify-all", false, "List every coordinate in verify.txt, not only disagreements")
	flags.BoolP("verbose", "v", false, "Log debug detail")

	for key, name := range map[string]string{
		"sort_order":     "sort-order",
		"on_parse_error": "on-parse-error",
		"merge":          "merge",
		"progress_every": "progress-every",
		"verify":         "verify",
		"verify_all":     "verify-all",
		"verbose":        "verbose",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(newConfigCmd(v, stdout))

	return cmd
}

// settings is the resolved configuration of a matching run.
type settings struct {
	order         index.Order
	loader        run.Options
	progressEvery int
	verify        bool
	verifyAll     bool
	level         zapcore.Level
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	var err error

	if s.order, err = index.ParseOrder(v.GetString("sort_order")); err != nil {
		return s, err
	}
	if s.loader.ParsePolicy, err = run.ParseParsePolicy(v.GetString("on_parse_error")); err != nil {
		return s, err
	}
	if s.loader.MergePolicy, err = run.ParseMergePolicy(v.GetString("merge")); err != nil {
		return s, err
	}
	s.progressEvery = v.GetInt("progress_every")
	s.verify = v.GetBool("verify")
	s.verifyAll = v.GetBool("verify_all")
	s.level = zapcore.InfoLevel
	if v.GetBool("verbose") {
		s.level = zapcore.DebugLevel
	}

	if s.verify && s.order != index.OrderTuple {
		return s, fmt.Errorf("--verify requires --sort-order tuple")
	}
	return s, nil
}

// runMatch executes a matching run and returns the process exit code.
func runMatch(v *viper.Viper, args []string, stdout, stderr io.Writer) int {
	cfg, err := loadSettings(v)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsage
	}

	outDir := "."
	if len(args) > 1 {
		outDir = args[1]
	}

	// Without an input directory there is no report to write; keep any
	// previous outfile.txt.
	var streams *output.Streams
	if len(args) == 0 {
		streams, err = output.OpenLog(outDir, stderr, cfg.level)
	} else {
		streams, err = output.OpenStreams(outDir, stderr, stdout, cfg.level)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	defer streams.Close()
	log := streams.Logger

	log.Info("began processing files")
	defer log.Info("finished processing files")

	if len(args) == 0 {
		log.Error("no data file directory specified, program halted")
		return ExitUsage
	}

	inputDir := args[0]
	log.Info("input file directory",
		zap.String("dir", inputDir),
		zap.String("output_dir", outDir),
		zap.Stringer("sort_order", cfg.order),
		zap.Stringer("on_parse_error", cfg.loader.ParsePolicy),
		zap.Stringer("merge", cfg.loader.MergePolicy))

	if err := discover.CheckRoot(inputDir); err != nil {
		log.Error("cannot process input directory", zap.Error(err))
		return ExitError
	}

	rc := run.NewContext(cfg.order)
	loader := run.NewLoader(cfg.loader)
	loader.SetLogger(log)
	if err := loader.Load(rc, discover.Walk(inputDir)); err != nil {
		log.Error("loading aborted", zap.Error(err))
		return ExitError
	}
	rc.LogSummary(log)

	if !rc.Ready() {
		log.Warn("chromosome map not processed due to missing information/file(s)",
			zap.Int("coordinate_files", rc.Files[discover.KindCoordinates]),
			zap.Int("gtf_files", rc.Files[discover.KindAnnotations]))
		return ExitError
	}

	log.Info("processing chromosome map",
		zap.Int("coordinates", len(rc.Coordinates)),
		zap.Int("regions", rc.Store.Len()),
		zap.Strings("chromosomes", rc.Store.Chromosomes()))
	dots := &progressDots{w: stderr}
	proc := run.NewProcessor()
	proc.SetLogger(log)
	proc.SetProgress(cfg.progressEvery, dots.tick)

	_, err = proc.Run(rc.Coordinates, rc.Store, streams.Report)
	dots.done()
	if err != nil {
		log.Error("writing report failed", zap.Error(err))
		return ExitError
	}

	if cfg.verify {
		return runVerify(rc, outDir, cfg.verifyAll, log, stderr)
	}
	return ExitSuccess
}

func runVerify(rc *run.Context, outDir string, showAll bool, log *zap.Logger, stderr io.Writer) int {
	path := filepath.Join(outDir, output.VerifyFileName)
	f, err := os.Create(path)
	if err != nil {
		log.Error("create verify file", zap.Error(err))
		return ExitError
	}
	defer f.Close()

	vw := output.NewVerifyWriter(f, showAll)
	mismatches, err := run.Verify(rc, vw, log)
	if err != nil {
		log.Error("verification failed", zap.Error(err))
		return ExitError
	}
	vw.WriteSummary(stderr)

	if mismatches > 0 {
		log.Warn("scan and SQL disagree", zap.Int("coordinates", mismatches), zap.String("details", path))
		return ExitError
	}
	return ExitSuccess
}

// progressDots prints a dot for every progress tick so long scans show activity.
type progressDots struct {
	w       io.Writer
	printed bool
}

func (p *progressDots) tick() {
	fmt.Fprint(p.w, ".")
	p.printed = true
}

func (p *progressDots) done() {
	if p.printed {
		fmt.Fprintln(p.w)
	}
}
