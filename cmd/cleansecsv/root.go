package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oleg578/cleansecsv"
)

// Environment fallbacks for flags left unset. Precedence: flag > env > default.
const (
	envDelimiter = "CLEANSECSV_DELIMITER"
	envLogLevel  = "CLEANSECSV_LOG_LEVEL"
)

var (
	flagDelimiter   string
	flagOutput      string
	flagQuote       string
	flagCRLF        bool
	flagAlwaysQuote bool
	flagLogLevel    string
	flagQuiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "cleansecsv [flags] FILE",
	Short: "Clean up delimited data for line-oriented tools",
	Long: `cleansecsv parses delimited data and repairs each field so the output
can no longer confuse record or field structure:

  1. Delimiter bytes inside a field value become spaces.
  2. Line terminators inside a field value become spaces.
  3. Invalid UTF-8 bytes are each replaced with U+FFFD.

Each repaired field is reported on stderr with its record and field
number. Use "-" as FILE to read stdin, and "-o -" to write stdout.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCleanse(cmd, args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagDelimiter, "delimiter", "d", "\t", "field delimiter, a single byte")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `output path, "-" for stdout`)
	rootCmd.Flags().StringVar(&flagQuote, "quote", `"`, "quote character, a single byte")
	rootCmd.Flags().BoolVar(&flagCRLF, "crlf", false, `terminate output records with \r\n`)
	rootCmd.Flags().BoolVar(&flagAlwaysQuote, "always-quote", false, "quote every output field")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress repair reporting")
}

func runCleanse(cmd *cobra.Command, input string) error {
	delimiter := flagDelimiter
	if !cmd.Flags().Changed("delimiter") {
		if v, ok := os.LookupEnv(envDelimiter); ok {
			delimiter = v
		}
	}
	dialect, err := buildDialect(delimiter, flagQuote, flagCRLF, flagAlwaysQuote)
	if err != nil {
		return err
	}

	logger, err := newLogger(resolveLogLevel(flagLogLevel))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	src, err := openInput(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	dst, err := openOutput(flagOutput)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	var reporter cleansecsv.Reporter = cleansecsv.NewLogReporter(logger)
	if flagQuiet {
		reporter = cleansecsv.NopReporter{}
	}

	logger.Debug("starting run",
		zap.String("input", input),
		zap.String("output", flagOutput),
		zap.String("delimiter", delimiter),
	)

	if err := cleansecsv.Run(cmd.Context(), src, dst, dialect, reporter); err != nil {
		_ = dst.Close()
		if !isBrokenPipe(err) {
			logger.Error("run failed", zap.Error(err))
		}
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// buildDialect validates the raw flag values and assembles the dialect.
func buildDialect(delimiter, quote string, crlf, alwaysQuote bool) (cleansecsv.Dialect, error) {
	if len(delimiter) != 1 {
		return cleansecsv.Dialect{}, fmt.Errorf("delimiter must be a single byte, got %q", delimiter)
	}
	if len(quote) != 1 {
		return cleansecsv.Dialect{}, fmt.Errorf("quote must be a single byte, got %q", quote)
	}
	d := cleansecsv.Dialect{
		Comma:       delimiter[0],
		Quote:       quote[0],
		UseCRLF:     crlf,
		AlwaysQuote: alwaysQuote,
	}
	if err := d.Validate(); err != nil {
		return cleansecsv.Dialect{}, err
	}
	return d, nil
}

func resolveLogLevel(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envLogLevel); v != "" {
		return v
	}
	return "info"
}

// newLogger builds the stderr console logger carrying the audit trail:
// timestamp, severity, source tag, message, then structured fields.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core).Named("cleansecsv").With(zap.String("run_id", uuid.NewString())), nil
}

// openInput resolves path to a readable stream, "-" meaning stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// openOutput resolves path to a writable sink, "-" meaning stdout.
// Stdout is not closed on our way out.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
