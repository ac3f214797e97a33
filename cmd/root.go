package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/selby-botany/gadm-names/internal/config"
)

var cfg *config.Config

// usageError marks invalid command-line usage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "gadm-names",
	Short: "Extract location name tuples from a GADM GeoJSON file",
	Long: `Reads a GADM GeoJSON feature collection and writes one CSV row per
administrative division: iso_3, continent, subregion, country and the level 1
(state) through level 5 names. Country metadata comes from countries.csv in
the task directory; features whose GID_0 is not listed there are skipped.

Input is read from stdin unless --input is given and may be plain, .gz, .zst
or a GADM .zip download. Output is written to stdout unless --output is given.

Examples:
  gadm-names -i gadm41_AFG_2.json -o afg.csv
  gadm-names --no-header < gadm41_FRA_5.json.gz`,
	Args:          noArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if copyrightRequested(cmd) {
			return nil
		}

		c, err := config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := validateLogFile(cfg.Log.File); err != nil {
			return err
		}
		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.ReplaceGlobals(zap.L().With(zap.String("request_id", uuid.NewString())))
		zap.L().Debug("options",
			zap.String("command", cmd.CommandPath()),
			zap.Strings("argv", os.Args),
			zap.Any("config", cfg),
		)

		return nil
	},
	RunE: runExtract,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("task-dir", "", "directory holding countries.csv (default: the executable's directory)")
	pf.String("reference", "", "country reference CSV (default: <task-dir>/countries.csv)")
	pf.StringP("log-file", "L", "", "log file; stderr or stdout log to the terminal (default: ~/.gqc/log/<timestamp>.log)")
	pf.StringP("log-level", "l", "", "lowest severity to log: debug, info, warn, error, fatal or quiet (default: debug)")
	pf.String("log-format", "", "log encoding: json or console (default: json)")

	f := rootCmd.Flags()
	f.StringP("input", "i", "", "GADM GeoJSON input file (default: stdin)")
	f.StringP("output", "o", "", "CSV output file (default: stdout)")
	f.BoolP("header", "f", true, "write the column names as the first output line")
	f.BoolP("no-header", "n", false, "do not write a header line")
	f.Bool("crlf", false, "end output lines with \\r\\n")
	f.String("decode-errors", "", "malformed input JSON handling: warn (empty output, exit 0) or fail (default: warn)")
	f.Bool("copyright", false, "display the copyright and exit")

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// flagAliases are the long option spellings accepted for compatibility.
var flagAliases = map[string]string{
	"input-file":           "input",
	"output-file":          "output",
	"first-line-is-header": "header",
	"noheader":             "no-header",
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}
	return pflag.NormalizedName(name)
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &usageError{err: fmt.Errorf("unexpected argument %q for %q", args[0], cmd.CommandPath())}
	}
	return nil
}

func copyrightRequested(cmd *cobra.Command) bool {
	ok, err := cmd.Flags().GetBool("copyright")
	return err == nil && ok
}

// validateLogFile checks a file log target before the logger opens it.
func validateLogFile(path string) error {
	switch strings.ToLower(path) {
	case "", "stderr", "stdout":
		return nil
	}
	return validateWritable("log file", path)
}

// exitCode maps an Execute error to the process exit status.
func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code := exitCode(err)
		if code == 2 {
			fmt.Fprintln(os.Stderr, "Run 'gadm-names --help' for usage.")
		} else {
			zap.L().Error("gadm-names failed", zap.Error(eris.Wrap(err, "gadm-names")))
		}
		_ = zap.L().Sync()
		os.Exit(code)
	}
}
