package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selby-botany/gadm-names/internal/config"
	"github.com/selby-botany/gadm-names/internal/gadm"
	"github.com/selby-botany/gadm-names/internal/source"
	"github.com/selby-botany/gadm-names/internal/validate"
)

func runExtract(cmd *cobra.Command, _ []string) error {
	if copyrightRequested(cmd) {
		_, err := fmt.Fprint(cmd.OutOrStdout(), copyrightText)
		return err
	}

	if err := validateRunPaths(cfg); err != nil {
		return err
	}

	stats, err := gadm.Run(gadm.Options{
		Input:             cfg.Input,
		Output:            cfg.Output,
		Reference:         cfg.Reference.File,
		ReferenceEncoding: cfg.Reference.Encoding,
		Header:            cfg.Header,
		CRLF:              cfg.CRLF,
		FailOnDecodeError: cfg.DecodeErrors == config.DecodeFail,
	})
	if err != nil {
		return eris.Wrap(err, "extract")
	}

	zap.L().Debug("extract: done",
		zap.Int("features", stats.Features),
		zap.Int("matched", stats.Matched),
		zap.Int("skipped", stats.Skipped),
	)
	return nil
}

// validateRunPaths rejects unreadable input and unwritable output before any
// output is produced.
func validateRunPaths(c *config.Config) error {
	if c.Input != source.Stdio {
		if err := validate.FileReadable(c.Input); err != nil {
			return eris.Wrap(err, "input file")
		}
	}
	if c.Output != source.Stdio {
		if err := validateWritable("output file", c.Output); err != nil {
			return err
		}
	}
	if err := validate.FileReadable(c.Reference.File); err != nil {
		return eris.Wrap(err, "reference file")
	}
	return nil
}

func validateWritable(what, path string) error {
	if err := validate.FileWritable(path); err != nil {
		return eris.Wrap(err, what)
	}
	return nil
}
