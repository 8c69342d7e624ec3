package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/transcriptr/internal/config"
	"github.com/dgallion1/transcriptr/internal/export"
	"github.com/dgallion1/transcriptr/internal/parser"
	"github.com/dgallion1/transcriptr/internal/pipeline"
	"github.com/dgallion1/transcriptr/internal/storage"
	"github.com/dgallion1/transcriptr/internal/transcript"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transcriptr",
		Short: "Turn academic transcripts into spreadsheets",
		Long: `Transcriptr reads a University of Tasmania academic transcript
(PDF, or text already extracted from one) and produces one row per unit:
code, name, mark, grade, credit points, degree, semester and year.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("noise-file", "", "Extra boilerplate patterns, one regular expression per line")
	rootCmd.PersistentFlags().Bool("pdftotext", true, "Fall back to pdftotext when the built-in PDF reader finds no text")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(inspectCmd())

	return rootCmd
}

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a transcript to CSV or XLSX",
		Long: `Convert a transcript and write its unit records to a file.

Without --output the file is written next to the input with the format's
extension, adding _1, _2, ... if that name is taken.

Example:
  transcriptr convert --input transcript.pdf
  transcriptr convert --input transcript.pdf --format xlsx --output units.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			formatName, _ := cmd.Flags().GetString("format")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			conv, err := extract(cmd, input)
			if err != nil {
				return err
			}

			if output == "" {
				dir := filepath.Dir(input)
				name, err := storage.Uniquify(dir, storage.ReplaceExt(filepath.Base(input), format.Extension()))
				if err != nil {
					return err
				}
				output = filepath.Join(dir, name)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.Write(f, format, conv.Records); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d unit records to %s\n", len(conv.Records), output)
			if n := conv.Count(transcript.DiagnosticUnmatched); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d line(s) need manual review:\n", n)
				for _, d := range conv.Diagnostics {
					if d.Kind == transcript.DiagnosticUnmatched {
						fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", d)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Transcript file (.pdf, .txt, .html, .docx)")
	cmd.Flags().StringP("output", "o", "", "Output file")
	cmd.Flags().StringP("format", "f", string(export.FormatCSV), "Output format (csv, xlsx)")

	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print parsed records and diagnostics as JSON",
		Long: `Parse a transcript and print the records and diagnostics as JSON
without writing any file.

Example:
  transcriptr inspect --input transcript.pdf
  transcriptr inspect --input transcript.pdf --diagnostics-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			diagnosticsOnly, _ := cmd.Flags().GetBool("diagnostics-only")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}

			conv, err := extract(cmd, input)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if diagnosticsOnly {
				return enc.Encode(conv.Diagnostics)
			}
			return enc.Encode(conv)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Transcript file (.pdf, .txt, .html, .docx)")
	cmd.Flags().Bool("diagnostics-only", false, "Only print diagnostics")

	return cmd
}

// extract reads and parses the input using the persistent flags.
func extract(cmd *cobra.Command, input string) (*pipeline.Conversion, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	noiseFile, _ := cmd.Flags().GetString("noise-file")
	pdftotext, _ := cmd.Flags().GetBool("pdftotext")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	patterns, err := config.Config{NoisePatternsFile: noiseFile}.NoisePatterns()
	if err != nil {
		return nil, err
	}
	noise, err := transcript.NewNoiseFilter(patterns)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}

	conv := pipeline.NewConverter(
		transcript.NewParser(noise, log),
		nil,
		nil,
		parser.Options{PDFFallbackPdftotext: pdftotext},
		log,
	)
	return conv.Extract(context.Background(), filepath.Base(input), data)
}
