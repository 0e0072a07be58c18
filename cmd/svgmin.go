package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgpipe/internal/svgmin"
)

var (
	svgWrite        bool
	svgPrecision    int
	svgKeepComments bool
	svgKeepMetadata bool
	svgKeepStyles   bool
	svgKeepNumbers  bool
)

var svgminCmd = &cobra.Command{
	Use:   "svgmin <files...>",
	Short: "Minify SVG icon markup",
	Long: `Runs the deterministic SVG text-rewrite pass: strips comments,
metadata elements, empty groups, and redundant default attributes;
minifies inline styles; rounds numeric precision; collapses whitespace.

Without --write the minified markup goes to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSvgmin,
}

func init() {
	svgminCmd.Flags().BoolVarP(&svgWrite, "write", "w", false, "rewrite files in place")
	svgminCmd.Flags().IntVar(&svgPrecision, "precision", 2, "decimal places kept for numeric literals")
	svgminCmd.Flags().BoolVar(&svgKeepComments, "keep-comments", false, "keep XML comments")
	svgminCmd.Flags().BoolVar(&svgKeepMetadata, "keep-metadata", false, "keep metadata/title/desc elements")
	svgminCmd.Flags().BoolVar(&svgKeepStyles, "keep-styles", false, "skip inline style minification")
	svgminCmd.Flags().BoolVar(&svgKeepNumbers, "keep-numbers", false, "skip numeric rounding")
	rootCmd.AddCommand(svgminCmd)
}

func runSvgmin(_ *cobra.Command, args []string) error {
	opts := svgmin.DefaultOptions()
	opts.Precision = svgPrecision
	opts.StripComments = !svgKeepComments
	opts.StripMetadata = !svgKeepMetadata
	opts.MinifyStyles = !svgKeepStyles
	opts.RoundNumbers = !svgKeepNumbers

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		out := svgmin.Minify(string(data), opts)
		saved := len(data) - len(out)

		if svgWrite {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			logVerbose("%s: %d → %d bytes (−%d)", path, len(data), len(out), saved)
		} else {
			fmt.Println(out)
		}
	}
	return nil
}
