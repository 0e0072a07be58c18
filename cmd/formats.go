package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgpipe/internal/format"
	"github.com/AnyUserName/imgpipe/internal/optimizer"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Probe and display runtime format support",
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	orch := optimizer.New(pipelineConfig(), log)
	if err := orch.Initialize(ctx); err != nil {
		return err
	}
	stats := orch.GetStats(ctx)
	support := stats.FormatSupport

	fmt.Println()
	for _, f := range []format.Format{format.AVIF, format.WebP, format.JPEG, format.PNG, format.GIF} {
		mark := "no"
		if support.Has(f) {
			mark = "yes"
		}
		fmt.Printf("  %-5s %s\n", f, mark)
	}
	fmt.Println()
	fmt.Printf("  best:     %s\n", format.SelectBest(support))
	fmt.Printf("  fallback: %v\n", format.FallbackChain(support))
	fmt.Printf("  encoders: %s\n", orch.Engine().Registry())
	fmt.Println()
	return nil
}
