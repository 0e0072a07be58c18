package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgpipe/internal/asset"
	"github.com/AnyUserName/imgpipe/internal/batch"
	"github.com/AnyUserName/imgpipe/internal/format"
	"github.com/AnyUserName/imgpipe/internal/optimizer"
)

var (
	optimizeOutDir      string
	optimizePreset      string
	optimizeQuality     int
	optimizeWidths      []int
	optimizeConcurrency int
	optimizeFormat      string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <input_dir>",
	Short: "Optimize a directory of raster assets",
	Long: `Scans the input directory for images (png, jpg, jpeg, webp, gif, bmp,
tiff), re-encodes each at every configured breakpoint width in all
locally supported formats (or just --format), and writes the variants
plus a JSON report.

Output filenames are content-addressed: <name>.<w>.<h>.<hash>.<ext>`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeOutDir, "out", "o", "./imgpipe_out", "output directory")
	optimizeCmd.Flags().StringVarP(&optimizePreset, "preset", "p", "", "configuration preset (dashboard, thumbnail, hero)")
	optimizeCmd.Flags().IntVarP(&optimizeQuality, "quality", "q", 0, "quality 1-100 (0 = configured default)")
	optimizeCmd.Flags().IntSliceVar(&optimizeWidths, "widths", nil, "custom widths (overrides configured breakpoints)")
	optimizeCmd.Flags().IntVarP(&optimizeConcurrency, "concurrency", "c", 0, "parallel conversions (0 = configured default)")
	optimizeCmd.Flags().StringVarP(&optimizeFormat, "format", "f", "", "emit only this format (avif, webp, jpeg/jpg, png)")
	rootCmd.AddCommand(optimizeCmd)
}

// source is a discovered image file.
type source struct {
	absPath string
	relPath string
	key     string // relpath without extension, forward slashes
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

func runOptimize(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(optimizeOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	var outFormat format.Format
	if optimizeFormat != "" {
		f, ok := format.Parse(optimizeFormat)
		if !ok {
			return fmt.Errorf("unknown format %q", optimizeFormat)
		}
		outFormat = f
	}

	cfg := pipelineConfig()
	if optimizePreset != "" {
		cfg = optimizer.Preset(optimizePreset)
	}
	if optimizeWidths != nil {
		cfg.Breakpoints = optimizeWidths
	}
	if optimizeQuality > 0 {
		cfg.Quality = optimizeQuality
	}
	if optimizeConcurrency > 0 {
		cfg.DefaultConcurrency = optimizeConcurrency
	}

	sources, err := scanImages(absInput)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no images found in %s", absInput)
	}
	logVerbose("found %d images in %s", len(sources), absInput)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	orch := optimizer.New(cfg, log)
	if err := orch.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	widths := append([]int(nil), cfg.Breakpoints...)
	sort.Ints(widths)
	if len(widths) == 0 {
		widths = []int{0} // re-encode at source dimensions
	}

	results := batch.Run(ctx, len(sources), cfg.DefaultConcurrency, processSource(orch, sources, widths, outFormat, absOutput))

	report := asset.NewReport()
	var failed int
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[imgpipe] error: %s: %v\n", sources[i].relPath, r.Err)
			continue
		}
		report.Assets[sources[i].key] = r.Asset
	}
	if failed == len(sources) {
		return fmt.Errorf("all %d images failed to process", failed)
	}
	report.Stats.Failed = failed

	reportPath := filepath.Join(absOutput, "imgpipe.report.json")
	if err := report.WriteJSON(reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printOptimizeSummary(report, orch.GetStats(ctx), time.Since(start))
	return nil
}

// processSource returns the batch worker: each slot converts one source
// at every target width and writes the variant files. The reported asset
// is the one at the largest effective width.
func processSource(orch *optimizer.Orchestrator, sources []source, widths []int, outFormat format.Format, outDir string) func(context.Context, int) (*asset.OptimizedAsset, error) {
	return func(ctx context.Context, i int) (*asset.OptimizedAsset, error) {
		src := sources[i]
		logVerbose("processing: %s", src.key)

		keyDir := filepath.Dir(src.key)
		if keyDir != "." {
			if err := os.MkdirAll(filepath.Join(outDir, keyDir), 0o755); err != nil {
				return nil, fmt.Errorf("create output subdir: %w", err)
			}
		}

		var last *asset.OptimizedAsset
		for _, w := range widths {
			a, variants, err := orch.OptimizeFile(ctx, src.absPath, &optimizer.Options{Width: w, Format: outFormat})
			if err != nil {
				return nil, err
			}
			for f, data := range variants {
				name := a.OptimizedURLs[f]
				outPath := filepath.Join(outDir, keyDir, name)
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return nil, fmt.Errorf("write %s: %w", name, err)
				}
			}
			last = a
		}
		logVerbose("done: %s (%d widths)", src.key, len(widths))
		return last, nil
	}
}

// scanImages walks the input directory and returns all image sources,
// skipping hidden directories.
func scanImages(inputDir string) ([]source, error) {
	var sources []source

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExtensions[ext] {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, source{
			absPath: path,
			relPath: filepath.ToSlash(relPath),
			key:     filepath.ToSlash(strings.TrimSuffix(relPath, ext)),
		})
		return nil
	})

	return sources, err
}

func printOptimizeSummary(r *asset.Report, stats optimizer.Stats, elapsed time.Duration) {
	s := r.Stats
	ratio := float64(0)
	if s.TotalInputBytes > 0 {
		ratio = float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
	}

	fmt.Println()
	fmt.Printf("  Assets:      %d\n", s.TotalAssets)
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s (best variant per asset)\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio)
	if s.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", s.Failed)
	}
	fmt.Printf("  Formats:     avif=%v webp=%v\n", stats.FormatSupport.AVIF, stats.FormatSupport.WebP)
	fmt.Printf("  Cached:      %d entries\n", stats.CachedImages)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Println("  Report:      imgpipe.report.json")
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
