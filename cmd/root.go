package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"squish/internal/batch"
	"squish/internal/config"
	"squish/internal/tui"
)

var (
	flagQuality    int
	flagMaxSize    int
	flagExactSize  string
	flagNoAspect   bool
	flagFormat     string
	flagRecursive  bool
	flagWorkers    int
	flagPlain      bool
	flagVerbose    bool
	flagAutoOrient bool
	flagConfig     string
)

var rootCmd = &cobra.Command{
	Use:   "squish [flags] <input_dir> <output_dir>",
	Short: "squish 🗜 - batch convert and resize images",
	Long:  "squish 🗜 is a concurrent CLI for converting, resizing, and compressing whole directories of images.",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoot,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVarP(&flagQuality, "quality", "q", config.DefaultQuality, "output quality (1-100)")
	rootCmd.Flags().IntVarP(&flagMaxSize, "max-size", "s", 0, "fit images within this many pixels on the longest side")
	rootCmd.Flags().StringVarP(&flagExactSize, "exact-size", "e", "", "resize to an exact WxH geometry")
	rootCmd.Flags().BoolVar(&flagNoAspect, "no-aspect", false, "with --exact-size, stretch instead of fitting")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "convert all images to this format (jpg, png, webp)")
	rootCmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "descend into subdirectories")
	rootCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "worker count (0 = number of CPUs)")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "line output instead of the live progress view")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "debug logging (implies --plain)")
	rootCmd.Flags().BoolVar(&flagAutoOrient, "auto-orient", false, "apply EXIF orientation before resizing")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "YAML file with flag defaults")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(config.Raw{
		InputDir:   args[0],
		OutputDir:  args[1],
		Quality:    flagQuality,
		MaxSize:    flagMaxSize,
		ExactSize:  flagExactSize,
		NoAspect:   flagNoAspect,
		Format:     flagFormat,
		Recursive:  flagRecursive,
		Workers:    flagWorkers,
		Plain:      flagPlain,
		Verbose:    flagVerbose,
		AutoOrient: flagAutoOrient,
		ConfigFile: flagConfig,
		Set:        cmd.Flags().Changed,
	})
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary batch.Summary
	if cfg.Plain {
		summary, err = runPlain(ctx, cfg)
	} else {
		summary, err = runTUI(ctx, cfg)
	}
	if err != nil {
		return err
	}

	if summary.Found == 0 {
		fmt.Fprintln(os.Stdout, "No supported images found!")
		return nil
	}

	rows := []tui.SummaryRow{
		{Label: "Images converted", Value: fmt.Sprintf("%d", summary.Processed)},
		{Label: "Failed", Value: fmt.Sprintf("%d", summary.Failed)},
		{Label: "Space saved", Value: tui.FormatBytes(summary.BytesSaved())},
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

	outPath := cfg.OutputDir
	if abs, absErr := filepath.Abs(cfg.OutputDir); absErr == nil {
		outPath = abs
	}
	fmt.Fprintf(os.Stdout, "Converted files written to: %s\n", outPath)
	return nil
}

func runTUI(ctx context.Context, cfg config.Config) (batch.Summary, error) {
	updates := make(chan batch.ProgressUpdate, 64)
	model := tui.NewModel(updates)
	program := tea.NewProgram(model)

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	summary, err := batch.Run(ctx, cfg, updates)
	close(updates)
	<-uiDone
	return summary, err
}

func runPlain(ctx context.Context, cfg config.Config) (batch.Summary, error) {
	updates := make(chan batch.ProgressUpdate, 64)

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for up := range updates {
			if up.Done != nil {
				fmt.Fprintln(os.Stdout, tui.ResultLine(*up.Done))
			}
		}
	}()

	summary, err := batch.Run(ctx, cfg, updates)
	close(updates)
	<-printerDone
	return summary, err
}
