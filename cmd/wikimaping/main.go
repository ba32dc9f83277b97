package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wikimaping/internal/config"
	"wikimaping/internal/convert"
	"wikimaping/internal/magick"
	"wikimaping/internal/model"
)

const version = "0.2.0"

func main() {
	var (
		destination   string
		noBackup      bool
		labelTemplate string
		alignmentName string
		configPath    string
		verbose       bool
		dryRun        bool
	)

	rootCmd := &cobra.Command{
		Use:     "wikimaping [flags] <photo or folder> ...",
		Short:   "Prepare photos for upload to the map",
		Version: version,
		Long: `Resizes and recompresses photos with ImageMagick so they fit the
upload limits of the mapping site, strips embedded metadata, and can
stamp a label with the capture date into a corner.

Folders are scanned recursively for JPEG files. By default photos are
replaced in place and the originals are kept: for a folder input they
mirror into a sibling "<name>_backup" folder, for a file input into a
"backup" folder next to the file. Use --destination to write converted
copies elsewhere, or --nobackup to overwrite without keeping originals.

Label templates mix plain text with tags in square brackets, e.g.
"[Month YYYY, ](C) Author". A bracket group disappears entirely when
any tag inside it has no value, so photos without a capture date
simply get the rest of the label. Use [[ and ]] for literal brackets.

For interactive mode, use: wikimaping-tui`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			alignment, err := model.ParseAlignment(alignmentName)
			if err != nil {
				return err
			}

			settings := config.DefaultSettings()
			if configPath != "" {
				settings, err = config.Load(configPath)
				if err != nil {
					return fmt.Errorf("can't load config: %w", err)
				}
			}

			// Handle interrupts
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nInterrupted, cancelling...")
				cancel()
			}()

			// A dry run touches nothing, so it works without the tool.
			var converter magick.Converter
			if !dryRun {
				tool, err := magick.Locate(settings.ToLocateConfig())
				if err != nil {
					if errors.Is(err, magick.ErrNotFound) {
						return fmt.Errorf("%w\ninstall ImageMagick or set magick_path in the config file", err)
					}
					return err
				}
				converter = tool
			}

			request := &model.BatchRequest{
				Paths:         args,
				Destination:   destination,
				NoBackup:      noBackup,
				LabelTemplate: labelTemplate,
				Alignment:     alignment,
				DryRun:        dryRun,
			}

			manager, err := convert.NewManager(settings, converter, request, func(event convert.ProgressEvent) {
				if event.Level == convert.LevelVerbose && !verbose {
					return
				}

				prefix := "   "
				switch event.Level {
				case convert.LevelError:
					prefix = "x  "
				case convert.LevelWarning:
					prefix = "!  "
				case convert.LevelSuccess:
					prefix = "+  "
				case convert.LevelInfo:
					prefix = ">  "
				}

				fmt.Println(prefix + event.Message)
			})
			if err != nil {
				return err
			}

			summary, err := manager.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					fmt.Println("\nCancelled.")
					os.Exit(130)
				}
				return err
			}

			printStats(summary, dryRun)
			if summary.Problems() > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&destination, "destination", "d", "", "write converted photos here instead of in place")
	rootCmd.Flags().BoolVarP(&noBackup, "nobackup", "n", false, "when converting in place, don't keep originals")
	rootCmd.Flags().StringVarP(&labelTemplate, "label", "l", "", "label template to stamp into the photo")
	rootCmd.Flags().StringVarP(&alignmentName, "label_alignment", "a", "BottomRight", "label corner: TopLeft, TopRight, BottomLeft, BottomRight")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show verbose output")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without converting")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printStats(s *convert.Summary, dryRun bool) {
	fmt.Println()
	if dryRun {
		fmt.Printf("[Dry run] %d photo(s) would be converted\n", s.Found)
		return
	}

	fmt.Printf("Complete! Converted %d/%d photo(s) in %s\n", s.Converted, s.Found, s.Elapsed.Round(time.Millisecond))
	if s.Converted > 0 && s.Elapsed > 0 {
		fmt.Printf("   %.2f photo(s)/sec\n", float64(s.Converted)/s.Elapsed.Seconds())
	}
	if s.Failed > 0 {
		fmt.Printf("   %d failed\n", s.Failed)
	}
	if len(s.Missing) > 0 {
		fmt.Printf("   %d source(s) not found\n", len(s.Missing))
	}
	if len(s.Skipped) > 0 {
		fmt.Printf("   %d unsupported file(s) skipped\n", len(s.Skipped))
	}
}
