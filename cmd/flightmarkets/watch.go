package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	flightstats "github.com/DevOps8012/tutorial-201209-TDWI-big-data"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
)

func newWatchCmd() *cobra.Command {
	var (
		dir       string
		pattern   string
		outputDir string
		workers   int64
		batchSize int64
		delimiter string
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the job whenever input shards change",
		Long: `watch monitors a directory and re-runs the flight market statistics job
after shards are added or rewritten. Bursts of file events collapse into
one run. Keep the output directory outside the watched directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}

			runOnce := func() {
				spec := flightstats.MarketJob([]string{filepath.Join(dir, pattern)}, outputDir, flights.ReaderConfig{Delimiter: delimiter})
				h, err := flightstats.Run(ctx, spec, flightstats.Config{
					Workers:   int(workers),
					BatchSize: int(batchSize),
				})
				if err != nil {
					log.Errorf("[Watch] Run failed: %v", err)
					return
				}
				log.Infof("[Watch] Refreshed %d group(s) into %s", h.Groups, outputDir)
			}
			runOnce()

			timer := time.NewTimer(0)
			if !timer.Stop() {
				<-timer.C
			}
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
						continue
					}
					if match, _ := filepath.Match(pattern, filepath.Base(event.Name)); !match {
						continue
					}
					log.Debugf("[Watch] %s %s", event.Op, event.Name)
					timer.Reset(debounce)
				case <-timer.C:
					runOnce()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Errorf("[Watch] %v", err)
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to watch")
	cmd.MarkFlagRequired("dir")
	cmd.Flags().StringVar(&pattern, "pattern", "*.csv", "Shard name pattern inside the watched directory")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for aggregate shards")
	cmd.MarkFlagRequired("output")
	cmd.Flags().Int64VarP(&workers, "worker", "w", 4, "Number of workers")
	cmd.Flags().Int64Var(&batchSize, "batch-size", 512, "Records per input read")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Input field delimiter")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "Quiet period before re-running")
	return cmd
}
