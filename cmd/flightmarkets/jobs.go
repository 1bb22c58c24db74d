package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	flightstats "github.com/DevOps8012/tutorial-201209-TDWI-big-data"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/results"
)

func newRunCmd() *cobra.Command {
	var (
		inputs     []string
		outputDir  string
		backend    string
		reducers   int64
		workers    int64
		batchSize  int64
		delimiter  string
		masterAddr string
		keepInter  bool
		configPath string
		checkOnly  bool
		previewN   int64
		xlsxPath   string
		benchmark  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the flight market statistics job",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if configPath != "" {
				cfg, err := flightstats.LoadJobConfig(configPath)
				if err != nil {
					return err
				}
				if checkOnly {
					fmt.Println("config check pass")
					return nil
				}
				h, bench, err := flightstats.RunJobConfig(ctx, cfg)
				if err != nil {
					return err
				}
				reportRun(h)
				if benchmark {
					fmt.Printf("transform=%s sink=%s total=%s\n", bench.TransformDuration, bench.SinkDuration, bench.TotalDuration)
				}
				return previewAfter(h, int(previewN), xlsxPath)
			}
			if checkOnly {
				return fmt.Errorf("--check requires --config")
			}
			if len(inputs) == 0 {
				return fmt.Errorf("--input is required without --config")
			}
			if outputDir == "" {
				return fmt.Errorf("--output is required without --config")
			}

			spec := flightstats.MarketJob(inputs, outputDir, flights.ReaderConfig{Delimiter: delimiter})
			h, err := flightstats.Run(ctx, spec, flightstats.Config{
				Backend:           flightstats.Backend(backend),
				Workers:           int(workers),
				Reducers:          int(reducers),
				BatchSize:         int(batchSize),
				MasterAddr:        masterAddr,
				KeepIntermediates: keepInter,
			})
			if err != nil {
				return err
			}
			reportRun(h)
			if benchmark {
				fmt.Printf("map=%s shuffle=%s reduce=%s total=%s\n", h.Timings.Map, h.Timings.Shuffle, h.Timings.Reduce, h.Timings.Total)
			}
			return previewAfter(h, int(previewN), xlsxPath)
		},
	}
	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Input files or glob patterns")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for aggregate shards")
	cmd.Flags().StringVar(&backend, "backend", string(flightstats.BackendLocal), "local|cluster")
	cmd.Flags().Int64VarP(&reducers, "reduce", "r", 1, "Number of reducers (cluster backend)")
	cmd.Flags().Int64VarP(&workers, "worker", "w", 4, "Number of workers")
	cmd.Flags().Int64Var(&batchSize, "batch-size", 512, "Records per input read")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Input field delimiter")
	cmd.Flags().StringVar(&masterAddr, "master-addr", ":10000", "Cluster backend listen address")
	cmd.Flags().BoolVar(&keepInter, "keep-intermediates", false, "Keep cluster intermediate files")
	cmd.Flags().StringVar(&configPath, "config", "", "Job config file path (JSON)")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Validate job config schema only (requires --config)")
	cmd.Flags().Int64VarP(&previewN, "preview", "n", 0, "Print the first n aggregate rows after the run")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the aggregates as a .xlsx workbook")
	cmd.Flags().BoolVar(&benchmark, "benchmark", false, "Print stage durations")
	return cmd
}

func reportRun(h *flightstats.Handle) {
	fmt.Printf("run %s: %d record(s) -> %d group(s)\n", h.RunID, h.Records, h.Groups)
	for _, out := range h.Outputs {
		fmt.Println(out)
	}
}

func previewAfter(h *flightstats.Handle, n int, xlsxPath string) error {
	if n <= 0 && xlsxPath == "" {
		return nil
	}
	df, err := results.Load(h.OutputGlob)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Println(results.Preview(df, n))
	}
	if xlsxPath != "" {
		if err := results.WriteXLSX(df, xlsxPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", xlsxPath)
	}
	return nil
}

func newPreviewCmd() *cobra.Command {
	var (
		rows     int64
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "preview <glob>",
		Short: "Print aggregate shards matching a glob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := results.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Println(results.Preview(df, int(rows)))
			if xlsxPath != "" {
				if err := results.WriteXLSX(df, xlsxPath); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", xlsxPath)
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&rows, "rows", "n", 10, "Rows to print (0 prints everything)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export as a .xlsx workbook")
	return cmd
}

func newGenCmd() *cobra.Command {
	var (
		outputDir string
		shards    int64
		rows      int64
		year      int64
		seed      int64
		delimiter string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate synthetic on-time performance shards",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := int64(0); i < shards; i++ {
				path := filepath.Join(outputDir, fmt.Sprintf("sample-%02d.csv", i))
				err := flights.GenerateSample(path, flights.GenConfig{
					Rows:      int(rows),
					Year:      int(year),
					Seed:      seed + i,
					Delimiter: delimiter,
				})
				if err != nil {
					return err
				}
				fmt.Println(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for generated shards")
	cmd.MarkFlagRequired("output")
	cmd.Flags().Int64Var(&shards, "shards", 1, "Number of shards to generate")
	cmd.Flags().Int64Var(&rows, "rows", 10000, "Rows per shard")
	cmd.Flags().Int64Var(&year, "year", 2004, "Year column value")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Base RNG seed; shard i uses seed+i")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Field delimiter")
	return cmd
}
