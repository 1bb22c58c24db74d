package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/cluster"
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
)

func newMasterCmd() *cobra.Command {
	var (
		inputs    []string
		outputDir string
		addr      string
		reducers  int64
		batchSize int64
		keepInter bool
	)
	cmd := &cobra.Command{
		Use:   "master",
		Short: "Serve a job to remote workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandGlobs(inputs)
			if err != nil {
				return err
			}
			m, err := cluster.StartMaster(cluster.MasterConfig{
				Addr:              addr,
				Inputs:            files,
				Reducers:          int(reducers),
				BatchSize:         int(batchSize),
				OutputDir:         outputDir,
				KeepIntermediates: keepInter,
			})
			if err != nil {
				return err
			}
			defer m.Stop()

			res, err := m.Wait(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("job done: %d record(s) -> %d row(s)\n", res.Records, res.Rows)
			for _, out := range res.Outputs {
				fmt.Println(out)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Input files or glob patterns")
	cmd.MarkFlagRequired("input")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for aggregate shards")
	cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&addr, "addr", ":10000", "Listen address")
	cmd.Flags().Int64VarP(&reducers, "reduce", "r", 1, "Number of reducers")
	cmd.Flags().Int64Var(&batchSize, "batch-size", 512, "Records per input read")
	cmd.Flags().BoolVar(&keepInter, "keep-intermediates", false, "Keep intermediate files")
	return cmd
}

func newWorkerCmd() *cobra.Command {
	var (
		masterAddr string
		delimiter  string
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Join a master and execute its tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cluster.NewWorker(masterAddr, cluster.Job[flights.Record, flights.Key, flights.FlightTimes, flights.Aggregate]{
				Mapper:  flights.MarketMapper{},
				Reducer: flights.FlightTimeReducer{},
				Input:   flights.Input(flights.ReaderConfig{Delimiter: delimiter}),
				Output:  flights.Output(),
			})
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&masterAddr, "master", ":10000", "Master address to dial")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Input field delimiter")
	return cmd
}

func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input pattern %q matched nothing", pat)
		}
		files = append(files, matches...)
	}
	return files, nil
}
