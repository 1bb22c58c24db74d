package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/mysqlsink"
)

func newSinkCmd() *cobra.Command {
	var (
		glob      string
		host      string
		port      int64
		user      string
		password  string
		database  string
		table     string
		replace   bool
		batchSize int64
	)
	cmd := &cobra.Command{
		Use:   "sink",
		Short: "Load aggregate shards into MySQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := mysqlsink.Open(ctx, mysqlsink.DBConfig{
				Host:     host,
				Port:     int(port),
				User:     user,
				Password: password,
				Database: database,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			return mysqlsink.NewSink(mysqlsink.Config{
				Table:     table,
				Replace:   replace,
				BatchSize: int(batchSize),
			}).Import(ctx, db, glob)
		},
	}
	cmd.Flags().StringVarP(&glob, "glob", "g", "", "Aggregate shard glob, e.g. out/part-*.csv")
	cmd.MarkFlagRequired("glob")
	cmd.Flags().StringVar(&host, "host", getenvDefault("MYSQL_HOST", "127.0.0.1"), "MySQL host")
	cmd.Flags().Int64Var(&port, "port", int64(getenvInt("MYSQL_PORT", 3306)), "MySQL port")
	cmd.Flags().StringVar(&user, "user", getenvDefault("MYSQL_USER", "root"), "MySQL user")
	cmd.Flags().StringVar(&password, "password", os.Getenv("MYSQL_PASSWORD"), "MySQL password")
	cmd.Flags().StringVar(&database, "database", os.Getenv("MYSQL_DB"), "MySQL database")
	cmd.Flags().StringVar(&table, "table", getenvDefault("TARGET_TABLE", "flight_markets"), "Target table")
	cmd.Flags().BoolVar(&replace, "replace", getenvBool("SINK_REPLACE", true), "Truncate the target before the import")
	cmd.Flags().Int64Var(&batchSize, "batch-size", int64(getenvInt("SINK_BATCH_SIZE", 2000)), "Rows per staging INSERT")
	return cmd
}
