package mysqlsink

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Config describes the sink side of a run.
type Config struct {
	DB DBConfig `json:"db"`
	// Table is the target table. It is created when missing.
	Table string `json:"table"`
	// Replace truncates the target before the import. Without it the
	// import upserts into whatever the table already holds.
	Replace bool `json:"replace"`
	// BatchSize is rows per INSERT into the staging table.
	BatchSize int `json:"batch_size"`
}

func (c *Config) withDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 2000
	}
}

// Sink imports aggregate shards into MySQL.
type Sink struct {
	cfg Config
}

func NewSink(cfg Config) *Sink {
	cfg.withDefaults()
	return &Sink{cfg: cfg}
}

const columnList = "`year`, `market`, `flights`, `scheduled`, `actual`, `in_air`"

// Import loads every shard matching glob into the target table. The whole
// import runs in one transaction against a staging table, and the means
// land as NULL where a shard says NA.
func (s *Sink) Import(ctx context.Context, db *sql.DB, glob string) error {
	if s.cfg.Table == "" {
		return fmt.Errorf("target table is required")
	}
	table, err := quoteIdentifier(s.cfg.Table)
	if err != nil {
		return err
	}
	stage, err := quoteIdentifier(s.cfg.Table + "_staging_tmp")
	if err != nil {
		return err
	}

	files, err := filepath.Glob(glob)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no aggregate shards matched: %s", glob)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  `+"`year`"+` INT NOT NULL,
  `+"`market`"+` VARCHAR(63) NOT NULL,
  `+"`flights`"+` BIGINT NOT NULL,
  `+"`scheduled`"+` DOUBLE NULL,
  `+"`actual`"+` DOUBLE NULL,
  `+"`in_air`"+` DOUBLE NULL,
  PRIMARY KEY (`+"`year`, `market`"+`)
)`, table)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, stage)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE %s (
  `+"`year`"+` INT NOT NULL,
  `+"`market`"+` VARCHAR(63) NOT NULL,
  `+"`flights`"+` BIGINT NOT NULL,
  `+"`scheduled`"+` DOUBLE NULL,
  `+"`actual`"+` DOUBLE NULL,
  `+"`in_air`"+` DOUBLE NULL,
  KEY idx_year_market (`+"`year`, `market`"+`)
)`, stage)); err != nil {
		return err
	}

	loaded, err := s.loadShards(ctx, tx, files, stage)
	if err != nil {
		return err
	}

	if s.cfg.Replace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`TRUNCATE TABLE %s`, table)); err != nil {
			return err
		}
	}

	upsertSQL := fmt.Sprintf(`
INSERT INTO %s (%s)
SELECT %s
FROM %s
ON DUPLICATE KEY UPDATE
  `+"`flights`=VALUES(`flights`)"+`,
  `+"`scheduled`=VALUES(`scheduled`)"+`,
  `+"`actual`=VALUES(`actual`)"+`,
  `+"`in_air`=VALUES(`in_air`)"+`
`, table, columnList, columnList, stage)
	if _, err := tx.ExecContext(ctx, upsertSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %s`, stage)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Infof("[Sink] Imported %d row(s) from %d shard(s) into %s", loaded, len(files), s.cfg.Table)
	return nil
}

func (s *Sink) loadShards(ctx context.Context, tx *sql.Tx, files []string, stage string) (int, error) {
	batch := make([][]interface{}, 0, s.cfg.BatchSize)
	loaded := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		args := make([]interface{}, 0, len(batch)*6)
		valueSQL := make([]string, 0, len(batch))
		for _, row := range batch {
			valueSQL = append(valueSQL, "(?, ?, ?, ?, ?, ?)")
			args = append(args, row...)
		}
		sqlStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", stage, columnList, strings.Join(valueSQL, ","))
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
		loaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return loaded, err
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			row, ok := parseAggregateRow(scanner.Text())
			if !ok {
				continue
			}
			batch = append(batch, row)
			if len(batch) >= s.cfg.BatchSize {
				if err := flush(); err != nil {
					f.Close()
					return loaded, err
				}
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return loaded, err
		}
		f.Close()
	}
	return loaded, flush()
}

// parseAggregateRow turns one shard line into insert args. The header
// line, blank lines and anything that does not parse report false.
func parseAggregateRow(line string) ([]interface{}, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return nil, false
	}
	if fields[0] == "year" {
		return nil, false
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false
	}
	market := fields[1]
	flights, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, false
	}
	means := make([]*float64, 3)
	for i, raw := range fields[3:] {
		if raw == "NA" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		means[i] = &v
	}
	return []interface{}{year, market, flights, means[0], means[1], means[2]}, true
}
