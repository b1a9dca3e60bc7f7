package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"crypto-strategy-lab/internal/observability"
	"crypto-strategy-lab/internal/reporting"
	"crypto-strategy-lab/internal/storage"
	chstore "crypto-strategy-lab/internal/storage/clickhouse"
	pgstore "crypto-strategy-lab/internal/storage/postgres"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "Symbol to report on")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables yearly breakdown)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()
	summaryStore := pgstore.NewSummaryStore(pool)

	var equityStore storage.EquityStore
	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		equityStore = chstore.NewEquityStore(conn)
	}

	gen := reporting.NewGenerator(summaryStore, equityStore)
	report, err := gen.Generate(ctx, *symbol)
	if err != nil {
		logger.Fatal().Err(err).Msg("generate report")
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create output dir")
	}

	mdPath := filepath.Join(*outputDir, fmt.Sprintf("COMPARISON_%s.md", *symbol))
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("write markdown report")
	}
	observability.RecordReportGenerated("markdown")

	csvPath := filepath.Join(*outputDir, fmt.Sprintf("COMPARISON_%s.csv", *symbol))
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Rows)), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("write csv report")
	}
	observability.RecordReportGenerated("csv")

	fmt.Println("Comparison report generated successfully:")
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvPath)
}
