package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Options configures the SQL connection.
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

// Open connects the clickhouse-go/v2 driver and pings the server.
func Open(ctx context.Context, opts Options) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return conn, nil
}

// CreateTableSQL returns the DDL of the measurements table.
func CreateTableSQL(tableFQN string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	country     LowCardinality(String),
	region      LowCardinality(String),
	time        DateTime,
	ghi         Float64,
	dni         Float64,
	dhi         Float64,
	source_file LowCardinality(String)
) ENGINE = MergeTree
ORDER BY (country, time)`, tableFQN)
}

// EnsureTable creates the measurements table when it does not exist.
func EnsureTable(ctx context.Context, conn driver.Conn, tableFQN string) error {
	return conn.Exec(ctx, CreateTableSQL(tableFQN))
}

// Truncate empties the measurements table.
func Truncate(ctx context.Context, conn driver.Conn, tableFQN string) error {
	return conn.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", tableFQN))
}

// CountryMean is a server-side aggregate of one country.
type CountryMean struct {
	Country string
	Rows    uint64
	GHI     float64
	DNI     float64
	DHI     float64
}

// CountryMeansSQL averages every metric per country, ignoring NaN.
func CountryMeansSQL(tableFQN string) string {
	return fmt.Sprintf(`SELECT
	country,
	count() AS rows,
	avgIf(ghi, NOT isNaN(ghi)) AS ghi,
	avgIf(dni, NOT isNaN(dni)) AS dni,
	avgIf(dhi, NOT isNaN(dhi)) AS dhi
FROM %s
GROUP BY country
ORDER BY country`, tableFQN)
}

// CountryMeans reads the per-country means back from the warehouse.
func CountryMeans(ctx context.Context, conn driver.Conn, tableFQN string) ([]CountryMean, error) {
	rows, err := conn.Query(ctx, CountryMeansSQL(tableFQN))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountryMean
	for rows.Next() {
		var m CountryMean
		if err := rows.Scan(&m.Country, &m.Rows, &m.GHI, &m.DNI, &m.DHI); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
