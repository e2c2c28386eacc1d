// Package warehouse stores measurement tables in ClickHouse.
//
// Inserts go through ch-go's native columnar protocol; schema management and
// read-back queries use the clickhouse-go/v2 SQL driver.
package warehouse

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// MeasurementBatch holds column data for native insert
type MeasurementBatch struct {
	Country    *proto.ColStr
	Region     *proto.ColStr
	Time       *proto.ColDateTime
	GHI        *proto.ColFloat64
	DNI        *proto.ColFloat64
	DHI        *proto.ColFloat64
	SourceFile *proto.ColStr
}

func NewMeasurementBatch() *MeasurementBatch {
	return &MeasurementBatch{
		Country:    new(proto.ColStr),
		Region:     new(proto.ColStr),
		Time:       new(proto.ColDateTime),
		GHI:        new(proto.ColFloat64),
		DNI:        new(proto.ColFloat64),
		DHI:        new(proto.ColFloat64),
		SourceFile: new(proto.ColStr),
	}
}

func (b *MeasurementBatch) Reset() {
	b.Country.Reset()
	b.Region.Reset()
	b.Time.Reset()
	b.GHI.Reset()
	b.DNI.Reset()
	b.DHI.Reset()
	b.SourceFile.Reset()
}

func (b *MeasurementBatch) Len() int {
	return b.Country.Rows()
}

// Input lists the columns in insert order.
func (b *MeasurementBatch) Input() proto.Input {
	return proto.Input{
		{Name: "country", Data: b.Country},
		{Name: "region", Data: b.Region},
		{Name: "time", Data: b.Time},
		{Name: "ghi", Data: b.GHI},
		{Name: "dni", Data: b.DNI},
		{Name: "dhi", Data: b.DHI},
		{Name: "source_file", Data: b.SourceFile},
	}
}

// AddRecord appends one row. A zero time is stored as the Unix epoch.
func (b *MeasurementBatch) AddRecord(country, region string, ts time.Time, ghi, dni, dhi float64, sourceFile string) {
	if ts.IsZero() {
		ts = time.Unix(0, 0).UTC()
	}
	b.Country.Append(country)
	b.Region.Append(region)
	b.Time.Append(ts)
	b.GHI.Append(ghi)
	b.DNI.Append(dni)
	b.DHI.Append(dhi)
	b.SourceFile.Append(sourceFile)
}

// AddTable appends every row of a loaded table. Country provenance selects
// the source file name recorded with each row.
func (b *MeasurementBatch) AddTable(t *table.Table) int {
	countries, _ := t.Strings(solar.ColumnCountry)
	regions, _ := t.Strings(solar.ColumnRegion)
	times, _ := t.Times(solar.ColumnTimestamp)
	ghi, _ := t.Floats(string(solar.GHI))
	dni, _ := t.Floats(string(solar.DNI))
	dhi, _ := t.Floats(string(solar.DHI))

	at := func(col []float64, i int) float64 {
		if col == nil {
			return math.NaN()
		}
		return col[i]
	}

	for i := 0; i < t.Len(); i++ {
		var country, region, source string
		var ts time.Time
		if countries != nil {
			country = countries[i]
			if c, ok := solar.ParseCountry(country); ok {
				source = c.SourceFile()
			}
		}
		if regions != nil {
			region = regions[i]
		}
		if times != nil {
			ts = times[i]
		}
		b.AddRecord(country, region, ts, at(ghi, i), at(dni, i), at(dhi, i), source)
	}
	return t.Len()
}

// Flush inserts the batch with the native protocol. An empty batch is a no-op.
func Flush(ctx context.Context, conn *ch.Client, tableFQN string, batch *MeasurementBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (country, region, time, ghi, dni, dhi, source_file) VALUES", tableFQN)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
}
