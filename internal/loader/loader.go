// Package loader resolves a country identifier to its station file and reads
// it into a normalized measurement table.
//
// A load either yields a complete, non-empty table with a Country column on
// every row and a parsed timestamp column, or fails with one of the sentinel
// errors below. Callers distinguish them with errors.Is.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/common"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

var (
	// ErrUnknownCountry is returned for identifiers outside the country set.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrSourceNotFound is returned when a known country's file is missing.
	ErrSourceNotFound = errors.New("data file not found")

	// ErrEmptyDataset is returned when the file exists but holds no rows.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrLoad wraps every other read or parse failure.
	ErrLoad = errors.New("error processing data")
)

// Loader reads station files from a data directory.
type Loader struct {
	dataDir string
	stats   *common.Stats
	log     *logrus.Logger
}

// New creates a loader rooted at dataDir. A nil logger defaults to logrus.New().
func New(dataDir string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	return &Loader{
		dataDir: dataDir,
		stats:   common.NewStats(),
		log:     log,
	}
}

// Stats returns the loader's telemetry counters.
func (l *Loader) Stats() *common.Stats {
	return l.stats
}

// SourcePath returns the backing file location of a country.
func (l *Loader) SourcePath(c solar.Country) string {
	return filepath.Join(l.dataDir, c.SourceFile())
}

// Load resolves a country identifier and loads its table.
func (l *Loader) Load(country string) (*table.Table, error) {
	c, ok := solar.ParseCountry(country)
	if !ok {
		l.stats.FileFailed()
		return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	return l.LoadCountry(c)
}

// LoadCountry loads the table of a known country.
func (l *Loader) LoadCountry(c solar.Country) (*table.Table, error) {
	if !c.Valid() {
		l.stats.FileFailed()
		return nil, fmt.Errorf("%w: %s", ErrUnknownCountry, c)
	}

	tbl, err := l.load(c)
	if err != nil {
		l.stats.FileFailed()
		return nil, err
	}

	l.stats.FileLoaded()
	l.stats.AddRows(uint64(tbl.Len()))
	return tbl, nil
}

func (l *Loader) load(c solar.Country) (*table.Table, error) {
	path := l.SourcePath(c)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrLoad, c, err)
	}
	defer f.Close()

	counter := &countingReader{r: f}
	src, closeSrc, err := openSource(counter)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrLoad, c, err)
	}
	defer closeSrc()

	tbl, err := parseCSV(src)
	l.stats.AddBytes(counter.n)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrLoad, c, err)
	}
	if tbl.Empty() {
		return nil, fmt.Errorf("%w loaded for %s", ErrEmptyDataset, c)
	}

	tbl.SetConstant(solar.ColumnCountry, c.String())

	l.log.WithFields(logrus.Fields{
		"country": c.String(),
		"rows":    tbl.Len(),
		"file":    filepath.Base(path),
	}).Debug("Loaded station data")
	return tbl, nil
}

// =============================================================================
// Multi-country loads
// =============================================================================

// Failure records why one country of a batch could not be loaded.
type Failure struct {
	Country string
	Err     error
}

func (f Failure) Error() string {
	return fmt.Sprintf("Error loading data for %s: %v", f.Country, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Batch is the result of loading several countries.
type Batch struct {
	// Table is the union of every successful load, nil when all failed.
	Table *table.Table

	// Loaded lists the countries that contributed rows, in request order.
	Loaded []string

	// Failures lists the countries that were skipped.
	Failures []Failure

	// Demoted lists metrics that are numeric in some loaded country but became
	// text in Table because another country's file holds non-numeric cells.
	Demoted []solar.Metric
}

// OK reports whether at least one country loaded.
func (b *Batch) OK() bool {
	return b != nil && b.Table != nil
}

// LoadAll loads each requested country, skipping failures. Failures do not
// abort the remaining countries. A repeated country is loaded once.
func (l *Loader) LoadAll(countries []string) *Batch {
	batch := &Batch{}
	var tables []*table.Table
	seen := make(map[string]bool, len(countries))

	for _, country := range countries {
		if seen[country] {
			continue
		}
		seen[country] = true
		l.log.Infof("[%s] Loading data...", country)
		tbl, err := l.Load(country)
		if err != nil {
			l.log.Warnf("[%s] %v", country, err)
			batch.Failures = append(batch.Failures, Failure{Country: country, Err: err})
			continue
		}
		l.log.Infof("[%s] Successfully loaded %d rows", country, tbl.Len())
		tables = append(tables, tbl)
		batch.Loaded = append(batch.Loaded, country)
	}

	if len(tables) > 0 {
		batch.Table = table.Concat(tables...)
		batch.Demoted = demotedMetrics(tables, batch.Table)
		for _, m := range batch.Demoted {
			l.log.Warnf("%s has non-numeric values in at least one country; excluded from analysis", m)
		}
	}
	return batch
}

// demotedMetrics reports the metrics numeric in at least one input that are
// no longer numeric in the union.
func demotedMetrics(inputs []*table.Table, union *table.Table) []solar.Metric {
	var out []solar.Metric
	for _, m := range solar.Metrics {
		if kind, ok := union.Kind(string(m)); !ok || kind == table.Float {
			continue
		}
		for _, in := range inputs {
			if kind, ok := in.Kind(string(m)); ok && kind == table.Float {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
