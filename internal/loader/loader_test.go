package loader

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
)

const beninCSV = `timestamp,GHI,DNI,DHI,Region,Tamb,Comments
2021-08-09 00:01,200,120.5,30,Malanville,26.2,
2021-08-09 00:02,240,,35,Malanville,26.3,
2021-08-09 00:03,-1.2,0,0,Kandi,26.1,
`

const togoCSV = `timestamp,GHI,DNI,DHI
2021-10-25 00:01,180,100,20
2021-10-25 00:02,190,110,25
`

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeStation(t *testing.T, dir string, c solar.Country, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, c.SourceFile()), data, 0644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.Benin, []byte(beninCSV))

	l := New(dir, quietLogger())
	tbl, err := l.Load("Benin")
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	countries, ok := tbl.Strings(solar.ColumnCountry)
	require.True(t, ok)
	for _, c := range countries {
		assert.Equal(t, "Benin", c)
	}

	times, ok := tbl.Times(solar.ColumnTimestamp)
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 8, 9, 0, 1, 0, 0, time.UTC), times[0])

	dni, ok := tbl.Floats("DNI")
	require.True(t, ok)
	assert.Equal(t, 120.5, dni[0])
	assert.True(t, math.IsNaN(dni[1]))

	regions, ok := tbl.Strings(solar.ColumnRegion)
	require.True(t, ok)
	assert.Equal(t, []string{"Malanville", "Malanville", "Kandi"}, regions)

	_, ok = tbl.Floats("Comments")
	assert.False(t, ok, "an all-empty column stays textual")

	assert.Equal(t, uint64(3), l.Stats().GetTotalRows())
	assert.Equal(t, uint64(len(beninCSV)), l.Stats().GetTotalBytes())
}

func TestLoadAllKnownCountries(t *testing.T) {
	dir := t.TempDir()
	for _, c := range solar.Countries() {
		writeStation(t, dir, c, []byte(togoCSV))
	}

	l := New(dir, quietLogger())
	for _, name := range solar.CountryNames() {
		tbl, err := l.Load(name)
		require.NoError(t, err, name)
		assert.False(t, tbl.Empty())
		countries, _ := tbl.Strings(solar.ColumnCountry)
		for _, c := range countries {
			assert.Equal(t, name, c)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.SierraLeone, []byte("timestamp,GHI,DNI,DHI\n"))
	writeStation(t, dir, solar.Togo, []byte("timestamp,GHI\nyesterday,12\n"))

	l := New(dir, quietLogger())

	tests := []struct {
		country string
		want    error
	}{
		{"Ghana", ErrUnknownCountry},
		{"", ErrUnknownCountry},
		{"benin", ErrUnknownCountry},
		{"Benin", ErrSourceNotFound},
		{"SierraLeone", ErrEmptyDataset},
		{"Togo", ErrLoad},
	}
	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			tbl, err := l.Load(tt.country)
			assert.Nil(t, tbl)
			require.ErrorIs(t, err, tt.want)
			for _, other := range []error{ErrUnknownCountry, ErrSourceNotFound, ErrEmptyDataset, ErrLoad} {
				if other != tt.want {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestLoadErrorPreservesCause(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.Togo, []byte("timestamp,GHI\n2021-10-25 00:01,1\nnot-a-date,2\n"))

	_, err := New(dir, quietLogger()).Load("Togo")
	require.ErrorIs(t, err, ErrLoad)
	assert.Contains(t, err.Error(), "Togo")
	assert.Contains(t, err.Error(), `unparseable timestamp "not-a-date"`)
}

func TestLoadRaggedRowFails(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.Togo, []byte("GHI,DNI\n1,2\n3\n"))

	_, err := New(dir, quietLogger()).Load("Togo")
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadCompressedSources(t *testing.T) {
	var gz bytes.Buffer
	w := pgzip.NewWriter(&gz)
	_, err := w.Write([]byte(togoCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var zs bytes.Buffer
	enc, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = enc.Write([]byte(togoCSV))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	for name, data := range map[string][]byte{"gzip": gz.Bytes(), "zstd": zs.Bytes()} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeStation(t, dir, solar.Togo, data)

			tbl, err := New(dir, quietLogger()).Load("Togo")
			require.NoError(t, err)
			ghi, _ := tbl.Floats("GHI")
			assert.Equal(t, []float64{180, 190}, ghi)
		})
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.Benin, []byte(beninCSV))
	writeStation(t, dir, solar.Togo, []byte(togoCSV))

	l := New(dir, quietLogger())
	batch := l.LoadAll([]string{"Benin", "SierraLeone", "Atlantis", "Togo"})

	require.True(t, batch.OK())
	assert.Equal(t, []string{"Benin", "Togo"}, batch.Loaded)
	require.Len(t, batch.Failures, 2)
	assert.Equal(t, "SierraLeone", batch.Failures[0].Country)
	assert.ErrorIs(t, batch.Failures[0], ErrSourceNotFound)
	assert.ErrorIs(t, batch.Failures[1], ErrUnknownCountry)
	assert.Contains(t, batch.Failures[1].Error(), "Error loading data for Atlantis")

	assert.Equal(t, 5, batch.Table.Len())
	countries, _ := batch.Table.Strings(solar.ColumnCountry)
	assert.Equal(t, []string{"Benin", "Benin", "Benin", "Togo", "Togo"}, countries)

	regions, _ := batch.Table.Strings(solar.ColumnRegion)
	assert.Equal(t, "", regions[4])
}

func TestLoadAllEveryCountryFails(t *testing.T) {
	batch := New(t.TempDir(), quietLogger()).LoadAll([]string{"Benin", "Togo"})
	assert.False(t, batch.OK())
	assert.Nil(t, batch.Table)
	assert.Len(t, batch.Failures, 2)

	empty := New(t.TempDir(), quietLogger()).LoadAll(nil)
	assert.False(t, empty.OK())
	assert.Empty(t, empty.Failures)
}

func TestLoadAllRepeatedCountryLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.Togo, []byte(togoCSV))

	l := New(dir, quietLogger())
	batch := l.LoadAll([]string{"Togo", "Togo"})
	require.True(t, batch.OK())
	assert.Equal(t, []string{"Togo"}, batch.Loaded)
	assert.Equal(t, 2, batch.Table.Len())
	assert.Equal(t, uint64(2), l.Stats().GetTotalRows())
}

func TestLoadAllReportsDemotedMetric(t *testing.T) {
	dir := t.TempDir()
	writeStation(t, dir, solar.Benin, []byte(beninCSV))
	writeStation(t, dir, solar.Togo, []byte("timestamp,GHI,DNI,DHI\n2021-10-25 00:01,180,n/a,20\n"))

	log, hook := test.NewNullLogger()
	batch := New(dir, log).LoadAll([]string{"Benin", "Togo"})
	require.True(t, batch.OK())
	assert.Equal(t, []solar.Metric{solar.DNI}, batch.Demoted)

	_, ok := batch.Table.Floats("DNI")
	assert.False(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "DNI")
}
