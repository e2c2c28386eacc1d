package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumns(t *testing.T) {
	tbl := New(2)
	require.NoError(t, tbl.AddFloats("GHI", []float64{1, 2}))
	require.NoError(t, tbl.AddStrings("Region", []string{"North", "South"}))

	err := tbl.AddFloats("DNI", []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	err = tbl.AddFloats("GHI", []float64{3, 4})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	assert.Equal(t, []string{"GHI", "Region"}, tbl.Columns())
	assert.True(t, tbl.Has("GHI"))
	assert.False(t, tbl.Has("DNI"))

	_, ok := tbl.Strings("GHI")
	assert.False(t, ok, "kind mismatch must not return a column")

	k, ok := tbl.Kind("Region")
	require.True(t, ok)
	assert.Equal(t, String, k)
}

func TestSetConstant(t *testing.T) {
	tbl := New(3)
	require.NoError(t, tbl.AddStrings("Country", []string{"", "", ""}))
	tbl.SetConstant("Country", "Togo")

	got, ok := tbl.Strings("Country")
	require.True(t, ok)
	assert.Equal(t, []string{"Togo", "Togo", "Togo"}, got)
	assert.Equal(t, []string{"Country"}, tbl.Columns())
}

func TestConcat(t *testing.T) {
	ts := time.Date(2021, 8, 9, 0, 1, 0, 0, time.UTC)

	a := New(2)
	require.NoError(t, a.AddFloats("GHI", []float64{200, 240}))
	require.NoError(t, a.AddTimes("timestamp", []time.Time{ts, ts.Add(time.Minute)}))
	a.SetConstant("Country", "Benin")

	b := New(1)
	require.NoError(t, b.AddFloats("GHI", []float64{180}))
	require.NoError(t, b.AddStrings("Region", []string{"Savanes"}))
	b.SetConstant("Country", "Togo")

	out := Concat(a, nil, b)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"GHI", "timestamp", "Country", "Region"}, out.Columns())

	ghi, _ := out.Floats("GHI")
	assert.Equal(t, []float64{200, 240, 180}, ghi)

	countries, _ := out.Strings("Country")
	assert.Equal(t, []string{"Benin", "Benin", "Togo"}, countries)

	regions, _ := out.Strings("Region")
	assert.Equal(t, []string{"", "", "Savanes"}, regions)

	times, _ := out.Times("timestamp")
	assert.True(t, times[2].IsZero())
	assert.Equal(t, ts, times[0])
}

func TestConcatFillsMissingFloatsWithNaN(t *testing.T) {
	a := New(1)
	require.NoError(t, a.AddFloats("DHI", []float64{5}))
	b := New(2)
	require.NoError(t, b.AddFloats("GHI", []float64{1, 2}))

	out := Concat(a, b)
	dhi, ok := out.Floats("DHI")
	require.True(t, ok)
	assert.Equal(t, 5.0, dhi[0])
	assert.True(t, math.IsNaN(dhi[1]))
	assert.True(t, math.IsNaN(dhi[2]))
}

func TestConcatKindConflictDemotesToString(t *testing.T) {
	a := New(1)
	require.NoError(t, a.AddFloats("Comments", []float64{1.5}))
	b := New(1)
	require.NoError(t, b.AddStrings("Comments", []string{"dusty"}))

	out := Concat(a, b)
	got, ok := out.Strings("Comments")
	require.True(t, ok)
	assert.Equal(t, []string{"1.5", "dusty"}, got)
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Empty())
	assert.False(t, tbl.Has("GHI"))
	assert.Empty(t, tbl.Cell("GHI", 0))
	assert.Equal(t, 0, Concat().Len())
}

func TestTake(t *testing.T) {
	ts := time.Date(2021, 8, 9, 0, 0, 0, 0, time.UTC)
	tbl := New(3)
	require.NoError(t, tbl.AddFloats("GHI", []float64{1, 2, 3}))
	require.NoError(t, tbl.AddStrings("Country", []string{"Benin", "Togo", "Togo"}))
	require.NoError(t, tbl.AddTimes("timestamp", []time.Time{ts, ts.Add(time.Minute), ts.Add(2 * time.Minute)}))

	out := tbl.Take([]int{1, 2, 0})
	require.Equal(t, 3, out.Len())
	assert.Equal(t, tbl.Columns(), out.Columns())

	ghi, _ := out.Floats("GHI")
	assert.Equal(t, []float64{2, 3, 1}, ghi)
	countries, _ := out.Strings("Country")
	assert.Equal(t, []string{"Togo", "Togo", "Benin"}, countries)
	times, _ := out.Times("timestamp")
	assert.Equal(t, ts, times[2])

	ghi[0] = 99
	orig, _ := tbl.Floats("GHI")
	assert.Equal(t, 1.0, orig[0], "Take copies the column data")

	var empty *Table
	assert.Nil(t, empty.Take([]int{0}))
}
