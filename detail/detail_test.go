// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package detail

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nwbview/hdf"
	"nwbview/hdf/hdftest"
)

func TestComputeStepSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{5000, 1},
		{10000, 1},
		{10001, 125},
		{100000, 125},
		{100001, 216},
		{1000000, 216},
		{1000001, 343},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeStepSize(tt.n), "n=%d", tt.n)
	}
}

func TestComputeStepSize_Monotonic(t *testing.T) {
	prev := ComputeStepSize(1)
	for n := 1; n <= 3_000_000; n += 997 {
		step := ComputeStepSize(n)
		require.GreaterOrEqual(t, step, 1)
		require.GreaterOrEqual(t, step, prev, "n=%d", n)
		prev = step
	}
}

func TestKindOf(t *testing.T) {
	tests := map[hdf.TypeClass]ScalarKind{
		hdf.ClassFloat:       KindFloat,
		hdf.ClassSignedInt:   KindInt,
		hdf.ClassUnsignedInt: KindUint,
		hdf.ClassBool:        KindBool,
		hdf.ClassString:      KindString,
		hdf.ClassCompound:    KindUnsupported,
		hdf.ClassOther:       KindUnsupported,
	}
	for class, want := range tests {
		assert.Equal(t, want, KindOf(hdf.TypeDescriptor{Class: class}), class.String())
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.5", Format(1.5))
	assert.Equal(t, "-3", Format(int64(-3)))
	assert.Equal(t, "18446744073709551615", Format(uint64(math.MaxUint64)))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "mouse", Format("mouse"))
}

func TestOpenDataset_Variants(t *testing.T) {
	f := hdftest.NewFile()
	g := f.RootGroup()
	g.Floats("rates", 0.5, 1.5)
	g.Ints("counts", -1, 2, 3)
	g.Uints("ids", 7)
	g.Bools("mask", true, false)
	g.Strings("labels", "a", "b")
	g.Scalar("rate", 30000.0)
	g.Scalar("session_description", "mouse V1")

	tests := []struct {
		name  string
		kind  WindowKind
		rows  int
		cell0 string
	}{
		{"rates", WindowTable, 2, "0.5"},
		{"counts", WindowTable, 3, "-1"},
		{"ids", WindowTable, 1, "7"},
		{"mask", WindowTable, 2, "true"},
		{"labels", WindowTable, 2, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := g.Dataset(tt.name)
			require.NoError(t, err)
			w := OpenDataset("k", ds)
			require.Equal(t, tt.kind, w.Kind)
			require.NotNil(t, w.Table)
			assert.True(t, w.Open)
			assert.Equal(t, tt.rows, w.Table.Len())
			assert.Equal(t, tt.cell0, w.Table.Cell(0))
			assert.Equal(t, "/"+tt.name, w.Title)
		})
	}

	ds, err := g.Dataset("rate")
	require.NoError(t, err)
	w := OpenDataset("k", ds)
	require.Equal(t, WindowScalar, w.Kind)
	assert.Equal(t, KindFloat, w.Scalar.Kind)
	assert.Equal(t, 30000.0, w.Scalar.Value)
	assert.Equal(t, "30000", w.Scalar.Text)

	ds, err = g.Dataset("/session_description")
	require.NoError(t, err)
	w = OpenDataset("k", ds)
	require.Equal(t, WindowScalar, w.Kind)
	assert.Equal(t, "mouse V1", w.Scalar.Text)
}

func TestOpenDataset_Errors(t *testing.T) {
	f := hdftest.NewFile()
	g := f.RootGroup()
	g.Compound("events", 4)
	g.Floats("broken", 1, 2).ReadErr = errors.New("checksum mismatch")
	g.Floats("nodesc", 1).DescErr = errors.New("bad datatype message")

	ds, err := g.Dataset("events")
	require.NoError(t, err)
	w := OpenDataset("file#/events", ds)
	require.Equal(t, WindowError, w.Kind)
	assert.Equal(t, "file#/events", w.Key)
	assert.ErrorIs(t, w.Error.Err, ErrUnsupportedType)
	assert.Contains(t, w.Error.Message, "compound")
	assert.Nil(t, w.Table)

	ds, err = g.Dataset("broken")
	require.NoError(t, err)
	w = OpenDataset("k", ds)
	require.Equal(t, WindowError, w.Kind)
	assert.ErrorIs(t, w.Error.Err, ErrReadFailed)
	assert.Contains(t, w.Error.Message, "checksum mismatch")

	ds, err = g.Dataset("nodesc")
	require.NoError(t, err)
	w = OpenDataset("k", ds)
	require.Equal(t, WindowError, w.Kind)
	assert.ErrorIs(t, w.Error.Err, ErrReadFailed)

	w.Acknowledge()
	assert.False(t, w.Open)
}

func TestNewPlot(t *testing.T) {
	p, err := NewPlot("ts", []float64{0, 1, 2}, []float64{3, math.NaN(), -1})
	require.NoError(t, err)
	assert.Equal(t, -1.0, p.Min)
	assert.Equal(t, 3.0, p.Max)
	assert.Equal(t, 1, p.Step)
	assert.False(t, p.IndexX)

	p, err = NewPlot("idx", nil, []float64{5, 6})
	require.NoError(t, err)
	assert.True(t, p.IndexX)
	assert.Equal(t, []float64{0, 1}, p.X)

	_, err = NewPlot("bad", []float64{0}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	p, err = NewPlot("empty", nil, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p.Min))
	assert.True(t, math.IsNaN(p.Max))
}

func TestPlot_PointsDecimatesWithoutMutating(t *testing.T) {
	n := 20001
	y := make([]float64, n)
	for i := range y {
		y[i] = float64(i * 2)
	}
	p, err := NewPlot("long", nil, y)
	require.NoError(t, err)
	require.Equal(t, 125, p.Step)

	xs, ys := p.Points()
	require.Len(t, xs, (n+124)/125)
	assert.Equal(t, 0.0, xs[0])
	assert.Equal(t, 125.0, xs[1])
	assert.Equal(t, 250.0, ys[1])
	assert.Equal(t, 20000.0, xs[len(xs)-1])

	assert.Len(t, p.Y, n)
	assert.Len(t, p.X, n)
}

func TestLoadPlot(t *testing.T) {
	f := hdftest.NewFile()
	ts := f.Group("/acquisition/ts")
	ts.Floats("data", 1, 4, 2)
	ts.Floats("timestamps", 0.1, 0.2, 0.3)

	p, err := LoadPlot(ts)
	require.NoError(t, err)
	assert.Equal(t, "/acquisition/ts", p.Title)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, p.X)
	assert.Equal(t, 4.0, p.Max)

	ints := f.Group("/acquisition/counts")
	ints.Ints("data", 1, 2)
	p, err = LoadPlot(ints)
	require.NoError(t, err)
	assert.True(t, p.IndexX)
	assert.Equal(t, []float64{1, 2}, p.Y)

	_, err = LoadPlot(f.Group("/empty"))
	assert.ErrorIs(t, err, ErrMissingData)

	bad := f.Group("/acquisition/bad")
	bad.Floats("data", 1, 2)
	bad.Floats("timestamps", 1)
	_, err = LoadPlot(bad)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	unreadable := f.Group("/acquisition/unreadable")
	unreadable.Floats("data", 1)
	unreadable.Floats("timestamps", 1).ReadErr = errors.New("io")
	_, err = LoadPlot(unreadable)
	assert.ErrorIs(t, err, ErrReadFailed)

	w := OpenPlot("k", bad)
	assert.Equal(t, WindowError, w.Kind)
	w = OpenPlot("k", ts)
	assert.Equal(t, WindowPlot, w.Kind)
	assert.Equal(t, "Plot /acquisition/ts", w.Title)
}

func TestKeys(t *testing.T) {
	k := Key("/data/a.nwb", "/acquisition/ts/data")
	assert.Equal(t, "/data/a.nwb#/acquisition/ts/data", k)
	assert.Equal(t, "/acquisition/ts/data", ObjectPath("/data/a.nwb", k))

	pk := PlotKey("/data/a.nwb", "/acquisition/ts")
	assert.NotEqual(t, Key("/data/a.nwb", "/acquisition/ts"), pk)
	assert.Equal(t, "/acquisition/ts", ObjectPath("/data/a.nwb", pk))

	hashed := "/tmp/run#/a.nwb"
	assert.Equal(t, "/x", ObjectPath(hashed, Key(hashed, "/x")))
	assert.Equal(t, "/ts", ObjectPath(hashed, PlotKey(hashed, "/ts")))

	assert.Equal(t, "", ObjectPath("/data/a.nwb", "no-separator"))
	assert.Equal(t, "", ObjectPath("/data/b.nwb", k))
}
