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
	"fmt"
	"math"

	"nwbview/hdf"
	"nwbview/snapshot"
)

// DecimationThreshold is the largest series length plotted point for point.
const DecimationThreshold = 10000

// ComputeStepSize returns the plotting stride for a series of n points:
// 1 up to DecimationThreshold, otherwise ceil(log10(n))^3.
func ComputeStepSize(n int) int {
	if n <= DecimationThreshold {
		return 1
	}
	digits := 0
	for p := 1; p < n; p *= 10 {
		digits++
	}
	return digits * digits * digits
}

// Plot is a line view of Y against X. The series are never modified;
// decimation happens in Points.
type Plot struct {
	Title string
	X, Y  []float64
	// Min and Max of Y ignoring NaN; NaN when Y has no numbers.
	Min, Max float64
	Step     int
	// IndexX is set when X was synthesized as 0..len(Y)-1.
	IndexX bool
}

// NewPlot builds a plot. A nil x plots Y against its indices.
func NewPlot(title string, x, y []float64) (*Plot, error) {
	p := &Plot{Title: title, Y: y}
	if x == nil {
		x = make([]float64, len(y))
		for i := range x {
			x[i] = float64(i)
		}
		p.IndexX = true
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d timestamps for %d samples", ErrLengthMismatch, len(x), len(y))
	}
	p.X = x
	p.Min, p.Max = bounds(y)
	p.Step = ComputeStepSize(len(y))
	return p, nil
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.NaN(), math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Len returns the number of samples.
func (p *Plot) Len() int {
	return len(p.Y)
}

// Points returns the samples at indices 0, Step, 2*Step, ...
func (p *Plot) Points() (xs, ys []float64) {
	step := max(p.Step, 1)
	n := (len(p.Y) + step - 1) / step
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	for i := 0; i < len(p.Y); i += step {
		xs = append(xs, p.X[i])
		ys = append(ys, p.Y[i])
	}
	return xs, ys
}

// LoadPlot reads the "data" dataset of g as Y and "timestamps" as X. Without
// a timestamps dataset Y is plotted against its indices.
func LoadPlot(g hdf.Group) (*Plot, error) {
	data, err := g.Dataset(snapshot.DataName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no %q dataset: %w", ErrMissingData, g.Path(), snapshot.DataName, err)
	}
	y, err := data.ReadFloat64s()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, data.Path(), err)
	}

	var x []float64
	if ts, err := g.Dataset(snapshot.TimestampsName); err == nil {
		x, err = ts.ReadFloat64s()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, ts.Path(), err)
		}
	}
	return NewPlot(g.Path(), x, y)
}
