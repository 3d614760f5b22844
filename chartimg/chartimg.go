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

// Package chartimg renders plot windows to raster images with go-chart.
package chartimg

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"nwbview/detail"
	"nwbview/snapshot"
)

// ErrNoPoints is returned when a plot has no finite point to draw.
var ErrNoPoints = errors.New("no finite points to plot")

// Size is a chart size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the plot window of the desktop viewer.
var DefaultSize = Size{Width: 800, Height: 400}

// finite keeps the pairs where both coordinates are finite.
func finite(xs, ys []float64) ([]float64, []float64) {
	fx := make([]float64, 0, len(xs))
	fy := make([]float64, 0, len(ys))
	for i := range xs {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			fx = append(fx, xs[i])
			fy = append(fy, ys[i])
		}
	}
	return fx, fy
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// axisRange returns an explicit range when all values are equal, since
// go-chart cannot scale a zero-width range.
func axisRange(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi > lo {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// Chart builds the go-chart description of p using its decimated points.
func Chart(p *detail.Plot, size Size) (*chart.Chart, error) {
	xs, ys := finite(p.Points())
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: %w", p.Title, ErrNoPoints)
	}
	// Pad to at least two X values for go-chart
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}

	xName := "time"
	if p.IndexX {
		xName = "index"
	}
	ch := &chart.Chart{
		Title:  p.Title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: xName, Range: axisRange(xs)},
		YAxis: chart.YAxis{Name: snapshot.DataName, Range: axisRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    p.Title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 1.5,
				},
			},
		},
	}
	return ch, nil
}

// PNG renders p to PNG bytes.
func PNG(p *detail.Plot, size Size) ([]byte, error) {
	ch, err := Chart(p, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", p.Title, err)
	}
	return buf.Bytes(), nil
}

// Image renders p and decodes the result for display.
func Image(p *detail.Plot, size Size) (image.Image, error) {
	data, err := PNG(p, size)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.Title, err)
	}
	return img, nil
}
