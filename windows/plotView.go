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

package windows

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"nwbview/chartimg"
	"nwbview/detail"
)

// newPlotView renders p as an image with its bounds underneath.
func newPlotView(p *detail.Plot, size chartimg.Size) fyne.CanvasObject {
	stats := widget.NewLabel(plotStats(p))
	stats.TextStyle = fyne.TextStyle{Italic: true}

	img, err := chartimg.Image(p, size)
	if err != nil {
		msg := widget.NewLabel(fmt.Sprintf("Cannot render %s: %v", p.Title, err))
		msg.Wrapping = fyne.TextWrapWord
		return container.NewVBox(msg, stats)
	}

	chart := canvas.NewImageFromImage(img)
	chart.FillMode = canvas.ImageFillContain
	chart.SetMinSize(fyne.NewSize(float32(size.Width)/2, float32(size.Height)/2))
	return container.NewBorder(nil, stats, nil, nil, chart)
}

func plotStats(p *detail.Plot) string {
	s := fmt.Sprintf("min value: %v   max value: %v   samples: %d", p.Min, p.Max, p.Len())
	if p.Step > 1 {
		s += fmt.Sprintf("   drawing every %d samples", p.Step)
	}
	return s
}
