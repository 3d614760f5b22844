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
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"nwbview/config"
)

// CustomTheme is the application palette. When variant is set it replaces
// the variant requested by the operating system.
type CustomTheme struct {
	variant *fyne.ThemeVariant
}

var _ fyne.Theme = (*CustomTheme)(nil)

// NewCustomTheme maps a config theme name to a theme.
func NewCustomTheme(name string) *CustomTheme {
	t := &CustomTheme{}
	switch name {
	case config.ThemeLight:
		t.force(theme.VariantLight)
	case config.ThemeDark:
		t.force(theme.VariantDark)
	}
	return t
}

func (m *CustomTheme) force(v fyne.ThemeVariant) {
	m.variant = &v
}

// Variant returns the variant colors are resolved with, given the one the
// system asks for.
func (m *CustomTheme) Variant(requested fyne.ThemeVariant) fyne.ThemeVariant {
	if m.variant != nil {
		return *m.variant
	}
	return requested
}

// Toggle flips between light and dark starting from the variant in effect.
func (m *CustomTheme) Toggle(current fyne.ThemeVariant) fyne.ThemeVariant {
	if m.Variant(current) == theme.VariantDark {
		m.force(theme.VariantLight)
	} else {
		m.force(theme.VariantDark)
	}
	return *m.variant
}

func (m *CustomTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	variant = m.Variant(variant)
	if variant == theme.VariantLight {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 0xf7, G: 0xf7, B: 0xf4, A: 0xff}
		case theme.ColorNameButton:
			return color.NRGBA{R: 0xe4, G: 0xef, B: 0xee, A: 0xff}
		case theme.ColorNamePrimary:
			return color.NRGBA{R: 0x00, G: 0x79, B: 0x6b, A: 0xff} // Teal
		case theme.ColorNameHover:
			return color.NRGBA{R: 0xb2, G: 0xdf, B: 0xdb, A: 0xff}
		case theme.ColorNameFocus:
			return color.NRGBA{R: 0x00, G: 0x5b, B: 0x4f, A: 0xff}
		case theme.ColorNameForeground:
			return color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xff}
		case theme.ColorNameInputBackground:
			return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		case theme.ColorNameSelection:
			return color.NRGBA{R: 0xc8, G: 0xe6, B: 0xe3, A: 0xff}
		}
	} else {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 0x1b, G: 0x1e, B: 0x20, A: 0xff}
		case theme.ColorNameButton:
			return color.NRGBA{R: 0x2a, G: 0x33, B: 0x35, A: 0xff}
		case theme.ColorNamePrimary:
			return color.NRGBA{R: 0x4d, G: 0xb6, B: 0xac, A: 0xff}
		case theme.ColorNameHover:
			return color.NRGBA{R: 0x34, G: 0x47, B: 0x48, A: 0xff}
		case theme.ColorNameFocus:
			return color.NRGBA{R: 0x80, G: 0xcb, B: 0xc4, A: 0xff}
		case theme.ColorNameForeground:
			return color.NRGBA{R: 0xe3, G: 0xe3, B: 0xe0, A: 0xff}
		case theme.ColorNameInputBackground:
			return color.NRGBA{R: 0x26, G: 0x2b, B: 0x2d, A: 0xff}
		case theme.ColorNameSelection:
			return color.NRGBA{R: 0x00, G: 0x69, B: 0x5c, A: 0xff}
		}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (m *CustomTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m *CustomTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m *CustomTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 6
	case theme.SizeNameScrollBar:
		return 10
	}
	return theme.DefaultTheme().Size(name)
}
