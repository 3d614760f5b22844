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

package cli

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"nwbview/chartimg"
	"nwbview/datatable"
	"nwbview/datatable/filter"
	"nwbview/detail"
	"nwbview/export"
	"nwbview/hdf"
	"nwbview/snapshot"
)

// plotMarker follows groups that can be plotted.
const plotMarker = "[plot]"

func openSnapshot(p string) (*snapshot.FileSnapshot, error) {
	canonical, err := snapshot.Canonicalize(p)
	if err != nil {
		return nil, err
	}
	return snapshot.OpenFile(canonical, openFile)
}

func findGroup(snap *snapshot.FileSnapshot, groupPath string) (*snapshot.GroupNode, error) {
	node := snap.Root.Find(path.Join("/", groupPath))
	if node == nil {
		return nil, fmt.Errorf("group %s not found in %s", path.Join("/", groupPath), snap.Name())
	}
	return node, nil
}

// openWindow builds the detail window for one dataset the same way the
// browser does when its toggle is switched on.
func openWindow(snap *snapshot.FileSnapshot, datasetPath string) (*detail.Window, error) {
	datasetPath = path.Join("/", datasetPath)
	node, err := findGroup(snap, path.Dir(datasetPath))
	if err != nil {
		return nil, err
	}
	ds, err := node.Handle.Dataset(datasetPath)
	if err != nil {
		return nil, err
	}
	w := detail.OpenDataset(detail.Key(snap.Path, datasetPath), ds)
	if w.Kind == detail.WindowError {
		return nil, fmt.Errorf("%s: %w", w.Error.Title, w.Error.Err)
	}
	return w, nil
}

func tableModel(w *detail.Window, query string) (*datatable.TableModel, error) {
	src, err := datatable.NewSeriesSource(w.Title, w.Table)
	if err != nil {
		return nil, err
	}
	model, err := datatable.NewTableModel(src)
	if err != nil {
		return nil, err
	}
	f, err := filter.Parse(query, model.ColumnNames())
	if err != nil {
		return nil, err
	}
	if f != nil {
		if err := model.SetFilter(f); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the group hierarchy of a file",
		Long: `Print every group and dataset of a file in declaration order.
Groups holding both a data and a timestamps dataset are marked ` + plotMarker + `.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := openSnapshot(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = snap.Close() }()

			GetLogger(cmd.Context()).Debug("loaded", "path", snap.Path)
			renderTree(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func renderTree(w io.Writer, snap *snapshot.FileSnapshot) {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedLight)

	l.AppendItem(snap.Name())
	l.Indent()
	appendGroup(l, snap.Root)
	l.UnIndent()
	l.Render()
}

func appendGroup(l list.Writer, node *snapshot.GroupNode) {
	item := node.Name()
	if node.HasPlotPair() {
		item += " " + plotMarker
	}
	l.AppendItem(item)
	if len(node.Subgroups) == 0 && len(node.DatasetPaths) == 0 {
		return
	}
	l.Indent()
	for _, sub := range node.Subgroups {
		appendGroup(l, sub)
	}
	for _, p := range node.DatasetPaths {
		l.AppendItem(hdf.Base(p))
	}
	l.UnIndent()
}

func newInfoCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "info <file> <dataset-path>",
		Short: "Show the type and first rows of a dataset",
		Long: `Open a dataset the way the browser does and print its type together with
its value (scalars) or its first table.preview_rows rows (arrays).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			snap, err := openSnapshot(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = snap.Close() }()

			w, err := openWindow(snap, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Dataset: %s\nType:    %s\n", w.Title, w.Descriptor)
			if w.Kind == detail.WindowScalar {
				_, _ = fmt.Fprintf(out, "Kind:    %s\nValue:   %s\n", w.Scalar.Kind, w.Scalar.Text)
				return nil
			}
			_, _ = fmt.Fprintf(out, "Kind:    %s\n", w.Table.Kind())

			model, err := tableModel(w, query)
			if err != nil {
				return err
			}
			return renderPreview(out, model, cfg.Table.PreviewRows)
		},
	}

	cmd.Flags().StringVarP(&query, "filter", "f", "", `Row filter, e.g. "index > 10 AND value < 3.5"`)
	return cmd
}

func renderPreview(w io.Writer, model *datatable.TableModel, limit int) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, 0, model.ColumnCount())
	for _, name := range model.ColumnNames() {
		header = append(header, name)
	}
	t.AppendHeader(header)

	shown := min(limit, model.VisibleRowCount())
	for i := 0; i < shown; i++ {
		values, err := model.VisibleRow(i)
		if err != nil {
			return err
		}
		row := make(table.Row, len(values))
		for j, v := range values {
			row[j] = v.Formatted
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(showing %d of %d rows)\n", shown, model.VisibleRowCount())
	return nil
}

func newPlotCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "plot <file> <group-path>",
		Short: "Render a group's data against its timestamps as PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			snap, err := openSnapshot(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = snap.Close() }()

			node, err := findGroup(snap, args[1])
			if err != nil {
				return err
			}
			w := detail.OpenPlot(detail.PlotKey(snap.Path, node.Path), node.Handle)
			if w.Kind == detail.WindowError {
				return fmt.Errorf("%s: %w", w.Error.Title, w.Error.Err)
			}

			data, err := chartimg.PNG(w.Plot, chartimg.Size{Width: cfg.Plot.Width, Height: cfg.Plot.Height})
			if err != nil {
				return err
			}
			if out == "" {
				out = strings.Trim(strings.ReplaceAll(node.Path, "/", "_"), "_") + ".png"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d samples, step %d, min value %v, max value %v\nWrote %s\n",
				w.Title, w.Plot.Len(), w.Plot.Step, w.Plot.Min, w.Plot.Max, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output PNG file (default: <group>.png)")
	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		out    string
		format string
		query  string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "export <file> <dataset-path>",
		Short: "Export a dataset's rows to Parquet, CSV or JSON",
		Long: `Export the (optionally filtered) rows of an array dataset. The format is
taken from --format, or from the extension of --output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--output is required")
			}
			if format == "" {
				format = filepath.Ext(out)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			snap, err := openSnapshot(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = snap.Close() }()

			w, err := openWindow(snap, args[1])
			if err != nil {
				return err
			}
			if w.Kind != detail.WindowTable {
				return fmt.Errorf("%s is a scalar; only array datasets can be exported", w.Title)
			}
			model, err := tableModel(w, query)
			if err != nil {
				return err
			}

			n, err := export.ToFile(model, out, export.Options{Format: f, Limit: limit})
			if err != nil {
				return err
			}
			GetLogger(cmd.Context()).Info("exported", "dataset", w.Title, "rows", n, "path", out)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file")
	cmd.Flags().StringVar(&format, "format", "", "parquet|csv|json")
	cmd.Flags().StringVarP(&query, "filter", "f", "", "Row filter")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to export (0 = all)")
	return cmd
}
