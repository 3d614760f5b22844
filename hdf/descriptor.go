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

package hdf

import (
	"fmt"
	"strconv"
	"strings"
)

// enumClassName is how the reader labels HDF5 enumerated types (class 8).
// h5py stores numpy bools as a one-byte enum {FALSE, TRUE}.
const enumClassName = "class_8"

// ParseInfo converts the summary produced by (*hdf5.Dataset).Info, e.g.
// "Dataset: float (size=8 bytes), 1D array [5], contiguous ...", into a
// TypeDescriptor.
func ParseInfo(info string) (TypeDescriptor, error) {
	var desc TypeDescriptor

	rest, ok := strings.CutPrefix(strings.TrimSpace(info), "Dataset:")
	if !ok {
		return desc, fmt.Errorf("unrecognised dataset info %q", info)
	}
	parts := strings.SplitN(strings.TrimSpace(rest), ", ", 3)
	if len(parts) < 2 {
		return desc, fmt.Errorf("unrecognised dataset info %q", info)
	}

	className, size, err := parseDatatype(parts[0])
	if err != nil {
		return desc, err
	}
	desc.Size = size
	desc.Class = classify(className, size)

	desc.Dims, err = parseDataspace(parts[1])
	if err != nil {
		return desc, err
	}
	return desc, nil
}

// parseDatatype splits "integer (size=4 bytes)" into its class name and size.
func parseDatatype(s string) (string, int, error) {
	name, sizePart, ok := strings.Cut(s, " (size=")
	if !ok {
		return "", 0, fmt.Errorf("unrecognised datatype %q", s)
	}
	sizeStr := strings.TrimSuffix(strings.TrimSpace(sizePart), " bytes)")
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return "", 0, fmt.Errorf("unrecognised datatype size %q: %w", s, err)
	}
	return strings.TrimSpace(name), size, nil
}

func classify(name string, size int) TypeClass {
	switch name {
	case "float":
		return ClassFloat
	case "integer":
		// The reader does not expose the sign bit of fixed-point types.
		return ClassSignedInt
	case "string":
		return ClassString
	case "compound":
		return ClassCompound
	case enumClassName:
		if size == 1 {
			return ClassBool
		}
		return ClassOther
	default:
		return ClassOther
	}
}

// parseDataspace understands "scalar", "null", "1D array [5]",
// "2D array [3 x 4]" and "3D array [2 3 4]".
func parseDataspace(s string) ([]uint64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "scalar":
		return nil, nil
	case "null":
		return []uint64{0}, nil
	}

	open := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if open < 0 || end < open {
		return nil, fmt.Errorf("unrecognised dataspace %q", s)
	}

	fields := strings.FieldsFunc(s[open+1:end], func(r rune) bool {
		return r == ' ' || r == 'x' || r == ','
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("unrecognised dataspace %q", s)
	}
	dims := make([]uint64, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unrecognised dataspace dimension %q: %w", f, err)
		}
		dims = append(dims, d)
	}
	return dims, nil
}
