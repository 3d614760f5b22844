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
	"bytes"
	"errors"
	"io"
	"os"
)

// Signature is the 8-byte HDF5 format signature.
var Signature = []byte("\x89HDF\r\n\x1a\n")

// IsContainer reports whether the file at path carries an HDF5 superblock
// signature. The superblock may sit at offset 0, 512, 1024, 2048 and so on.
func IsContainer(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, len(Signature))
	for off := int64(0); ; off = nextOffset(off) {
		_, err := f.ReadAt(buf, off)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if bytes.Equal(buf, Signature) {
			return true, nil
		}
	}
}

func nextOffset(off int64) int64 {
	if off == 0 {
		return 512
	}
	return off * 2
}
