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
	"strings"

	"fyne.io/fyne/v2"
)

// cleanFilename turns an object path or title into a file name: separators
// and spaces become underscores and other special characters are dropped.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.Trim(name, "/ ") {
		switch {
		case r == ' ' || r == '/':
			b.WriteRune('_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}

// uriPaths returns the local paths of dropped or picked URIs.
func uriPaths(uris []fyne.URI) []string {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		if u == nil || u.Scheme() != "file" {
			continue
		}
		paths = append(paths, u.Path())
	}
	return paths
}
