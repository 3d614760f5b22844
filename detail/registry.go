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

// Registry maps keys to open detail windows. A key is present iff its view
// is meant to be visible. It is owned by the UI frame and is not safe for
// concurrent use.
type Registry struct {
	windows map[string]*Window
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[string]*Window)}
}

// Ensure returns the open window for key, building and inserting it first if
// absent. The window is owned by file. A window whose Open flag was cleared is
// rebuilt. The bool reports whether build ran.
func (r *Registry) Ensure(file, key string, build func() *Window) (*Window, bool) {
	if w, ok := r.windows[key]; ok {
		if w.Open {
			return w, false
		}
		r.remove(key)
	}
	w := build()
	w.Key = key
	w.File = file
	w.Open = true
	r.windows[key] = w
	r.order = append(r.order, key)
	return w, true
}

// Get returns the window for key.
func (r *Registry) Get(key string) (*Window, bool) {
	w, ok := r.windows[key]
	return w, ok
}

// Has reports whether key is open.
func (r *Registry) Has(key string) bool {
	w, ok := r.windows[key]
	return ok && w.Open
}

// Remove drops key and its data. It reports whether the key was present.
func (r *Registry) Remove(key string) bool {
	if _, ok := r.windows[key]; !ok {
		return false
	}
	r.remove(key)
	return true
}

func (r *Registry) remove(key string) {
	delete(r.windows, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Windows returns the windows in insertion order.
func (r *Registry) Windows() []*Window {
	out := make([]*Window, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.windows[k])
	}
	return out
}

// Len returns the number of windows.
func (r *Registry) Len() int {
	return len(r.order)
}

// SweepClosed removes windows whose Open flag is false and returns their keys.
func (r *Registry) SweepClosed() []string {
	var removed []string
	for _, k := range r.Keys() {
		if !r.windows[k].Open {
			r.remove(k)
			removed = append(removed, k)
		}
	}
	return removed
}

// DropFile removes every window owned by file and returns their keys.
func (r *Registry) DropFile(file string) []string {
	var removed []string
	for _, k := range r.Keys() {
		if r.windows[k].File == file {
			r.remove(k)
			removed = append(removed, k)
		}
	}
	return removed
}
