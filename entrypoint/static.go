// Copyright 2025 TimeWtr
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package entrypoint

import "sync"

// StaticSource is an in-process entry registry: a host registers plugin
// constructors directly instead of relying on an installed distribution.
type StaticSource struct {
	mu     sync.RWMutex
	groups map[string][]Entry
}

// NewStaticSource builds an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{groups: map[string][]Entry{}}
}

// Register adds one entry to group.
func (s *StaticSource) Register(group string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group] = append(s.groups[group], entry)
}

// Entries returns a copy of the entries registered under group.
func (s *StaticSource) Entries(group string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.groups[group]))
	copy(out, s.groups[group])
	return out, nil
}
