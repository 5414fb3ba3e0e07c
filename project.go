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

// Package hookit implements a plugin and hook dispatch engine: named hook
// specifications, plugin-contributed implementations, and an ordered
// dispatch chain with wrapping, short-circuit, and historic replay.
package hookit

// ProjectSpec names a hook-dispatch project. Multiple independent
// PluginManagers may share one ProjectSpec, or each may use its own; the
// name is stored on the managers and markers built from it and has no
// effect on dispatch.
type ProjectSpec struct {
	Name string
}

// NewProjectSpec builds a ProjectSpec with the given short project name.
// Prefer snake_case; it is never parsed.
func NewProjectSpec(name string) *ProjectSpec {
	return &ProjectSpec{Name: name}
}

// NewManager creates a fresh PluginManager for this project.
func (p *ProjectSpec) NewManager() *PluginManager {
	return newPluginManager(p)
}
