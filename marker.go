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

package hookit

import (
	"reflect"
	"sync"
)

// funcIdentity returns a stable key for a function value. Go functions
// carry no addressable field to attach metadata to (there is no
// attribute-carrying decorator equivalent), so markers key off the
// function pointer instead — the same "registry keyed by implementation
// identity" workaround the host language forces for decorator-attached
// configuration.
func funcIdentity(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// HookspecMarker produces hookspec decorations for one project. It is
// stateless apart from the identity->config registry, and safe to share
// across goroutines that only call Mark/ConfigFor.
type HookspecMarker struct {
	project *ProjectSpec

	mu     sync.Mutex
	byFunc map[uintptr]SpecConfig
}

// NewHookspecMarker builds a marker namespaced to the given project.
func NewHookspecMarker(project *ProjectSpec) *HookspecMarker {
	return &HookspecMarker{project: project, byFunc: map[uintptr]SpecConfig{}}
}

// Mark attaches a SpecConfig to fn, rejecting historic+firstresult at
// mark time, and returns fn unchanged so it can be used inline.
func (m *HookspecMarker) Mark(fn any, opts ...SpecOption) (any, error) {
	cfg, err := NewSpecConfig(opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.byFunc[funcIdentity(fn)] = cfg
	m.mu.Unlock()
	return fn, nil
}

// ConfigFor returns the SpecConfig attached by Mark, if any.
func (m *HookspecMarker) ConfigFor(fn any) (SpecConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.byFunc[funcIdentity(fn)]
	return cfg, ok
}

// HookimplMarker produces hookimpl decorations for one project.
type HookimplMarker struct {
	project *ProjectSpec

	mu     sync.Mutex
	byFunc map[uintptr]ImplConfig
}

// NewHookimplMarker builds a marker namespaced to the given project.
func NewHookimplMarker(project *ProjectSpec) *HookimplMarker {
	return &HookimplMarker{project: project, byFunc: map[uintptr]ImplConfig{}}
}

// Mark attaches an ImplConfig to fn, rejecting wrapper+hookwrapper at
// mark time.
func (m *HookimplMarker) Mark(fn any, opts ...ImplOption) (any, error) {
	cfg, err := NewImplConfig(opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.byFunc[funcIdentity(fn)] = cfg
	m.mu.Unlock()
	return fn, nil
}

// ConfigFor returns the ImplConfig attached by Mark, if any.
func (m *HookimplMarker) ConfigFor(fn any) (ImplConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.byFunc[funcIdentity(fn)]
	return cfg, ok
}
