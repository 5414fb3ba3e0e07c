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

// ImplKind tags which of the three HookImpl variants a given
// implementation is.
type ImplKind int

const (
	NormalKind ImplKind = iota
	NewWrapperKind
	OldWrapperKind
)

// HookFunc is a normal (non-wrapping) implementation: it receives the
// call's keyword arguments and returns a value or an error.
type HookFunc func(kwargs map[string]any) (any, error)

// NextFunc runs the remainder of the dispatch chain — every wrapper and
// normal impl inside this one — and returns the resulting Result. Calling
// it is the Go stand-in for a Python generator's single yield point.
type NextFunc func() *Result

// WrapperFunc is a new-style wrapper: code before calling next is setup,
// code after next returns is teardown. It must call next exactly once.
// Its own return value (or error) replaces the outcome.
type WrapperFunc func(kwargs map[string]any, next NextFunc) (any, error)

// OldWrapperFunc is an old-style (hookwrapper) implementation. It must
// call next exactly once and may mutate the *Result it receives in
// place; it has no return value of its own. A panic raised after next
// returns is treated as a teardown exception: logged, then propagated.
type OldWrapperFunc func(kwargs map[string]any, next NextFunc)

// HookImpl is one registered implementation: a tagged union over the
// three variants, plus the attributes shared across all of them.
type HookImpl struct {
	Kind       ImplKind
	Func       HookFunc
	Wrapper    WrapperFunc
	OldWrapper OldWrapperFunc

	ArgNames   []string
	Plugin     any
	PluginName string
	Config     ImplConfig
}

// NewHookImpl constructs the HookImpl variant matching cfg, validating
// that fn has the shape that variant requires. It is the Go analogue of
// pluggy's create_hookimpl factory, which picks WrapperImpl vs HookImpl
// from the impl's wrapper/hookwrapper flags.
func NewHookImpl(pluginName string, plugin any, argNames []string, cfg ImplConfig, fn any) (*HookImpl, error) {
	impl := &HookImpl{ArgNames: argNames, Plugin: plugin, PluginName: pluginName, Config: cfg}

	switch {
	case cfg.Wrapper:
		wf, ok := fn.(WrapperFunc)
		if !ok {
			return nil, newValidationError(plugin, "impl %q is marked wrapper=true but its function is not a WrapperFunc", pluginName)
		}
		impl.Kind = NewWrapperKind
		impl.Wrapper = wf
	case cfg.HookWrapper:
		of, ok := fn.(OldWrapperFunc)
		if !ok {
			return nil, newValidationError(plugin, "impl %q is marked hookwrapper=true but its function is not an OldWrapperFunc", pluginName)
		}
		impl.Kind = OldWrapperKind
		impl.OldWrapper = of
	default:
		hf, ok := fn.(HookFunc)
		if !ok {
			return nil, newValidationError(plugin, "impl %q is not a HookFunc", pluginName)
		}
		impl.Kind = NormalKind
		impl.Func = hf
	}

	return impl, nil
}

// IsWrapper reports whether this impl is either wrapper variant.
func (h *HookImpl) IsWrapper() bool {
	return h.Kind == NewWrapperKind || h.Kind == OldWrapperKind
}
