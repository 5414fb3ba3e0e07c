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
	"fmt"
	"sync"

	"github.com/TimeWtr/hookit/entrypoint"
	"github.com/TimeWtr/hookit/internal/log"
	"github.com/TimeWtr/hookit/tracing"
)

// HookImplProvider is implemented by a value loaded through an
// entrypoint.Source that wants LoadEntrypoints to register it
// automatically: HookImpls declares the builder-style impl definitions
// for that plugin, the same shape passed to Register directly.
type HookImplProvider interface {
	HookImpls() []HookImplDef
}

// monitorState holds the before/after hook-call callbacks installed by
// AddHookCallMonitoring or EnableTracing. It is shared by pointer with
// every Caller the relay has ever produced, so toggling monitoring on a
// manager takes effect on callers created both before and after the
// call.
type monitorState struct {
	mu     sync.RWMutex
	before func(hookName string, impls []*HookImpl, kwargs map[string]any)
	after  func(outcome any, hookName string, impls []*HookImpl, kwargs map[string]any, err error)
}

func (m *monitorState) get() (
	func(hookName string, impls []*HookImpl, kwargs map[string]any),
	func(outcome any, hookName string, impls []*HookImpl, kwargs map[string]any, err error),
) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.before, m.after
}

func (m *monitorState) set(
	before func(hookName string, impls []*HookImpl, kwargs map[string]any),
	after func(outcome any, hookName string, impls []*HookImpl, kwargs map[string]any, err error),
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.before, m.after = before, after
}

// HookSpecDef is one builder-style hook specification declaration, the
// primary registration path of AddHookSpecs: argument names are stated
// explicitly rather than recovered by introspection.
type HookSpecDef struct {
	Name     string
	ArgNames []string
	Config   SpecConfig
}

// HookImplDef is one builder-style hook implementation declaration
// passed to Register. Exactly one of Func, Wrapper, or OldWrapper must
// be set, matching Config.Wrapper/Config.HookWrapper.
type HookImplDef struct {
	SpecName   string
	ArgNames   []string
	Config     ImplConfig
	Func       HookFunc
	Wrapper    WrapperFunc
	OldWrapper OldWrapperFunc
}

func (d HookImplDef) fn() any {
	switch {
	case d.Config.Wrapper:
		return d.Wrapper
	case d.Config.HookWrapper:
		return d.OldWrapper
	default:
		return d.Func
	}
}

type pluginEntry struct {
	plugin any
	name   string
	dist   entrypoint.DistInfo
}

// PluginManager is the central registry of plugins and hook
// implementations: it owns the HookRelay, the blocked-name set, and the
// registered-plugin table, and exposes every operation a host uses to
// assemble and later tear down a hook-dispatch project.
type PluginManager struct {
	project *ProjectSpec

	mu      sync.RWMutex
	relay   *HookRelay
	plugins []pluginEntry
	byName  map[string]any
	blocked map[string]bool
	monitor *monitorState
	logger  log.Logger
	specs   map[string]*HookSpec
	tracer  *tracing.Tracer
}

func newPluginManager(project *ProjectSpec) *PluginManager {
	logger := log.NewNop()
	relay := newHookRelay(logger)
	return &PluginManager{
		project: project,
		relay:   relay,
		byName:  map[string]any{},
		blocked: map[string]bool{},
		monitor: relay.monitor,
		logger:  logger,
		specs:   map[string]*HookSpec{},
	}
}

// SetLogger replaces the manager's diagnostic logger. It has no effect
// on callers already created; set it immediately after NewManager.
func (m *PluginManager) SetLogger(logger log.Logger) {
	if logger == nil {
		logger = log.NewNop()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
	m.relay.logger = logger
}

// AddHookSpecs declares every spec in defs under namespace, attaching
// each to its relay Caller. A duplicate name is rejected with a
// PluginValidationError.
func (m *PluginManager) AddHookSpecs(namespace string, defs ...HookSpecDef) error {
	for _, d := range defs {
		spec, err := NewHookSpec(namespace, d.Name, d.ArgNames, d.Config)
		if err != nil {
			return err
		}
		m.mu.Lock()
		if _, exists := m.specs[d.Name]; exists {
			m.mu.Unlock()
			return newValidationError(nil, "hook %q already has a specification", d.Name)
		}
		m.specs[d.Name] = spec
		m.mu.Unlock()

		caller := m.relay.Hook(d.Name)
		if err := caller.SetSpec(spec); err != nil {
			m.mu.Lock()
			delete(m.specs, d.Name)
			m.mu.Unlock()
			return err
		}
	}
	return nil
}

// Register adds plugin under pluginName, constructing and inserting a
// HookImpl for every HookImplDef given. Registration is all-or-nothing:
// if any impl fails validation, nothing from this call is left attached.
// A blocked name, or a name already registered, is rejected outright.
func (m *PluginManager) Register(pluginName string, plugin any, defs ...HookImplDef) (string, error) {
	m.mu.Lock()
	if m.blocked[pluginName] {
		m.mu.Unlock()
		return "", newValidationError(plugin, "plugin name %q is blocked", pluginName)
	}
	if _, exists := m.byName[pluginName]; exists {
		m.mu.Unlock()
		return "", newValidationError(plugin, "plugin %q is already registered", pluginName)
	}
	m.byName[pluginName] = plugin
	m.plugins = append(m.plugins, pluginEntry{plugin: plugin, name: pluginName})
	m.mu.Unlock()

	var added []*HookImpl
	var callers []*Caller
	for _, d := range defs {
		cfg := d.Config
		if cfg.SpecName == "" {
			cfg.SpecName = d.SpecName
		}
		impl, err := NewHookImpl(pluginName, plugin, d.ArgNames, cfg, d.fn())
		if err != nil {
			m.rollbackRegister(pluginName, added, callers)
			return "", err
		}
		caller := m.relay.Hook(cfg.SpecName)
		if err := caller.AddImpl(impl); err != nil {
			m.rollbackRegister(pluginName, added, callers)
			return "", err
		}
		added = append(added, impl)
		callers = append(callers, caller)
	}

	return pluginName, nil
}

func (m *PluginManager) rollbackRegister(pluginName string, added []*HookImpl, callers []*Caller) {
	for i, impl := range added {
		callers[i].RemoveImpl(impl.Plugin)
	}
	m.mu.Lock()
	delete(m.byName, pluginName)
	out := m.plugins[:0:0]
	for _, p := range m.plugins {
		if p.name != pluginName {
			out = append(out, p)
		}
	}
	m.plugins = out
	m.mu.Unlock()
}

// Unregister removes every impl contributed by pluginOrName, which may
// be either the plugin value itself or the name it was registered
// under.
func (m *PluginManager) Unregister(pluginOrName any) error {
	m.mu.Lock()
	name, plugin, ok := m.resolveLocked(pluginOrName)
	if !ok {
		m.mu.Unlock()
		return newValidationError(pluginOrName, "plugin is not registered")
	}
	delete(m.byName, name)
	out := m.plugins[:0:0]
	for _, p := range m.plugins {
		if p.name != name {
			out = append(out, p)
		}
	}
	m.plugins = out
	m.mu.Unlock()

	for _, hookName := range m.relay.Names() {
		m.relay.Hook(hookName).RemoveImpl(plugin)
	}
	return nil
}

// resolveLocked resolves pluginOrName to (name, plugin, found). Caller
// must hold m.mu.
func (m *PluginManager) resolveLocked(pluginOrName any) (string, any, bool) {
	if name, ok := pluginOrName.(string); ok {
		plugin, ok := m.byName[name]
		return name, plugin, ok
	}
	for _, p := range m.plugins {
		if p.plugin == pluginOrName {
			return p.name, p.plugin, true
		}
	}
	return "", nil, false
}

// SetBlocked marks name as blocked: future Register calls under this
// name are rejected, regardless of whether a plugin by that name was
// ever registered.
func (m *PluginManager) SetBlocked(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked[name] = true
}

// Unblock clears a previously blocked name.
func (m *PluginManager) Unblock(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocked, name)
}

// IsBlocked reports whether name is currently blocked.
func (m *PluginManager) IsBlocked(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocked[name]
}

// CheckPending re-validates every hook that has a spec against the
// non-optional implementations attached to it, and rejects any hook
// without a spec that carries a non-optional implementation, returning
// the first violation found. Register accepts an impl whose hook has no
// spec yet; CheckPending is the explicit checkpoint where such impls are
// caught.
func (m *PluginManager) CheckPending() error {
	m.mu.RLock()
	names := make([]string, 0, len(m.specs))
	for n := range m.specs {
		names = append(names, n)
	}
	m.mu.RUnlock()

	for _, name := range names {
		caller := m.relay.Hook(name)
		for _, impl := range caller.GetHookImpls() {
			if impl.Config.Optional {
				continue
			}
			caller.mu.RLock()
			err := caller.validateImplLocked(impl)
			caller.mu.RUnlock()
			if err != nil {
				return err
			}
		}
	}

	for _, name := range m.relay.Names() {
		caller := m.relay.Hook(name)
		if caller.HasSpec() {
			continue
		}
		for _, impl := range caller.GetHookImpls() {
			if !impl.Config.Optional {
				return newValidationError(impl.Plugin, "unknown hook %q in plugin %q", name, impl.PluginName)
			}
		}
	}
	return nil
}

// LoadEntrypoints discovers entries under group from source, invokes
// each entry's Loader, and registers the resulting value as a plugin
// named after the entry. name, if non-nil, restricts discovery to the
// single matching entry. An entry whose name is already registered or
// blocked is skipped rather than aborting the remainder of the group.
// It returns the count of plugins registered.
func (m *PluginManager) LoadEntrypoints(source entrypoint.Source, group string, name *string) (int, error) {
	entries, err := source.Entries(group)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if name != nil && e.Name != *name {
			continue
		}
		if m.IsBlocked(e.Name) || m.HasPlugin(e.Name) {
			continue
		}
		plugin, err := e.Loader()
		if err != nil {
			return count, err
		}

		var defs []HookImplDef
		if provider, ok := plugin.(HookImplProvider); ok {
			defs = provider.HookImpls()
		}

		if _, err := m.Register(e.Name, plugin, defs...); err != nil {
			return count, err
		}

		m.mu.Lock()
		for i := range m.plugins {
			if m.plugins[i].name == e.Name {
				m.plugins[i].dist = e.Dist
			}
		}
		m.mu.Unlock()

		count++
	}
	return count, nil
}

// AddHookCallMonitoring installs before/after callbacks invoked around
// every Caller.Call on every hook this manager's relay knows about,
// present and future. Dispatches through CallExtra, CallHistoric, or a
// SubsetHookCaller do not invoke the callbacks. It returns an undo func
// that restores the prior (possibly nil) callbacks.
func (m *PluginManager) AddHookCallMonitoring(
	before func(hookName string, impls []*HookImpl, kwargs map[string]any),
	after func(outcome any, hookName string, impls []*HookImpl, kwargs map[string]any, err error),
) func() {
	prevBefore, prevAfter := m.monitor.get()
	m.monitor.set(before, after)
	return func() {
		m.monitor.set(prevBefore, prevAfter)
	}
}

// EnableTracing wires a tracing.Tracer into AddHookCallMonitoring,
// emitting two messages tagged "hookit" per monitored call: one before
// dispatch with the hook name and kwargs, and one after it with the
// result or error, indenting around nested calls the way pluggy's built-in tracer
// brackets a hook call's own inner calls. It returns an undo func that
// both removes the monitoring hook and restores any tracer previously
// installed by a prior EnableTracing call.
func (m *PluginManager) EnableTracing(t *tracing.Tracer) func() {
	m.mu.Lock()
	prevTracer := m.tracer
	m.tracer = t
	m.mu.Unlock()

	sub := t.Get("hookit")
	before := func(hookName string, impls []*HookImpl, kwargs map[string]any) {
		sub.Call(fmt.Sprintf("%s(%v)", hookName, kwargs))
		t.EnterIndent()
	}
	after := func(outcome any, hookName string, impls []*HookImpl, kwargs map[string]any, err error) {
		t.ExitIndent()
		if err != nil {
			sub.Call(fmt.Sprintf("%s finished with error", hookName), tracing.KeyValue("error", err))
			return
		}
		sub.Call(fmt.Sprintf("%s finished", hookName), tracing.KeyValue("result", outcome))
	}

	undoMonitor := m.AddHookCallMonitoring(before, after)
	return func() {
		undoMonitor()
		m.mu.Lock()
		m.tracer = prevTracer
		m.mu.Unlock()
	}
}

// SubsetHookCaller returns a caller for name that excludes impls
// contributed by any plugin in plugins.
func (m *PluginManager) SubsetHookCaller(name string, plugins []any) *SubsetHookCaller {
	return m.relay.Hook(name).Subset(plugins)
}

// Hook returns the relay's Caller for name, creating an unspecified one
// on first reference.
func (m *PluginManager) Hook(name string) *Caller {
	return m.relay.Hook(name)
}

// ListNamePlugin returns every (name, plugin) pair currently registered.
func (m *PluginManager) ListNamePlugin() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.byName))
	for k, v := range m.byName {
		out[k] = v
	}
	return out
}

// ListPluginDistinfo returns the distribution metadata recorded for
// every entry-point-loaded plugin; plugins registered directly via
// Register carry a zero-value DistInfo.
func (m *PluginManager) ListPluginDistinfo() map[string]entrypoint.DistInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]entrypoint.DistInfo, len(m.plugins))
	for _, p := range m.plugins {
		out[p.name] = p.dist
	}
	return out
}

// GetPlugin returns the plugin registered under name, or nil.
func (m *PluginManager) GetPlugin(name string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byName[name]
}

// GetName returns the name plugin was registered under, or "" if it is
// not registered.
func (m *PluginManager) GetName(plugin any) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plugins {
		if p.plugin == plugin {
			return p.name
		}
	}
	return ""
}

// HasPlugin reports whether name is currently registered.
func (m *PluginManager) HasPlugin(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byName[name]
	return ok
}

// GetPlugins returns every currently registered plugin value.
func (m *PluginManager) GetPlugins() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]any, 0, len(m.plugins))
	for _, p := range m.plugins {
		out = append(out, p.plugin)
	}
	return out
}

// IsRegistered reports whether plugin is currently registered under any
// name.
func (m *PluginManager) IsRegistered(plugin any) bool {
	return m.GetName(plugin) != ""
}

// GetHookcallers returns every Caller that plugin has contributed an
// impl to.
func (m *PluginManager) GetHookcallers(plugin any) []*Caller {
	var out []*Caller
	for _, name := range m.relay.Names() {
		caller := m.relay.Hook(name)
		for _, impl := range caller.GetHookImpls() {
			if impl.Plugin == plugin {
				out = append(out, caller)
				break
			}
		}
	}
	return out
}
