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

	"github.com/TimeWtr/hookit/internal/log"
)

// CallerKind reports which of the four HookCaller variants a Caller
// currently is. A Caller starts Unspecified and becomes Normal,
// FirstResult, or Historic the moment a spec is attached.
type CallerKind int

const (
	UnspecifiedCaller CallerKind = iota
	NormalCaller
	FirstResultCaller
	HistoricCaller
)

func (k CallerKind) String() string {
	switch k {
	case NormalCaller:
		return "normal"
	case FirstResultCaller:
		return "firstresult"
	case HistoricCaller:
		return "historic"
	default:
		return "unspecified"
	}
}

// historyEntry is one recorded callHistoric invocation.
type historyEntry struct {
	kwargs   map[string]any
	callback func(any)
}

// Caller is the per-hook-name dispatch state: an optional spec, two
// priority-ordered implementation lists, and — once historic — a call
// history replayed onto every late registrant.
type Caller struct {
	mu sync.RWMutex

	name   string
	spec   *HookSpec
	normal []*HookImpl
	wraps  []*HookImpl

	history []historyEntry

	logger  log.Logger
	monitor *monitorState
}

// NewCaller creates an unspecified caller for the given hook name.
func NewCaller(name string, logger log.Logger) *Caller {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Caller{name: name, logger: logger}
}

func (c *Caller) Name() string { return c.name }

func (c *Caller) Spec() *HookSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spec
}

func (c *Caller) HasSpec() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spec != nil
}

// Kind reports the caller's current variant.
func (c *Caller) Kind() CallerKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kindLocked()
}

func (c *Caller) kindLocked() CallerKind {
	if c.spec == nil {
		return UnspecifiedCaller
	}
	if c.spec.Config.Historic {
		return HistoricCaller
	}
	if c.spec.Config.FirstResult {
		return FirstResultCaller
	}
	return NormalCaller
}

func (c *Caller) IsHistoric() bool { return c.Kind() == HistoricCaller }

// SetSpec attaches spec to an unspecified caller, or rejects re-attaching
// a spec to a caller that already has one. Historic specs reject being
// attached to a caller that already carries wrapper impls. Any impl
// registered before the spec existed is re-validated against it — an
// impl declaring an argument the spec doesn't recognize, or any other
// §4.7 violation, fails the attach and leaves the caller unspecified,
// exactly as if AddHookSpecs had rejected it outright.
func (c *Caller) SetSpec(spec *HookSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spec != nil {
		return newValidationError(nil, "hook %q already has a specification", c.name)
	}
	if spec.Config.Historic && len(c.wraps) > 0 {
		return newValidationError(nil, "hook %q: cannot attach a historic spec while wrapper impls are registered", c.name)
	}

	c.spec = spec
	pending := append(append([]*HookImpl(nil), c.wraps...), c.normal...)
	for _, impl := range pending {
		if impl.Config.Optional {
			continue
		}
		if err := c.validateImplLocked(impl); err != nil {
			c.spec = nil
			return err
		}
	}
	return nil
}

// GetHookImpls returns a defensive copy of every implementation
// currently on this caller, wrappers before normal impls, each in
// forward (registration-ordered-within-class) list order.
func (c *Caller) GetHookImpls() []*HookImpl {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*HookImpl, 0, len(c.wraps)+len(c.normal))
	out = append(out, c.wraps...)
	out = append(out, c.normal...)
	return out
}

// insertOrdered inserts impl into list so that the list reads
// [trylast-run, plain-run, tryfirst-run], with each new arrival placed
// at the end of its own run. List order inside a run is therefore
// registration order, and reverse-list execution runs the most recently
// registered impl of each priority class first.
func insertOrdered(list []*HookImpl, impl *HookImpl) []*HookImpl {
	switch {
	case impl.Config.TryLast:
		idx := 0
		for idx < len(list) && list[idx].Config.TryLast {
			idx++
		}
		return insertAt(list, idx, impl)
	case impl.Config.TryFirst:
		return append(list, impl)
	default:
		idx := len(list)
		for idx > 0 && list[idx-1].Config.TryFirst {
			idx--
		}
		return insertAt(list, idx, impl)
	}
}

func insertAt(list []*HookImpl, idx int, impl *HookImpl) []*HookImpl {
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = impl
	return list
}

// AddImpl validates impl against the caller's spec (if any) and inserts
// it into the appropriate priority-ordered list. Historic callers reject
// wrapper impls and replay their recorded history onto the new impl.
func (c *Caller) AddImpl(impl *HookImpl) error {
	c.mu.Lock()

	kind := c.kindLocked()
	if kind == HistoricCaller && impl.IsWrapper() {
		c.mu.Unlock()
		return newValidationError(impl.Plugin, "hook %q is historic and cannot accept a wrapper impl", c.name)
	}

	if c.spec != nil {
		if err := c.validateImplLocked(impl); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	if impl.IsWrapper() {
		c.wraps = insertOrdered(c.wraps, impl)
	} else {
		c.normal = insertOrdered(c.normal, impl)
	}

	history := append([]historyEntry(nil), c.history...)
	c.mu.Unlock()

	if kind == HistoricCaller && impl.Kind == NormalKind {
		for _, h := range history {
			result, err := impl.Func(h.kwargs)
			if err != nil {
				c.logger.Error("historic replay failed", log.StringField("hook", c.name), log.ErrorField(err))
				continue
			}
			if h.callback != nil && result != nil {
				h.callback(result)
			}
		}
	}

	return nil
}

// validateImplLocked implements the §4.7 validation rules. Caller must
// hold c.mu.
func (c *Caller) validateImplLocked(impl *HookImpl) error {
	spec := c.spec

	if spec.Config.WarnOnImpl != "" {
		c.logger.Warn(spec.Config.WarnOnImpl, log.StringField("hook", c.name), log.StringField("plugin", impl.PluginName))
	}

	specArgs := make(map[string]bool, len(spec.ArgNames))
	for _, a := range spec.ArgNames {
		specArgs[a] = true
	}
	for _, a := range impl.ArgNames {
		if !specArgs[a] {
			return newValidationError(impl.Plugin, "hook %q: impl %q declares argument %q not present in spec(%v)", c.name, impl.PluginName, a, spec.ArgNames)
		}
		if spec.Config.WarnOnImplArgs != nil {
			if msg, ok := spec.Config.WarnOnImplArgs[a]; ok {
				c.logger.Warn(msg, log.StringField("hook", c.name), log.StringField("arg", a))
			}
		}
	}

	if impl.Config.Wrapper && impl.Config.HookWrapper {
		return newValidationError(impl.Plugin, "hook %q: impl %q sets both wrapper and hookwrapper", c.name, impl.PluginName)
	}

	return nil
}

// RemoveImpl removes every impl belonging to plugin from both lists.
func (c *Caller) RemoveImpl(plugin any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.normal = removePlugin(c.normal, plugin)
	c.wraps = removePlugin(c.wraps, plugin)
}

func removePlugin(list []*HookImpl, plugin any) []*HookImpl {
	out := list[:0:0]
	for _, impl := range list {
		if impl.Plugin != plugin {
			out = append(out, impl)
		}
	}
	return out
}

// Call dispatches to every registered impl with the given keyword
// arguments, in the order established by §4.3's insertion discipline,
// wrapped by every registered wrapper per §4.5. It is a fatal error to
// call a Historic caller this way.
func (c *Caller) Call(kwargs map[string]any) (any, error) {
	c.mu.RLock()
	if c.kindLocked() == HistoricCaller {
		c.mu.RUnlock()
		return nil, fmt.Errorf("hookit: hook %q is historic; use CallHistoric instead", c.name)
	}
	if c.spec != nil {
		if missing := c.spec.VerifyArgsProvided(kwargs); len(missing) > 0 {
			for _, m := range missing {
				c.logger.Warn("call is missing a declared argument", log.StringField("hook", c.name), log.StringField("arg", m))
			}
		}
	}
	normal := append([]*HookImpl(nil), c.normal...)
	wraps := append([]*HookImpl(nil), c.wraps...)
	firstResult := c.spec != nil && c.spec.Config.FirstResult
	logger := c.logger
	monitor := c.monitor
	name := c.name
	c.mu.RUnlock()

	if monitor != nil {
		if before, after := monitor.get(); before != nil || after != nil {
			all := append(append([]*HookImpl(nil), wraps...), normal...)
			if before != nil {
				before(name, all, kwargs)
			}
			result, err := multicall(normal, wraps, kwargs, firstResult, logger)
			if after != nil {
				after(result, name, all, kwargs, err)
			}
			return result, err
		}
	}

	return multicall(normal, wraps, kwargs, firstResult, logger)
}

// CallExtra runs extra as though each were registered as a plain normal
// impl for the duration of this one call; the permanent chain is never
// mutated. It is a fatal error on a Historic caller.
func (c *Caller) CallExtra(extra []HookFunc, kwargs map[string]any) (any, error) {
	c.mu.RLock()
	if c.kindLocked() == HistoricCaller {
		c.mu.RUnlock()
		return nil, fmt.Errorf("hookit: hook %q is historic; callExtra is not permitted", c.name)
	}
	normal := append([]*HookImpl(nil), c.normal...)
	wraps := append([]*HookImpl(nil), c.wraps...)
	firstResult := c.spec != nil && c.spec.Config.FirstResult
	logger := c.logger
	c.mu.RUnlock()

	for _, fn := range extra {
		normal = insertOrdered(normal, &HookImpl{Kind: NormalKind, Func: fn, PluginName: "<extra>"})
	}

	return multicall(normal, wraps, kwargs, firstResult, logger)
}

// Subset returns a SubsetHookCaller excluding impls from the given
// plugins.
func (c *Caller) Subset(removePlugins []any) *SubsetHookCaller {
	remove := make(map[any]bool, len(removePlugins))
	for _, p := range removePlugins {
		remove[p] = true
	}
	return &SubsetHookCaller{orig: c, remove: remove}
}
