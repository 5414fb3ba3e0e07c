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

import "fmt"

// SubsetHookCaller is a read-only, lazily-filtering proxy over a Caller:
// every call re-reads the underlying caller's current impl lists and
// drops any whose plugin is in the exclusion set. It never mutates the
// underlying caller, and always reflects its latest registrations.
type SubsetHookCaller struct {
	orig   *Caller
	remove map[any]bool
}

func (s *SubsetHookCaller) Name() string     { return s.orig.Name() }
func (s *SubsetHookCaller) Spec() *HookSpec  { return s.orig.Spec() }
func (s *SubsetHookCaller) HasSpec() bool    { return s.orig.HasSpec() }
func (s *SubsetHookCaller) IsHistoric() bool { return s.orig.IsHistoric() }

func (s *SubsetHookCaller) filter(list []*HookImpl) []*HookImpl {
	out := make([]*HookImpl, 0, len(list))
	for _, impl := range list {
		if !s.remove[impl.Plugin] {
			out = append(out, impl)
		}
	}
	return out
}

// GetHookImpls returns the underlying caller's impls minus the excluded
// plugins'.
func (s *SubsetHookCaller) GetHookImpls() []*HookImpl {
	return s.filter(s.orig.GetHookImpls())
}

// Call dispatches to the filtered impl set through the same engine as
// Caller.Call. Unlike Caller.Call, it does not log missing declared
// arguments and does not invoke the manager's call monitoring.
func (s *SubsetHookCaller) Call(kwargs map[string]any) (any, error) {
	s.orig.mu.RLock()
	if s.orig.kindLocked() == HistoricCaller {
		s.orig.mu.RUnlock()
		return nil, fmt.Errorf("hookit: hook %q is historic; use CallHistoric instead", s.orig.name)
	}
	normal := s.filter(append([]*HookImpl(nil), s.orig.normal...))
	wraps := s.filter(append([]*HookImpl(nil), s.orig.wraps...))
	firstResult := s.orig.spec != nil && s.orig.spec.Config.FirstResult
	logger := s.orig.logger
	s.orig.mu.RUnlock()

	return multicall(normal, wraps, kwargs, firstResult, logger)
}

// CallExtra mirrors Caller.CallExtra against the filtered impl set.
func (s *SubsetHookCaller) CallExtra(extra []HookFunc, kwargs map[string]any) (any, error) {
	s.orig.mu.RLock()
	if s.orig.kindLocked() == HistoricCaller {
		s.orig.mu.RUnlock()
		return nil, fmt.Errorf("hookit: hook %q is historic; callExtra is not permitted", s.orig.name)
	}
	normal := s.filter(append([]*HookImpl(nil), s.orig.normal...))
	wraps := s.filter(append([]*HookImpl(nil), s.orig.wraps...))
	firstResult := s.orig.spec != nil && s.orig.spec.Config.FirstResult
	logger := s.orig.logger
	s.orig.mu.RUnlock()

	for _, fn := range extra {
		normal = insertOrdered(normal, &HookImpl{Kind: NormalKind, Func: fn, PluginName: "<extra>"})
	}

	return multicall(normal, wraps, kwargs, firstResult, logger)
}

// CallHistoric on a SubsetHookCaller is a fatal error: historic callers
// never carry wrappers and have no useful "some plugins excluded" replay
// semantics, so the permanent Caller is the only valid entry point.
func (s *SubsetHookCaller) CallHistoric(map[string]any, func(any)) error {
	return fmt.Errorf("hookit: subset callers do not support CallHistoric")
}
