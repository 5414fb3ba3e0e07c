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

import "errors"

// SpecConfig carries the dispatch options for one hook specification.
type SpecConfig struct {
	FirstResult    bool
	Historic       bool
	WarnOnImpl     string
	WarnOnImplArgs map[string]string
}

// SpecOption mutates a SpecConfig being built.
type SpecOption func(*SpecConfig)

func FirstResult() SpecOption { return func(c *SpecConfig) { c.FirstResult = true } }
func Historic() SpecOption    { return func(c *SpecConfig) { c.Historic = true } }
func WarnOnImpl(message string) SpecOption {
	return func(c *SpecConfig) { c.WarnOnImpl = message }
}
func WarnOnImplArgs(perArg map[string]string) SpecOption {
	return func(c *SpecConfig) { c.WarnOnImplArgs = perArg }
}

// NewSpecConfig builds a SpecConfig from options, rejecting the
// historic+firstresult combination at construction time.
func NewSpecConfig(opts ...SpecOption) (SpecConfig, error) {
	var c SpecConfig
	for _, o := range opts {
		o(&c)
	}
	if c.Historic && c.FirstResult {
		return SpecConfig{}, errors.New("hookit: cannot have a historic firstresult hook")
	}
	return c, nil
}

// ImplConfig carries the dispatch options for one hook implementation.
type ImplConfig struct {
	Wrapper     bool
	HookWrapper bool
	Optional    bool
	TryFirst    bool
	TryLast     bool
	SpecName    string
}

// ImplOption mutates an ImplConfig being built.
type ImplOption func(*ImplConfig)

func AsWrapper() ImplOption     { return func(c *ImplConfig) { c.Wrapper = true } }
func AsHookWrapper() ImplOption { return func(c *ImplConfig) { c.HookWrapper = true } }
func Optional() ImplOption      { return func(c *ImplConfig) { c.Optional = true } }
func TryFirst() ImplOption      { return func(c *ImplConfig) { c.TryFirst = true } }
func TryLast() ImplOption       { return func(c *ImplConfig) { c.TryLast = true } }
func SpecName(name string) ImplOption {
	return func(c *ImplConfig) { c.SpecName = name }
}

// NewImplConfig builds an ImplConfig from options, rejecting the
// wrapper+hookwrapper combination at construction time.
func NewImplConfig(opts ...ImplOption) (ImplConfig, error) {
	var c ImplConfig
	for _, o := range opts {
		o(&c)
	}
	if c.Wrapper && c.HookWrapper {
		return ImplConfig{}, errors.New("hookit: wrapper and hookwrapper are mutually exclusive")
	}
	return c, nil
}
