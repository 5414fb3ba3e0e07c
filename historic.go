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

// CallHistoric is only valid on a Historic caller. It records
// (kwargs, callback) in the call history before executing — so a plugin
// registered mid-call still observes this entry during its own replay —
// then runs the current normal impls through the same multicall engine
// Call uses (wrappers are never present on a historic caller, so wraps
// is always empty), giving the replay the same §4.3 reverse-list
// ordering and the same missing-argument HookCallError as a regular
// call. If callback is non-nil, it is invoked once per non-nil result.
func (c *Caller) CallHistoric(kwargs map[string]any, callback func(any)) error {
	c.mu.Lock()
	if c.kindLocked() != HistoricCaller {
		c.mu.Unlock()
		return fmt.Errorf("hookit: hook %q is not historic; CallHistoric is not permitted", c.name)
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	c.history = append(c.history, historyEntry{kwargs: kwargs, callback: callback})
	normal := append([]*HookImpl(nil), c.normal...)
	logger := c.logger
	c.mu.Unlock()

	outcome, err := multicall(normal, nil, kwargs, false, logger)
	if err != nil {
		return err
	}
	if callback == nil {
		return nil
	}
	if results, ok := outcome.([]any); ok {
		for _, r := range results {
			callback(r)
		}
	}
	return nil
}
