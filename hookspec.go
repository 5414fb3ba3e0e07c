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

// HookSpec is the declaration of one hook: its name, its declared
// argument names, and its dispatch configuration. A HookSpec is created
// once per hook per manager and never mutated afterward.
type HookSpec struct {
	Namespace string
	Name      string
	ArgNames  []string
	Config    SpecConfig
}

// NewHookSpec builds a HookSpec, rejecting the invalid
// historic+firstresult combination.
func NewHookSpec(namespace, name string, argNames []string, cfg SpecConfig) (*HookSpec, error) {
	if cfg.Historic && cfg.FirstResult {
		return nil, newValidationError(nil, "hook %q cannot be historic and firstresult", name)
	}
	return &HookSpec{Namespace: namespace, Name: name, ArgNames: argNames, Config: cfg}, nil
}

// VerifyArgsProvided returns the subset of ArgNames absent from kwargs,
// in declared order. An empty result means every declared argument was
// supplied.
func (s *HookSpec) VerifyArgsProvided(kwargs map[string]any) []string {
	var missing []string
	for _, a := range s.ArgNames {
		if _, ok := kwargs[a]; !ok {
			missing = append(missing, a)
		}
	}
	return missing
}
