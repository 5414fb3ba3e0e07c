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

// Result is the envelope threaded through old-style wrapper teardown: it
// holds exactly one of a value or an error, and old-style wrappers may
// replace either half before the aggregate outcome is finalized.
type Result struct {
	value any
	err   error
}

// NewResult builds a Result from a value/error pair, as produced by
// running the inner chain.
func NewResult(value any, err error) *Result {
	return &Result{value: value, err: err}
}

// ForceResult replaces the envelope with a value, clearing any error.
func (r *Result) ForceResult(value any) {
	r.value = value
	r.err = nil
}

// ForceError replaces the envelope with an error, clearing any value.
func (r *Result) ForceError(err error) {
	r.value = nil
	r.err = err
}

// GetResult returns the held value, or the held error.
func (r *Result) GetResult() (any, error) {
	return r.value, r.err
}
