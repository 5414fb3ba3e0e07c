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

// Package introspect offers best-effort parameter-name discovery for
// callables carrying an explicit tag, since Go erases parameter names at
// runtime and cannot recover them by reflection the way a dynamic
// language can.
package introspect

import "reflect"

// Tagged is implemented by any wrapper type that wants to advertise its
// own argument names to hookit's builder-based registration without the
// caller repeating them by hand.
type Tagged interface {
	ArgNames() (positional, keyword []string)
}

// Varnames returns the positional and keyword argument names for fn.
// Only values implementing Tagged yield names; anything else returns two
// nil slices, matching the documented "callables that cannot be
// introspected return two empty lists" boundary.
func Varnames(fn any) (positional, keyword []string) {
	if t, ok := fn.(Tagged); ok {
		return t.ArgNames()
	}
	return nil, nil
}

// IsFunc reports whether v is a function value, mirroring the
// is-routine guard pluggy applies before attempting introspection.
func IsFunc(v any) bool {
	if v == nil {
		return false
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}
