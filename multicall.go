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
	"reflect"
	"runtime"

	"go.uber.org/multierr"

	"github.com/TimeWtr/hookit/internal/log"
)

// checkArgs returns the first argument name absent from kwargs, or "" if
// every name is present.
func checkArgs(argNames []string, kwargs map[string]any) string {
	for _, a := range argNames {
		if _, ok := kwargs[a]; !ok {
			return a
		}
	}
	return ""
}

// wrapFail builds a WrapFailError attributing reason to fn's source
// location, the Go analogue of pluggy's wrap_controller.gi_code lookup.
func wrapFail(fn any, reason string) *WrapFailError {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return &WrapFailError{FuncName: "wrapper", Reason: reason}
	}
	file, line := f.FileLine(pc)
	return &WrapFailError{FuncName: f.Name(), File: file, Line: line, Reason: reason}
}

// resultsOutcome applies the outcome-computation rule of §4.5 step 4:
// firstresult keeps only the first collected value, otherwise the full
// slice is the value; an in-flight error always rides along.
func resultsOutcome(results []any, firstResult bool, err error) *Result {
	if firstResult {
		if len(results) > 0 {
			return NewResult(results[0], err)
		}
		return NewResult(nil, err)
	}
	return NewResult(results, err)
}

// runNormal is multicall step 2: reverse iteration over the normal impl
// list, short-circuiting on firstresult once a non-nil value appears.
func runNormal(normal []*HookImpl, kwargs map[string]any, firstResult bool) *Result {
	var results []any
	for i := len(normal) - 1; i >= 0; i-- {
		impl := normal[i]
		if missing := checkArgs(impl.ArgNames, kwargs); missing != "" {
			return resultsOutcome(results, firstResult, &HookCallError{ArgName: missing})
		}
		val, err := impl.Func(kwargs)
		if err != nil {
			return resultsOutcome(results, firstResult, err)
		}
		if val != nil {
			results = append(results, val)
			if firstResult {
				break
			}
		}
	}
	return resultsOutcome(results, firstResult, nil)
}

// wrapOld builds the NextFunc for an old-style (hookwrapper) impl: it
// receives the *Result produced by next and may mutate it in place. A
// panic escaping after next has returned is treated as a teardown
// exception: combined with any in-flight error and propagated.
func wrapOld(impl *HookImpl, inner NextFunc, kwargs map[string]any, logger log.Logger) NextFunc {
	return func() (out *Result) {
		if missing := checkArgs(impl.ArgNames, kwargs); missing != "" {
			return NewResult(nil, &HookCallError{ArgName: missing})
		}
		calls := 0
		var innerResult *Result
		nextFn := func() *Result {
			calls++
			if calls > 1 {
				panic(wrapFail(impl.OldWrapper, "has second yield"))
			}
			innerResult = inner()
			return innerResult
		}
		defer func() {
			if r := recover(); r != nil {
				if wf, ok := r.(*WrapFailError); ok {
					out = NewResult(nil, wf)
					return
				}
				teardownErr := fmt.Errorf("hookit: old-style wrapper teardown panicked: %v", r)
				logger.Warn("old-style wrapper teardown raised", log.StringField("plugin", impl.PluginName), log.ErrorField(teardownErr))
				if innerResult != nil {
					if _, innerErr := innerResult.GetResult(); innerErr != nil {
						out = NewResult(nil, multierr.Append(innerErr, teardownErr))
						return
					}
				}
				out = NewResult(nil, teardownErr)
			}
		}()
		impl.OldWrapper(kwargs, nextFn)
		if calls == 0 {
			return NewResult(nil, wrapFail(impl.OldWrapper, "did not yield"))
		}
		return innerResult
	}
}

// multicall is the wrapper/multicall execution engine of §4.5: it nests
// every wrapper impl around the normal-impl chain (forward iteration
// over wraps builds the nesting from innermost to outermost, which is
// exactly reverse-list execution order) and returns the final outcome.
func multicall(normal, wraps []*HookImpl, kwargs map[string]any, firstResult bool, logger log.Logger) (any, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	if logger == nil {
		logger = log.NewNop()
	}

	chain := NextFunc(func() *Result {
		return runNormal(normal, kwargs, firstResult)
	})

	for _, impl := range wraps {
		switch impl.Kind {
		case NewWrapperKind:
			chain = wrapNewWithArgs(impl, chain, kwargs)
		case OldWrapperKind:
			chain = wrapOld(impl, chain, kwargs, logger)
		}
	}

	result := chain()
	return result.GetResult()
}

// wrapNewWithArgs checks the wrapper's own declared argument names
// against kwargs before invoking it, then delegates to wrapNew's
// setup/teardown nesting.
func wrapNewWithArgs(impl *HookImpl, inner NextFunc, kwargs map[string]any) NextFunc {
	return func() *Result {
		if missing := checkArgs(impl.ArgNames, kwargs); missing != "" {
			return NewResult(nil, &HookCallError{ArgName: missing})
		}
		return wrapNewCall(impl, inner, kwargs)
	}
}

func wrapNewCall(impl *HookImpl, inner NextFunc, kwargs map[string]any) (out *Result) {
	calls := 0
	nextFn := func() *Result {
		calls++
		if calls > 1 {
			panic(wrapFail(impl.Wrapper, "has second yield"))
		}
		return inner()
	}
	defer func() {
		if r := recover(); r != nil {
			if wf, ok := r.(*WrapFailError); ok {
				out = NewResult(nil, wf)
				return
			}
			panic(r)
		}
	}()
	value, err := impl.Wrapper(kwargs, nextFn)
	if calls == 0 {
		return NewResult(nil, wrapFail(impl.Wrapper, "did not yield"))
	}
	return NewResult(value, err)
}
