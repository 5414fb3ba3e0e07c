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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalImpl(name string, val any, err error) *HookImpl {
	return &HookImpl{
		Kind:       NormalKind,
		PluginName: name,
		Plugin:     name,
		Func: func(map[string]any) (any, error) {
			return val, err
		},
	}
}

func TestMulticall_FirstResultShortCircuits(t *testing.T) {
	var firstRegisteredCalled bool
	normal := []*HookImpl{
		{Kind: NormalKind, Plugin: "first", Func: func(map[string]any) (any, error) {
			firstRegisteredCalled = true
			return "from-first-registered", nil
		}},
		normalImpl("second", "from-second-registered", nil),
	}

	result, err := multicall(normal, nil, nil, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-second-registered", result)
	assert.False(t, firstRegisteredCalled, "firstresult must stop after the first non-nil value in reverse order")
}

func TestMulticall_CollectsAllNonFirstResult(t *testing.T) {
	normal := []*HookImpl{
		normalImpl("a", "va", nil),
		normalImpl("b", "vb", nil),
	}
	result, err := multicall(normal, nil, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"vb", "va"}, result)
}

func TestMulticall_NormalImplErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	normal := []*HookImpl{
		normalImpl("a", nil, boom),
		normalImpl("b", "vb", nil),
	}
	_, err := multicall(normal, nil, nil, false, nil)
	require.ErrorIs(t, err, boom)
}

func TestMulticall_NewWrapperSetupTeardown(t *testing.T) {
	var trace []string
	wrapperFn := WrapperFunc(func(kwargs map[string]any, next NextFunc) (any, error) {
		trace = append(trace, "setup")
		v, err := next().GetResult()
		trace = append(trace, "teardown")
		return v, err
	})
	wrap, err := NewHookImpl("wrapper", nil, nil, ImplConfig{Wrapper: true}, wrapperFn)
	require.NoError(t, err)

	normal := []*HookImpl{normalImpl("inner", "value", nil)}
	result, err := multicall(normal, []*HookImpl{wrap}, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"value"}, result)
	assert.Equal(t, []string{"setup", "teardown"}, trace)
}

func TestMulticall_WrapperThatNeverCallsNextFails(t *testing.T) {
	wrapperFn := WrapperFunc(func(kwargs map[string]any, next NextFunc) (any, error) {
		return "short-circuited", nil
	})
	wrap, err := NewHookImpl("wrapper", nil, nil, ImplConfig{Wrapper: true}, wrapperFn)
	require.NoError(t, err)

	_, err = multicall(nil, []*HookImpl{wrap}, nil, false, nil)
	require.Error(t, err)
	wfe, ok := err.(*WrapFailError)
	require.True(t, ok)
	assert.Contains(t, wfe.Reason, "did not yield")
}

func TestMulticall_WrapperThatCallsNextTwicePanicsIntoError(t *testing.T) {
	wrapperFn := WrapperFunc(func(kwargs map[string]any, next NextFunc) (any, error) {
		_, _ = next().GetResult()
		_, _ = next().GetResult()
		return nil, nil
	})
	wrap, err := NewHookImpl("wrapper", nil, nil, ImplConfig{Wrapper: true}, wrapperFn)
	require.NoError(t, err)

	_, err = multicall(nil, []*HookImpl{wrap}, nil, false, nil)
	require.Error(t, err)
	wfe, ok := err.(*WrapFailError)
	require.True(t, ok)
	assert.Contains(t, wfe.Reason, "second yield")
}

func TestMulticall_OldWrapperMutatesResult(t *testing.T) {
	oldFn := OldWrapperFunc(func(kwargs map[string]any, next NextFunc) {
		r := next()
		r.ForceResult("overridden")
	})
	wrap, err := NewHookImpl("oldwrapper", nil, nil, ImplConfig{HookWrapper: true}, oldFn)
	require.NoError(t, err)

	normal := []*HookImpl{normalImpl("inner", "value", nil)}
	result, err := multicall(normal, []*HookImpl{wrap}, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "overridden", result)
}

func TestMulticall_MissingArgumentProducesHookCallError(t *testing.T) {
	normal := []*HookImpl{
		{Kind: NormalKind, Plugin: "a", ArgNames: []string{"path"}, Func: func(map[string]any) (any, error) {
			return "v", nil
		}},
	}
	_, err := multicall(normal, nil, map[string]any{}, false, nil)
	require.Error(t, err)
	var callErr *HookCallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, "path", callErr.ArgName)
}
