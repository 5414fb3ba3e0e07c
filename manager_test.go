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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWtr/hookit/entrypoint"
	"github.com/TimeWtr/hookit/tracing"
)

func newTestManager(t *testing.T) *PluginManager {
	t.Helper()
	project := NewProjectSpec("widgets")
	return project.NewManager()
}

func echoImplDef(name string) HookImplDef {
	return HookImplDef{
		SpecName: "on_save",
		ArgNames: []string{"path"},
		Func: func(kwargs map[string]any) (any, error) {
			return name, nil
		},
	}
}

func TestManager_RegisterAndCall(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))

	testCases := []struct {
		name   string
		plugin string
	}{
		{name: "register plugin one", plugin: "plugin-one"},
		{name: "register plugin two", plugin: "plugin-two"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Register(tc.plugin, tc.plugin, echoImplDef(tc.plugin))
			assert.NoError(t, err)
		})
	}

	result, err := m.Hook("on_save").Call(map[string]any{"path": "a.txt"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"plugin-one", "plugin-two"}, result)
}

func TestManager_RegisterDuplicateNameRejected(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))

	_, err := m.Register("dup", "dup", echoImplDef("dup"))
	require.NoError(t, err)

	_, err = m.Register("dup", "dup", echoImplDef("dup"))
	require.Error(t, err)
}

func TestManager_BlockedNameRejectsRegistration(t *testing.T) {
	m := newTestManager(t)
	m.SetBlocked("bad-actor")
	assert.True(t, m.IsBlocked("bad-actor"))

	_, err := m.Register("bad-actor", "bad-actor")
	require.Error(t, err)

	m.Unblock("bad-actor")
	assert.False(t, m.IsBlocked("bad-actor"))
	_, err = m.Register("bad-actor", "bad-actor")
	require.NoError(t, err)
}

func TestManager_Unregister(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))

	testCases := []struct {
		name   string
		plugin string
	}{
		{name: "unregister plugin one", plugin: "plugin-one"},
		{name: "unregister plugin two", plugin: "plugin-two"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Register(tc.plugin, tc.plugin, echoImplDef(tc.plugin))
			require.NoError(t, err)
			assert.True(t, m.HasPlugin(tc.plugin))

			require.NoError(t, m.Unregister(tc.plugin))
			assert.False(t, m.HasPlugin(tc.plugin))
		})
	}
}

func TestManager_RegisterRollsBackOnPartialFailure(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{
		Name:     "on_save",
		ArgNames: []string{"path"},
	}))

	badDef := HookImplDef{
		SpecName: "on_save",
		ArgNames: []string{"not_declared"},
		Func: func(map[string]any) (any, error) {
			return nil, nil
		},
	}

	_, err := m.Register("flaky", "flaky", echoImplDef("flaky"), badDef)
	require.Error(t, err)
	assert.False(t, m.HasPlugin("flaky"), "a plugin failing partway through registration must not remain registered")
	assert.Empty(t, m.Hook("on_save").GetHookImpls(), "no impl from a rolled-back registration should remain attached")
}

func TestManager_CheckPendingSkipsOptionalImpls(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))

	caller := m.Hook("on_save")
	impl, err := NewHookImpl("p", "p", []string{"path"}, ImplConfig{Optional: true}, HookFunc(func(map[string]any) (any, error) {
		return nil, nil
	}))
	require.NoError(t, err)
	require.NoError(t, caller.AddImpl(impl))

	require.NoError(t, m.CheckPending(), "an optional impl must not fail CheckPending")
}

func TestManager_LoadEntrypointsFromStaticSource(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))

	source := entrypoint.NewStaticSource()
	source.Register("widgets", entrypoint.Entry{
		Name: "from-entrypoint",
		Dist: entrypoint.DistInfo{ProjectName: "from-entrypoint", Version: "1.0.0"},
		Loader: func() (any, error) {
			return &staticPlugin{}, nil
		},
	})

	n, err := m.LoadEntrypoints(source, "widgets", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, m.HasPlugin("from-entrypoint"))

	dist := m.ListPluginDistinfo()["from-entrypoint"]
	assert.Equal(t, "1.0.0", dist.Version)
}

func TestManager_LoadEntrypointsSkipsBlockedAndDuplicateNames(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))
	m.SetBlocked("blocked-plugin")
	_, err := m.Register("already-registered", "already-registered", echoImplDef("already-registered"))
	require.NoError(t, err)

	source := entrypoint.NewStaticSource()
	for _, name := range []string{"blocked-plugin", "already-registered", "fresh-plugin"} {
		name := name
		source.Register("widgets", entrypoint.Entry{
			Name: name,
			Loader: func() (any, error) {
				return &staticPlugin{}, nil
			},
		})
	}

	n, err := m.LoadEntrypoints(source, "widgets", nil)
	require.NoError(t, err, "a blocked or duplicate entry must be skipped, not abort the whole group")
	assert.Equal(t, 1, n)
	assert.True(t, m.HasPlugin("fresh-plugin"))
	assert.False(t, m.HasPlugin("blocked-plugin"))
}

type staticPlugin struct{}

func (p *staticPlugin) HookImpls() []HookImplDef {
	return []HookImplDef{{
		SpecName: "on_save",
		ArgNames: []string{"path"},
		Func: func(map[string]any) (any, error) {
			return "from-plugin", nil
		},
	}}
}

func TestManager_AddHookCallMonitoringObservesCalls(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))
	_, err := m.Register("p", "p", echoImplDef("p"))
	require.NoError(t, err)

	var beforeCalls, afterCalls int
	undo := m.AddHookCallMonitoring(
		func(hookName string, impls []*HookImpl, kwargs map[string]any) {
			beforeCalls++
			assert.Equal(t, "on_save", hookName)
		},
		func(outcome any, hookName string, impls []*HookImpl, kwargs map[string]any, err error) {
			afterCalls++
		},
	)

	_, err = m.Hook("on_save").Call(map[string]any{"path": "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, beforeCalls)
	assert.Equal(t, 1, afterCalls)

	undo()
	_, err = m.Hook("on_save").Call(map[string]any{"path": "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, beforeCalls, "undo must stop further monitoring")
}

func TestManager_EnableTracingWritesMessages(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))
	_, err := m.Register("p", "p", echoImplDef("p"))
	require.NoError(t, err)

	var buf bytes.Buffer
	tracer := tracing.New(&buf)
	undo := m.EnableTracing(tracer)
	defer undo()

	_, err = m.Hook("on_save").Call(map[string]any{"path": "x"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "on_save")
	assert.Contains(t, buf.String(), "[hookit]")
}

func TestManager_SubsetHookCaller(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddHookSpecs("widgets", HookSpecDef{Name: "on_save", ArgNames: []string{"path"}}))
	_, err := m.Register("keep", "keep", echoImplDef("keep"))
	require.NoError(t, err)
	_, err = m.Register("drop", "drop", echoImplDef("drop"))
	require.NoError(t, err)

	subset := m.SubsetHookCaller("on_save", []any{"drop"})
	result, err := subset.Call(map[string]any{"path": "x"})
	require.NoError(t, err)
	assert.Equal(t, []any{"keep"}, result)
}
