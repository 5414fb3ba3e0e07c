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

package tracing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracer_FormatsMessageWithTags(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	sub := tr.Get("hookit")
	sub.Call("on_save", "called")

	assert.Equal(t, "on_save called [hookit]\n", buf.String())
}

func TestTracer_IndentPrefixesNestedMessages(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	sub := tr.Get("hookit")

	sub.Call("outer")
	tr.EnterIndent()
	sub.Call("inner")
	tr.ExitIndent()
	sub.Call("outer-again")

	want := "outer [hookit]\n" +
		"    inner [hookit]\n" +
		"outer-again [hookit]\n"
	assert.Equal(t, want, buf.String())
}

func TestTracer_KeyValueEmitsExtraLine(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	sub := tr.Get("hookit")
	sub.Call("on_save finished with error", KeyValue("error", "boom"))

	want := "on_save finished with error [hookit]\n" +
		"    error: boom\n"
	assert.Equal(t, want, buf.String())
}

func TestTracer_SubExtendsTagTuple(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	sub := tr.Get("hookit").Get("manager")
	sub.Call("registered plugin")

	assert.Equal(t, "registered plugin [hookit:manager]\n", buf.String())
}

func TestTracer_SetProcessorReceivesMatchingMessages(t *testing.T) {
	tr := New(nil)
	var got []any
	tr.SetProcessor(func(tags []string, args []any) {
		got = args
	}, "hookit")

	tr.Get("hookit").Call("hello")
	assert.Equal(t, []any{"hello"}, got)
}
