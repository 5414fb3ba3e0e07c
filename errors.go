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

// PluginValidationError reports a plugin or spec that failed validation
// during registration, addSpecs, or checkPending.
type PluginValidationError struct {
	Plugin  any
	Message string
}

func (e *PluginValidationError) Error() string {
	return fmt.Sprintf("hookit: plugin validation failed: %s", e.Message)
}

func newValidationError(plugin any, format string, args ...any) *PluginValidationError {
	return &PluginValidationError{Plugin: plugin, Message: fmt.Sprintf(format, args...)}
}

// HookCallError reports a required call argument missing at call time.
type HookCallError struct {
	ArgName string
}

func (e *HookCallError) Error() string {
	return fmt.Sprintf("hookit: hook call is missing required argument %q", e.ArgName)
}

// WrapFailError reports a wrapper implementation violating the
// setup/teardown protocol: it never called proceed, or it called proceed
// more than once.
type WrapFailError struct {
	FuncName string
	File     string
	Line     int
	Reason   string
}

func (e *WrapFailError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("hookit: wrap_controller %s %s", e.FuncName, e.Reason)
	}
	return fmt.Sprintf("hookit: wrap_controller at %s %s:%d %s", e.FuncName, e.File, e.Line, e.Reason)
}
