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

// Package entrypoint supplies concrete implementations of the entry-point
// discovery contract PluginManager.LoadEntrypoints consumes: enumerate
// (name, loader, dist) triples for a named group.
package entrypoint

// DistInfo is the opaque distribution-metadata façade attached to a
// plugin loaded via entry-point discovery.
type DistInfo struct {
	ProjectName string
	Version     string
	Path        string
}

// Entry is one discoverable (name, loader) pair plus the distribution it
// came from.
type Entry struct {
	Name   string
	Loader func() (any, error)
	Dist   DistInfo
}

// Source enumerates entries for a named group. Implementations: a
// StaticSource for in-process registration, and a FileManifestSource
// backed by a watched manifest file.
type Source interface {
	Entries(group string) ([]Entry, error)
}
