// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flexpack lays out a P4-Tofino program's `@flexible` header
// fields and bridged metadata into concrete PHV containers.
//
// A compile has three phases. Collection (package collect) walks the
// program's parser, MAU actions, and deparser to discover bridge pairs
// between ingress and egress and to synthesize the constraints those
// relationships, plus any pa_* pragmas, impose on where a field may land.
// Solving (package solver) hands those constraints to an SMT bit-vector
// and optimization oracle and reconstructs a concrete container layout
// from its model. Rewriting (package rewrite) substitutes that layout
// back into the program's struct types and digest field lists.
//
// Package driver orchestrates the three phases for one compile; this
// package is a thin, stable entry point over it for callers that just
// want to run a compile and get a rewritten program back.
package flexpack
