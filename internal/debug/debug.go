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

//go:build debug

// Package debug includes debugging helpers shared by the constraint
// collectors, the solver wrapper, and the rewrite transform.
package debug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true if flexpack is being built with the debug tag, which
// turns on Log output and Assert checks. The driver logs one line per
// phase under the "collect", "solve", and "rewrite" operations, and
// internal/scc logs its traversal.
const Enabled = true

var debugPattern *regexp.Regexp

func init() {
	flag.Func("flexpack.filter", "regexp to filter debug logs by", func(s string) (err error) {
		debugPattern, err = regexp.Compile(s)
		return err
	})
}

// Log prints a debug line to stderr, tagged with the calling package/file/
// line and the goroutine id.
//
// context is an optional set of Printf-style arguments rendered before
// operation; it is used to identify the run (e.g. the compile's run id)
// that a group of log lines belongs to.
func Log(context []any, operation string, format string, args ...any) {
	skip := 1
again:
	pc, file, line, _ := runtime.Caller(skip)

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	name = name[strings.LastIndex(name, ".")+1:]
	if strings.HasPrefix(name, "log") || strings.Contains(name, "Log") {
		skip++
		goto again
	}

	pkg := fn.Name()
	pkg = strings.TrimPrefix(pkg, "github.com/barefootnetworks/")
	pkg = strings.TrimPrefix(pkg, "flexpack/internal/")
	pkg = strings.TrimPrefix(pkg, "flexpack/")
	if idx := strings.Index(pkg, "."); idx >= 0 {
		pkg = pkg[:idx]
	}

	file = filepath.Base(file)

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "%s/%s:%d [g%04d", pkg, file, line, routine.Goid())
	if len(context) >= 1 {
		fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	fmt.Fprintf(buf, "] %s: ", operation)
	fmt.Fprintf(buf, format, args...)

	if debugPattern != nil && !debugPattern.MatchString(buf.String()) {
		return
	}

	buf.WriteByte('\n')
	os.Stderr.WriteString(buf.String())
}

// Assert panics if cond is false, but only in debug builds. Used for the
// internal-invariant error kind of §7 (an unknown field id, a missing digest
// type): conditions that indicate a bug in this core rather than a
// malformed program.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("flexpack: internal assertion failed: %s\n%s", fmt.Sprintf(format, args...), Stack(2)))
	}
}

// Value is a value of any type that only exists when the debug tag is
// enabled. When disabled, this struct is replaced with an empty struct, so
// that debug-only bookkeeping costs nothing in a release build.
type Value[T any] struct {
	x T
}

// Get returns a pointer to this value. Panics if not in debug mode.
func (v *Value[T]) Get() *T { return &v.x }
