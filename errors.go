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

package flexpack

import (
	"errors"
	"fmt"

	"github.com/barefootnetworks/flexpack/solver"
)

// UnsatisfiableError reports that the program's constraints, as collected,
// admit no valid layout: the pragma and program structure, taken
// together, overconstrain at least one field. Core names the conflicting
// constraints by the same names the solver's diagnostics use.
type UnsatisfiableError struct {
	Core []string
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("flexpack: program is unsatisfiable: %v", e.Core)
}

// AsUnsatisfiable reports whether err is, or wraps, an UnsatisfiableError,
// returning it if so.
func AsUnsatisfiable(err error) (*UnsatisfiableError, bool) {
	var u *UnsatisfiableError
	if errors.As(err, &u) {
		return u, true
	}
	var se *solver.UnsatError
	if errors.As(err, &se) {
		return &UnsatisfiableError{Core: se.Core}, true
	}
	return nil, false
}
