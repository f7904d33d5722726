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

// Package errs provides Sink, the accumulating-error collector the
// top-level API uses to report every malformed-program diagnostic from
// one compile together (§7), rather than stopping at the first one.
package errs

import "errors"

// Sink accumulates errors across a pass that would rather keep going and
// report everything wrong with a program in one compile than stop at the
// first problem (a pragma referencing an unknown field does not prevent
// checking the next pragma).
type Sink struct {
	errs []error
}

// Add records err in the sink, if non-nil.
func (s *Sink) Add(err error) {
	if err != nil {
		s.errs = append(s.errs, err)
	}
}

// Len returns the number of errors recorded so far.
func (s *Sink) Len() int { return len(s.errs) }

// Err returns nil if nothing was recorded, or a combined error joining
// every recorded error otherwise.
func (s *Sink) Err() error {
	if len(s.errs) == 0 {
		return nil
	}
	return errors.Join(s.errs...)
}

// All returns every error recorded so far, in recording order.
func (s *Sink) All() []error {
	return s.errs
}
