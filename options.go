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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/barefootnetworks/flexpack/pragma"
)

// Options is the YAML-configurable subset of pragma.Options exposed to
// callers that keep per-program compiler settings in a config file rather
// than constructing pragma.Options by hand.
type Options struct {
	MaxContainerBits []uint32 `yaml:"max_container_bits"`
	DisableCopack    bool     `yaml:"disable_copack"`
}

// LoadOptions reads and parses a YAML options file at path.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("flexpack: reading options: %w", err)
	}
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("flexpack: parsing options: %w", err)
	}
	return o, nil
}

func (o Options) toPragmaOptions() *pragma.Options {
	return &pragma.Options{
		MaxContainerBits: o.MaxContainerBits,
		DisableCopack:    o.DisableCopack,
	}
}
