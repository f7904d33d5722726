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

// Package collect implements bridge discovery (§4.1) and constraint
// synthesis (§4.2): the pair of passes that turn a typed program IR into
// the constraint bag the solver consumes.
package collect

import (
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
)

// BridgePair links one ingress field to the egress field it corresponds
// to, whether because the egress field is bridged metadata carrying the
// ingress field's value, or because both are gress twins parsed at the
// same packet offset before any bridging decision was made.
type BridgePair struct {
	Ingress *field.Field
	Egress  *field.Field
}

// IngressBridgeAliases finds every field pair in db where an ingress field
// and an egress field were declared with the same bridge name, i.e. the
// frontend has already decided the egress field carries the ingress
// field's bridged value. Grounded on the original backend's
// CollectIngressBridgedFields / CollectEgressBridgedFields split, unified
// here since both sides are looked up from the same table.
func IngressBridgeAliases(db *field.DB) []BridgePair {
	egressByName := make(map[string]*field.Field)
	for f := range db.All() {
		if f.Gress == field.Egress && f.Flags.Has(field.Bridged) && f.BridgeName != "" {
			egressByName[f.BridgeName] = f
		}
	}

	var pairs []BridgePair
	for f := range db.All() {
		if f.Gress != field.Ingress || !f.Flags.Has(field.Bridged) || f.BridgeName == "" {
			continue
		}
		if e, ok := egressByName[f.BridgeName]; ok {
			pairs = append(pairs, BridgePair{Ingress: f, Egress: e})
		}
	}
	return pairs
}

// extractAlignment is one field's packet-relative extraction site.
type extractAlignment struct {
	field  *field.Field
	offset uint32
}

func parserExtracts(p *ir.Parser) []extractAlignment {
	var out []extractAlignment
	for _, st := range p.States {
		for _, ex := range st.Extracts {
			if ex.Source == ir.FromPacket && ex.Dest.Whole() {
				out = append(out, extractAlignment{field: ex.Dest.Field, offset: ex.PacketBitOffset})
			}
		}
	}
	return out
}

// ParserExtractPairs finds ingress/egress field pairs extracted by the
// ingress and egress parsers at packet bit offsets that agree modulo 8 (the
// same bit position within a byte) and sharing a program-level name: these are "gress twins", the same header
// field parsed independently on both threads rather than bridged, but
// still eligible for mutual alignment (§4.1, GatherParserExtracts). Pairs
// already covered by IngressBridgeAliases are not excluded here; callers
// that want a single related-fields graph should deduplicate by field id.
func ParserExtractPairs(ingress, egress *ir.Parser) []BridgePair {
	byName := make(map[string]extractAlignment)
	for _, e := range parserExtracts(egress) {
		byName[e.field.Name] = e
	}

	var pairs []BridgePair
	for _, i := range parserExtracts(ingress) {
		e, ok := byName[i.field.Name]
		if !ok || e.offset%8 != i.offset%8 {
			continue
		}
		pairs = append(pairs, BridgePair{Ingress: i.field, Egress: e.field})
	}
	return pairs
}
