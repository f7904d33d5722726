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

package collect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barefootnetworks/flexpack/collect"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
)

func TestIngressBridgeAliases(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	igr := &field.Field{ID: 1, Name: "hdr.x", Gress: field.Ingress, Flags: field.Bridged, BridgeName: "x"}
	egr := &field.Field{ID: 2, Name: "hdr.x", Gress: field.Egress, Flags: field.Bridged, BridgeName: "x"}
	other := &field.Field{ID: 3, Name: "hdr.y", Gress: field.Egress, Flags: field.Bridged, BridgeName: "y"}
	require.NoError(t, db.Add(igr))
	require.NoError(t, db.Add(egr))
	require.NoError(t, db.Add(other))

	pairs := collect.IngressBridgeAliases(db)
	require.Len(t, pairs, 1)
	assert.Equal(t, igr, pairs[0].Ingress)
	assert.Equal(t, egr, pairs[0].Egress)
}

func TestParserExtractPairsRequiresMatchingOffset(t *testing.T) {
	t.Parallel()

	a := &field.Field{ID: 1, Name: "eth.dst", Size: 8}
	b := &field.Field{ID: 2, Name: "eth.dst", Size: 8}

	igrParser := &ir.Parser{States: []*ir.ParserState{{
		Name: "start",
		Extracts: []ir.Extract{{
			Dest:            field.Slice{Field: a, Lo: 0, Hi: 8},
			Source:          ir.FromPacket,
			PacketBitOffset: 0,
		}},
	}}}
	egrParser := &ir.Parser{States: []*ir.ParserState{{
		Name: "start",
		Extracts: []ir.Extract{{
			Dest:            field.Slice{Field: b, Lo: 0, Hi: 8},
			Source:          ir.FromPacket,
			PacketBitOffset: 8,
		}},
	}}}

	pairs := collect.ParserExtractPairs(igrParser, egrParser)
	require.Len(t, pairs, 1, "offsets differ by a whole byte so mod-8 alignment still matches")
}
