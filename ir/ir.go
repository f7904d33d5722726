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

// Package ir is the typed program representation this core consumes: the
// parser graph, MAU actions, deparser, and digest field lists that the P4
// frontend and midend have already built. Collection (§4.1, §4.2) walks
// this representation read-only; rewriting (§4.5) mutates a copy of it in
// place once the solver has produced a layout.
package ir

import "github.com/barefootnetworks/flexpack/field"

// Program is the whole compile unit: one or more pipes, each with an
// ingress and (optionally, for folded pipelines) an egress thread.
type Program struct {
	Pipes []*Pipe
}

// Pipe is one P4 pipeline, identified by name for diagnostics and for the
// bridge-pair synthetic ids of §4.6.
type Pipe struct {
	Name    string
	Ingress *Thread
	Egress  *Thread
}

// Thread is one gress's parser, MAU pipeline, and deparser.
type Thread struct {
	Gress    field.Gress
	Parser   *Parser
	Actions  []*Action
	Deparser *Deparser
}

// Parser is a P4 parser's state graph, flattened to the set of states that
// perform extracts; control flow between states does not matter to
// collection, only which states extract which fields.
type Parser struct {
	States []*ParserState
}

// ParserState is one parser state's extract and field-set statements.
type ParserState struct {
	Name     string
	Extracts []Extract
}

// ExtractSource distinguishes where an extracted field's bits came from.
type ExtractSource uint8

const (
	// FromPacket means the field's bits were read directly off the wire.
	FromPacket ExtractSource = iota
	// FromSaved means the field was set from a previously-extracted field
	// (a parser `set` statement), recorded in Extract.Saved.
	FromSaved
	// FromConst means the field was set to a parser-time constant.
	FromConst
)

// Extract records one field assignment performed by a parser state,
// whether from the wire, from another field, or from a constant. Alignment
// collection (§4.2 rule 1) keys off Source and, for FromPacket, the
// cumulative packet offset the frontend annotates on the extract
// (PacketBitOffset).
type Extract struct {
	Dest   field.Slice
	Source ExtractSource
	Saved  *field.Field // valid when Source == FromSaved

	// PacketBitOffset is the cumulative offset from the start of the
	// packet at which this extract reads its bits. The frontend computes
	// this; this core uses it only for the low 3 bits (mod 8 alignment).
	PacketBitOffset uint32
}

// OperandKind classifies one source operand of an Instruction.
type OperandKind uint8

const (
	FieldOperand OperandKind = iota
	ActionDataOperand
	ConstOperand
)

// Operand is one source of an ALU instruction.
type Operand struct {
	Kind  OperandKind
	Slice field.Slice // valid when Kind == FieldOperand
}

// Instruction is one MAU ALU write: Dest := Op(Sources...). Op names are
// opaque strings (the frontend's instruction mnemonics); this core only
// distinguishes bitwise-identity moves (used by alias and mutual-alignment
// discovery) from everything else, via IsMove.
type Instruction struct {
	Op      string
	Dest    field.Slice
	Sources []Operand
	IsMove  bool
}

// Action is one MAU action: a sequence of instructions run atomically.
type Action struct {
	Name         string
	Instructions []Instruction
}

// DeparserCallKind distinguishes the two kinds of deparser statement that
// matter to bridge discovery (§4.1): emitting a field to the wire, and
// (exclusively in egress) reading a bridged field back out through a
// shadow extract.
type DeparserCallKind uint8

const (
	EmitCall DeparserCallKind = iota
	ExtractCall
)

// DeparserCall is one statement in a deparser block.
type DeparserCall struct {
	Kind  DeparserCallKind
	Field *field.Field
}

// DeparserParam is a field read by the traffic manager after the deparser
// runs, e.g. queue id or mirror session id fields (§4.2 rule 7,
// DeparsedToTMConstraint).
type DeparserParam struct {
	Field *field.Field
}

// Deparser is one thread's deparser block.
type Deparser struct {
	Calls  []DeparserCall
	Params []DeparserParam
}

// DigestKind distinguishes the four kinds of digest field list the
// architecture defines (§4.1, §4.2 rule 6).
type DigestKind uint8

const (
	MirrorDigest DigestKind = iota
	LearningDigest
	ResubmitDigest
	PktgenDigest
)

// DigestFieldList is one named, ordered list of fields copied out-of-band
// to a digest. SessionIDField and IndexField, when non-nil, are the
// selector fields the hardware prepends and must not be reordered or
// repacked relative to the rest of the list (§4.2 rule 6 edge case).
type DigestFieldList struct {
	Name           string
	Kind           DigestKind
	Fields         []*field.Field
	SessionIDField *field.Field
	IndexField     *field.Field
}

// StructFieldAnnotation is the subset of §6's annotation grammar that
// attaches to individual struct members rather than whole fields.
type StructFieldAnnotation uint8

const (
	NoAnnotation StructFieldAnnotation = iota
	FlexibleAnnotation
	PaddingAnnotation
)

// StructMember is one field of a StructType.
type StructMember struct {
	Field      *field.Field
	Annotation StructFieldAnnotation
}

// StructType is a P4 header or struct type that may contain `@flexible`
// members this core is responsible for laying out (§6).
type StructType struct {
	Name string
	// FixedSizeBits is non-zero when the frontend pinned this struct's
	// total size, requiring padding insertion rather than pure compaction
	// (§4.4, original source's PadFixedSizeHeaders).
	FixedSizeBits uint32
	Members       []StructMember
}

// AliasOrigin distinguishes a pa_alias pragma from a structural alias the
// compiler introduced on its own (e.g. a parser `set` chain collapsed to
// an identity).
type AliasOrigin uint8

const (
	PragmaAlias AliasOrigin = iota
	CompilerAlias
)

// Alias records that Dest and Source denote the same bits, per §6's
// pa_alias pragma and its alias-resolution supplement.
type Alias struct {
	Dest   *field.Field
	Source field.Slice
	Origin AliasOrigin
}
