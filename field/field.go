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

// Package field holds the PHV field database: the entities (§3) that
// constraints, collectors, and the solver all refer to by id, plus the
// mutable bookkeeping state (flags, alignment, no-pack matrix) that the
// driver owns for the lifetime of one compile.
package field

import "fmt"

// Gress identifies which parser/deparser thread a field belongs to.
type Gress uint8

const (
	Ingress Gress = iota
	Egress
	Ghost
)

func (g Gress) String() string {
	switch g {
	case Ingress:
		return "ingress"
	case Egress:
		return "egress"
	case Ghost:
		return "ghost"
	default:
		return fmt.Sprintf("gress(%d)", uint8(g))
	}
}

// Kind classifies what a field represents, independent of its gress.
type Kind uint8

const (
	// Packet is a field extracted from, or deparsed into, the wire packet.
	Packet Kind = iota
	// Metadata is a compiler- or pragma-introduced field with no on-wire
	// representation of its own, such as bridged metadata. POV bits and
	// padding have kinds of their own, below.
	Metadata
	// POV is a parser state's point-of-validity bit.
	POV
	// Padding is a field synthesized purely to round out a struct's size;
	// it carries no program semantics and is always safe to repack.
	Padding
)

// ID uniquely identifies a field within one compile.
type ID int32

// Flags is a bitset of the boolean facts §3 and §6 attach to a field.
type Flags uint32

const (
	// Flexible marks a field whose byte offset within its enclosing struct
	// was left unassigned by the frontend (the `@flexible` annotation of
	// §6), and which this core is responsible for placing.
	Flexible Flags = 1 << iota
	// Bridged marks a field carried from ingress to egress as bridged
	// metadata rather than recomputed in egress.
	Bridged
	// Overlayable marks a field the frontend permits to share a container
	// with another live field at a different point in the pipeline
	// (`@overlayable`).
	Overlayable
	// Intrinsic marks a field defined by the target architecture rather
	// than the P4 program (`@intrinsic`): digest session ids, resubmit
	// type, and similar.
	Intrinsic
	// DeparsedToTM marks a field read by the traffic manager after the
	// deparser, which therefore cannot move within its byte once placed.
	DeparsedToTM
	// NoSplit marks a field that must occupy a single PHV container.
	NoSplit
	// Solitary marks a field that must not share a container with any
	// other field.
	Solitary
	// DigestUsed marks a field referenced by at least one digest field
	// list (mirror, learning, resubmit, or packet-generator).
	DigestUsed
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// AlignReason records why an AlignmentConstraint was raised, mirroring the
// reason enumeration of the original backend's phv/constraints header.
type AlignReason uint32

const (
	ReasonParserExtract AlignReason = 1 << iota
	ReasonDeparserEmit
	ReasonMauInstruction
	ReasonBridgeMatch
	ReasonPragmaByteOffset
	ReasonPaBytePack
	ReasonMutualAlignment
)

// Alignment is the bit offset, within a field's eventual container, that
// some constraint pins the field's LSB to, along with the set of reasons
// that pin was asserted.
type Alignment struct {
	Bit    uint8
	Reason AlignReason
}

// SolitaryReason records why a SolitaryConstraint was raised.
type SolitaryReason uint32

const (
	ReasonALU SolitaryReason = 1 << iota
	ReasonChecksum
	ReasonArch
	ReasonDigest
	ReasonPragmaSolitary
	ReasonPragmaContainerSize
	ReasonConflictingAlignment
	ReasonClearOnWrite
)

// Field is one named, sized value tracked by the PHV allocator's upstream
// passes. Fields never change gress, size, or kind once built; the mutable
// parts of a compile (flags, alignment, solitary reason) live in plain
// exported fields rather than behind setters, since the driver (§5) is the
// sole owner and is single-threaded by contract.
type Field struct {
	ID   ID
	Name string
	Gress
	Kind
	Size uint32 // bits

	Flags          Flags
	Alignment      *Alignment
	SolitaryReason SolitaryReason

	// ContainerSizeHint is the preferred container size in bits (8, 16, or
	// 32), set by a pa_container_size pragma or left zero if unconstrained.
	ContainerSizeHint uint32

	// BridgeName is the bridged-metadata header name this field was
	// assigned to when it originated from an ingress-to-egress bridge
	// (empty otherwise).
	BridgeName string
}

// Slice identifies a contiguous bit range of a field, [Lo, Hi), counted
// from the LSB. Constraints and layouts are expressed over slices rather
// than whole fields because several rules (no-split in particular) care
// about sub-field ranges used in instructions.
type Slice struct {
	Field *Field
	Lo    uint32
	Hi    uint32
}

// Width returns the number of bits this slice covers.
func (s Slice) Width() uint32 { return s.Hi - s.Lo }

// Whole reports whether this slice spans the entirety of its field.
func (s Slice) Whole() bool { return s.Lo == 0 && s.Hi == s.Field.Size }

func (s Slice) String() string {
	if s.Whole() {
		return s.Field.Name
	}
	return fmt.Sprintf("%s[%d:%d]", s.Field.Name, s.Lo, s.Hi)
}
