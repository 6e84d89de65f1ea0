/*
 * structure.go, part of qcio.
 *
 * Copyright 2024 The qcio authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package qcio

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	v3 "github.com/qcgo/qcio/v3"
)

//Identifiers holds the names and database ids of a structure. Every field is
//optional, an empty string means the identifier is not set.
type Identifiers struct {
	Name                                          string
	NameIUPAC                                     string
	Smiles                                        string
	CanonicalSmiles                               string
	CanonicalSmilesProgram                        string
	CanonicalExplicitHydrogenSmiles               string
	CanonicalIsomericSmiles                       string
	CanonicalIsomericExplicitHydrogenSmiles       string
	CanonicalIsomericExplicitHydrogenMappedSmiles string
	Inchi                                         string
	Inchikey                                      string
	PubchemCID                                    string
	PubchemSID                                    string
	PubchemConformerID                            string
	Extras                                        map[string]any
}

//identifierFields gives the interchange name of each identifier, in
//declaration order.
var identifierFields = []struct {
	wire  string
	field func(*Identifiers) *string
}{
	{"name", func(I *Identifiers) *string { return &I.Name }},
	{"name_IUPAC", func(I *Identifiers) *string { return &I.NameIUPAC }},
	{"smiles", func(I *Identifiers) *string { return &I.Smiles }},
	{"canonical_smiles", func(I *Identifiers) *string { return &I.CanonicalSmiles }},
	{"canonical_smiles_program", func(I *Identifiers) *string { return &I.CanonicalSmilesProgram }},
	{"canonical_explicit_hydrogen_smiles", func(I *Identifiers) *string { return &I.CanonicalExplicitHydrogenSmiles }},
	{"canonical_isomeric_smiles", func(I *Identifiers) *string { return &I.CanonicalIsomericSmiles }},
	{"canonical_isomeric_explicit_hydrogen_smiles", func(I *Identifiers) *string { return &I.CanonicalIsomericExplicitHydrogenSmiles }},
	{"canonical_isomeric_explicit_hydrogen_mapped_smiles", func(I *Identifiers) *string { return &I.CanonicalIsomericExplicitHydrogenMappedSmiles }},
	{"inchi", func(I *Identifiers) *string { return &I.Inchi }},
	{"inchikey", func(I *Identifiers) *string { return &I.Inchikey }},
	{"pubchem_cid", func(I *Identifiers) *string { return &I.PubchemCID }},
	{"pubchem_sid", func(I *Identifiers) *string { return &I.PubchemSID }},
	{"pubchem_conformerid", func(I *Identifiers) *string { return &I.PubchemConformerID }},
}

func identifierField(I *Identifiers, wire string) (*string, bool) {
	for _, f := range identifierFields {
		if f.wire == wire {
			return f.field(I), true
		}
	}
	return nil, false
}

//Map returns the identifiers that are set, keyed by their interchange name.
func (I Identifiers) Map() map[string]string {
	ret := make(map[string]string)
	for _, f := range identifierFields {
		if v := *f.field(&I); v != "" {
			ret[f.wire] = v
		}
	}
	return ret
}

//IsZero returns true if no identifier is set and there are no extras.
func (I Identifiers) IsZero() bool {
	return len(I.Map()) == 0 && len(I.Extras) == 0
}

func (I Identifiers) Equal(o Identifiers) bool {
	for _, f := range identifierFields {
		if *f.field(&I) != *f.field(&o) {
			return false
		}
	}
	return mapsEqual(I.Extras, o.Extras)
}

func (I Identifiers) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	for _, f := range identifierFields {
		v := *f.field(&I)
		e.opt(f.wire, v, v == "")
	}
	e.extras(I.Extras)
	return e.done()
}

//IdentifiersFromMap builds an Identifiers value from its mapping form.
func IdentifiersFromMap(m map[string]any) (Identifiers, error) {
	var I Identifiers
	r := newReader("Identifiers", m)
	for _, f := range identifierFields {
		if v := r.str(f.wire); v != nil {
			*f.field(&I) = *v
		}
	}
	I.Extras = r.extras()
	return I, r.finish()
}

//Bond joins the atoms I and J with the given bond order.
type Bond struct {
	I, J  int
	Order float64
}

//Structure is a set of atoms with their cartesian coordinates, charge,
//multiplicity and identifiers. The geometry is in Bohr.
//A Structure is not modified after it is built. The methods that change
//it return a new one.
type Structure struct {
	Symbols      []string
	Geometry     *v3.Matrix
	Charge       int
	Multiplicity int
	Identifiers  Identifiers
	Connectivity []Bond
	Extras       map[string]any
}

//StructureOption sets an optional property of a Structure being built.
type StructureOption func(*Structure)

func WithCharge(charge int) StructureOption {
	return func(S *Structure) { S.Charge = charge }
}

func WithMultiplicity(multiplicity int) StructureOption {
	return func(S *Structure) { S.Multiplicity = multiplicity }
}

func WithIdentifiers(ids Identifiers) StructureOption {
	return func(S *Structure) { S.Identifiers = ids }
}

func WithConnectivity(bonds []Bond) StructureOption {
	return func(S *Structure) { S.Connectivity = append([]Bond(nil), bonds...) }
}

//WithStructureExtras sets the extras of the structure. The map is copied.
func WithStructureExtras(extras map[string]any) StructureOption {
	return func(S *Structure) { S.Extras = copyMap(extras) }
}

//NewStructure builds a Structure from the element symbols and the flat
//geometry (x1,y1,z1,x2...) in Bohr. The geometry must have exactly 3 values per
//atom. Symbols are normalized to their usual capitalization ("cl" -> "Cl").
//The charge defaults to 0 and the multiplicity to 1.
func NewStructure(symbols []string, geometry []float64, opts ...StructureOption) (*Structure, error) {
	S := &Structure{Multiplicity: 1}
	for _, o := range opts {
		o(S)
	}
	S.Symbols = make([]string, len(symbols))
	for i, s := range symbols {
		sym, ok := normalizeSymbol(s)
		if !ok {
			return nil, invalid("Structure", "symbols", "invalid atomic symbol %q at index %d", s, i)
		}
		S.Symbols[i] = sym
	}
	if len(symbols) == 0 {
		return nil, invalid("Structure", "symbols", "at least one atom is required")
	}
	if len(geometry) != 3*len(symbols) {
		return nil, invalid("Structure", "geometry", "expected %d atoms x 3 = %d values, got %d", len(symbols), 3*len(symbols), len(geometry))
	}
	var err error
	S.Geometry, err = v3.NewMatrix(append([]float64(nil), geometry...))
	if err != nil {
		return nil, &ValidationError{Record: "Structure", Field: "geometry", Reason: err.Error(), Err: err}
	}
	if S.Extras == nil {
		S.Extras = map[string]any{}
	} else {
		S.Extras = canonical(S.Extras).(map[string]any)
	}
	if S.Identifiers.Extras != nil {
		S.Identifiers.Extras = canonical(S.Identifiers.Extras).(map[string]any)
	}
	if err := S.validate(); err != nil {
		return nil, err
	}
	return S, nil
}

func (S *Structure) validate() error {
	err := validation.ValidateStruct(S,
		validation.Field(&S.Multiplicity, validation.Required.Error("must be at least 1"), validation.Min(1)),
	)
	return fromRules("Structure", err)
}

//NAtoms returns the number of atoms.
func (S *Structure) NAtoms() int {
	return len(S.Symbols)
}

//GeometryAngstrom returns a copy of the geometry in Angstrom.
func (S *Structure) GeometryAngstrom() *v3.Matrix {
	return S.Geometry.Scaled(BohrToAngstrom)
}

//AtomicNumbers returns the atomic number of each atom.
func (S *Structure) AtomicNumbers() []int {
	ret := make([]int, len(S.Symbols))
	for i, s := range S.Symbols {
		ret[i] = AtomicNumber(s)
	}
	return ret
}

//Formula returns the molecular formula. Carbon goes first and hydrogen
//second, the other elements follow in alphabetical order (Hill system).
func (S *Structure) Formula() string {
	count := make(map[string]int)
	for _, s := range S.Symbols {
		count[s]++
	}
	var order []string
	for _, first := range []string{"C", "H"} {
		if count[first] > 0 {
			order = append(order, first)
		}
	}
	var rest []string
	for s := range count {
		if s != "C" && s != "H" {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)
	var b strings.Builder
	for _, s := range order {
		b.WriteString(s)
		if count[s] > 1 {
			fmt.Fprintf(&b, "%d", count[s])
		}
	}
	return b.String()
}

//Distance returns the distance between the atoms i and j in the given unit.
//It panics if an index is out of range.
func (S *Structure) Distance(i, j int, unit LengthUnit) float64 {
	d := S.Geometry.Dist(i, j)
	if unit == Angstrom {
		return d * BohrToAngstrom
	}
	return d
}

//Copy returns a deep copy of S.
func (S *Structure) Copy() *Structure {
	ret := *S
	ret.Symbols = append([]string(nil), S.Symbols...)
	ret.Geometry = S.Geometry.Copy()
	ret.Connectivity = append([]Bond(nil), S.Connectivity...)
	ret.Extras = copyMap(S.Extras)
	if S.Identifiers.Extras != nil {
		ret.Identifiers.Extras = copyMap(S.Identifiers.Extras)
	}
	return &ret
}

//AddIdentifiers returns a copy of S where the given identifiers, keyed by
//their interchange names ("name", "smiles", "pubchem_cid"...), replace the
//current ones. S is not modified.
func (S *Structure) AddIdentifiers(ids map[string]string) (*Structure, error) {
	nids := S.Identifiers
	if S.Identifiers.Extras != nil {
		nids.Extras = copyMap(S.Identifiers.Extras)
	}
	for k, v := range ids {
		f, ok := identifierField(&nids, k)
		if !ok {
			return nil, invalid("Identifiers", k, "invalid identifier")
		}
		*f = v
	}
	ret := S.Copy()
	ret.Identifiers = nids
	return ret, nil
}

//SwapIndices returns a copy of S where, for each pair, the atom at the first
//index is moved to the second. An atom can't be moved twice, and two atoms
//can't be moved to the same index.
func (S *Structure) SwapIndices(pairs [][2]int) (*Structure, error) {
	oldSeen := make(map[int]bool)
	newSeen := make(map[int]bool)
	n := S.NAtoms()
	for _, p := range pairs {
		old, nw := p[0], p[1]
		if old < 0 || old >= n || nw < 0 || nw >= n {
			return nil, invalid("Structure", "indices", "pair (%d, %d) out of range for %d atoms", old, nw, n)
		}
		if oldSeen[old] {
			return nil, invalid("Structure", "indices", "duplicated old index: %d, an atom can't be moved twice", old)
		}
		if newSeen[nw] {
			return nil, invalid("Structure", "indices", "duplicated new index: %d, two atoms can't be moved to the same index", nw)
		}
		oldSeen[old] = true
		newSeen[nw] = true
	}
	ret := S.Copy()
	for _, p := range pairs {
		old, nw := p[0], p[1]
		ret.Symbols[nw] = S.Symbols[old]
		copy(ret.Geometry.RawRowView(nw), S.Geometry.RawRowView(old))
	}
	return ret, nil
}

//Equal returns true if both structures are identical, geometry included.
func (S *Structure) Equal(o *Structure) bool {
	if S == nil || o == nil {
		return S == nil && o == nil
	}
	if len(S.Symbols) != len(o.Symbols) || len(S.Connectivity) != len(o.Connectivity) {
		return false
	}
	for i := range S.Symbols {
		if S.Symbols[i] != o.Symbols[i] {
			return false
		}
	}
	for i := range S.Connectivity {
		if S.Connectivity[i] != o.Connectivity[i] {
			return false
		}
	}
	return S.Charge == o.Charge &&
		S.Multiplicity == o.Multiplicity &&
		v3.Equal(S.Geometry, o.Geometry) &&
		S.Identifiers.Equal(o.Identifiers) &&
		mapsEqual(S.Extras, o.Extras)
}

//Dump returns the mapping form of the structure. The geometry is a list of
//[x, y, z] rows and each bond a [i, j, order] list of floats.
func (S *Structure) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("symbols", append([]string(nil), S.Symbols...))
	e.req("geometry", S.Geometry.Rows())
	e.def("charge", S.Charge, S.Charge == 0)
	e.def("multiplicity", S.Multiplicity, S.Multiplicity == 1)
	e.def("identifiers", S.Identifiers.Dump(opts), S.Identifiers.IsZero())
	bonds := make([][]float64, len(S.Connectivity))
	for i, b := range S.Connectivity {
		bonds[i] = []float64{float64(b.I), float64(b.J), b.Order}
	}
	e.def("connectivity", bonds, len(bonds) == 0)
	e.extras(S.Extras)
	return e.done()
}

//StructureFromMap builds a Structure from its mapping form. The geometry
//can be nested or flat.
func StructureFromMap(m map[string]any) (*Structure, error) {
	r := newReader("Structure", m)
	if !r.has("symbols") {
		r.fail("symbols", "field required")
	}
	symbols := r.strings("symbols")
	var geom []float64
	if !r.has("geometry") {
		r.fail("geometry", "field required")
	} else if G, ok := r.vectors("geometry"); ok {
		geom = G.Flat()
	}
	opts := []StructureOption{WithStructureExtras(r.extras())}
	if c := r.intp("charge"); c != nil {
		opts = append(opts, WithCharge(*c))
	}
	if mult := r.intp("multiplicity"); mult != nil {
		opts = append(opts, WithMultiplicity(*mult))
	}
	if im, ok := r.sub("identifiers"); ok {
		ids, err := IdentifiersFromMap(im)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithIdentifiers(ids))
	}
	var bonds []Bond
	for i, raw := range r.list("connectivity") {
		b, err := flatten(raw, nil)
		if err != nil || len(b) != 3 {
			r.fail("connectivity", "bond %d: expected [i, j, order]", i)
			break
		}
		bi, erri := toInt(b[0])
		bj, errj := toInt(b[1])
		if erri != nil || errj != nil {
			r.fail("connectivity", "bond %d: atom indices must be integers", i)
			break
		}
		bonds = append(bonds, Bond{I: bi, J: bj, Order: b[2]})
	}
	if len(bonds) > 0 {
		opts = append(opts, WithConnectivity(bonds))
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return NewStructure(symbols, geom, opts...)
}
