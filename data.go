/*
 * data.go, part of qcio.
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
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	v3 "github.com/qcgo/qcio/v3"
)

//DataKind names a Data variant.
type DataKind string

const (
	KindEmptyData           DataKind = "EmptyData"
	KindSinglePointData     DataKind = "SinglePointData"
	KindOptimizationData    DataKind = "OptimizationData"
	KindConformerSearchData DataKind = "ConformerSearchData"
)

//DataKinds lists every Data variant.
var DataKinds = []DataKind{KindEmptyData, KindSinglePointData, KindOptimizationData, KindConformerSearchData}

//Data is the output of a calculation. The set of implementations is
//closed: *EmptyData, *SinglePointData, *OptimizationData and
//*ConformerSearchData.
type Data interface {
	Filer
	Dumper
	Kind() DataKind
	Validate() error
	//prepare validates the data and puts it in its canonical form.
	prepare() error
	equal(Data) bool
}

//EmptyData holds only the files produced by a program.
type EmptyData struct {
	Files  Files
	Extras map[string]any
}

func (E *EmptyData) Kind() DataKind  { return KindEmptyData }
func (E *EmptyData) FileMap() Files  { return E.Files }
func (E *EmptyData) Validate() error { return nil }
func (E *EmptyData) prepare() error  { return nil }

func (E *EmptyData) equal(o Data) bool {
	O, ok := o.(*EmptyData)
	return ok && E.Files.Equal(O.Files) && mapsEqual(E.Extras, O.Extras)
}

func (E *EmptyData) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.files(E.Files)
	e.extras(E.Extras)
	return e.done()
}

//EmptyDataFromMap builds an EmptyData from its mapping form.
func EmptyDataFromMap(m map[string]any) (*EmptyData, error) {
	r := newReader("EmptyData", m)
	E := &EmptyData{Files: r.files(), Extras: r.extras()}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return E, nil
}

//CalcInfo is general information about a calculation, as reported by
//the program.
type CalcInfo struct {
	NAtoms *int
	NAlpha *int
	NBeta  *int
	NBasis *int
	NMO    *int
}

var calcInfoFields = []struct {
	wire  string
	field func(*CalcInfo) **int
}{
	{"calcinfo_natoms", func(C *CalcInfo) **int { return &C.NAtoms }},
	{"calcinfo_nalpha", func(C *CalcInfo) **int { return &C.NAlpha }},
	{"calcinfo_nbeta", func(C *CalcInfo) **int { return &C.NBeta }},
	{"calcinfo_nbasis", func(C *CalcInfo) **int { return &C.NBasis }},
	{"calcinfo_nmo", func(C *CalcInfo) **int { return &C.NMO }},
}

func (C CalcInfo) same(o CalcInfo) bool {
	for _, f := range calcInfoFields {
		if !ptrEqual(*f.field(&C), *f.field(&o)) {
			return false
		}
	}
	return true
}

func (C CalcInfo) dump(e *emitter) {
	for _, f := range calcInfoFields {
		v := *f.field(&C)
		e.opt(f.wire, deref(v), v == nil)
	}
}

func readCalcInfo(r *reader) CalcInfo {
	var C CalcInfo
	for _, f := range calcInfoFields {
		*f.field(&C) = r.intp(f.wire)
	}
	return C
}

//Wavefunction holds the SCF orbital eigenvalues and occupations.
type Wavefunction struct {
	SCFEigenvaluesA []float64
	SCFEigenvaluesB []float64
	SCFOccupationsA []float64
	SCFOccupationsB []float64
	Extras          map[string]any
}

var wavefunctionFields = []struct {
	wire  string
	field func(*Wavefunction) *[]float64
}{
	{"scf_eigenvalues_a", func(W *Wavefunction) *[]float64 { return &W.SCFEigenvaluesA }},
	{"scf_eigenvalues_b", func(W *Wavefunction) *[]float64 { return &W.SCFEigenvaluesB }},
	{"scf_occupations_a", func(W *Wavefunction) *[]float64 { return &W.SCFOccupationsA }},
	{"scf_occupations_b", func(W *Wavefunction) *[]float64 { return &W.SCFOccupationsB }},
}

func (W *Wavefunction) Equal(o *Wavefunction) bool {
	if W == nil || o == nil {
		return W == nil && o == nil
	}
	for _, f := range wavefunctionFields {
		a, b := *f.field(W), *f.field(o)
		if (a == nil) != (b == nil) || !floatsEqual(a, b) {
			return false
		}
	}
	return mapsEqual(W.Extras, o.Extras)
}

func (W *Wavefunction) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	for _, f := range wavefunctionFields {
		v := *f.field(W)
		e.opt(f.wire, append([]float64{}, v...), v == nil)
	}
	e.extras(W.Extras)
	return e.done()
}

//WavefunctionFromMap builds a Wavefunction from its mapping form.
//Nested arrays are flattened.
func WavefunctionFromMap(m map[string]any) (*Wavefunction, error) {
	r := newReader("Wavefunction", m)
	W := new(Wavefunction)
	for _, f := range wavefunctionFields {
		if v, ok := r.floats(f.wire); ok {
			if v == nil {
				v = []float64{}
			}
			*f.field(W) = v
		}
	}
	W.Extras = r.extras()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return W, nil
}

//SinglePointData is the output of an energy, gradient or hessian
//calculation. Energies are in Hartree, the gradient in Hartree/Bohr and the
//hessian in Hartree/Bohr^2.
type SinglePointData struct {
	CalcInfo
	Energy                 *float64
	Gradient               *v3.Matrix //N x 3
	Hessian                *mat.Dense //square
	NuclearRepulsionEnergy *float64
	Wavefunction           *Wavefunction
	FreqsWavenumber        []float64
	NormalModesCartesian   []*v3.Matrix //un-mass-weighted displacements of each mode, in Bohr.
	GibbsFreeEnergy        *float64
	SCFDipoleMoment        []float64 //x, y, z in e*a0
	Files                  Files
	Extras                 map[string]any
}

func (S *SinglePointData) Kind() DataKind { return KindSinglePointData }
func (S *SinglePointData) FileMap() Files { return S.Files }

//Validate checks that at least one of energy, gradient or hessian is
//present, and the shapes of the arrays.
func (S *SinglePointData) Validate() error {
	if S.Energy == nil && S.Gradient == nil && S.Hessian == nil {
		return invalid("SinglePointData", "energy,gradient,hessian", "an energy, gradient or hessian is required")
	}
	if S.Hessian != nil {
		if r, c := S.Hessian.Dims(); r != c {
			return invalid("SinglePointData", "hessian", "expected a square matrix, got %d x %d", r, c)
		}
	}
	if len(S.NormalModesCartesian) > 0 {
		if S.NormalModesCartesian[0] == nil {
			return invalid("SinglePointData", "normal_modes_cartesian", "mode 0 is nil")
		}
		n := S.NormalModesCartesian[0].NVecs()
		for i, m := range S.NormalModesCartesian {
			if m == nil || m.NVecs() != n {
				return invalid("SinglePointData", "normal_modes_cartesian", "mode %d doesn't have %d atoms", i, n)
			}
		}
		if len(S.FreqsWavenumber) > 0 && len(S.FreqsWavenumber) != len(S.NormalModesCartesian) {
			return invalid("SinglePointData", "normal_modes_cartesian", "%d modes for %d frequencies", len(S.NormalModesCartesian), len(S.FreqsWavenumber))
		}
	}
	if S.SCFDipoleMoment != nil && len(S.SCFDipoleMoment) != 3 {
		return invalid("SinglePointData", "scf_dipole_moment", "expected 3 components, got %d", len(S.SCFDipoleMoment))
	}
	return nil
}

func (S *SinglePointData) prepare() error { return S.Validate() }

//ReturnResult returns the field named by calctype: a float64 for an energy,
//a *v3.Matrix for a gradient and a *mat.Dense for a hessian. It returns nil
//if the result is not there or calctype is not one of those.
func (S *SinglePointData) ReturnResult(calctype CalcType) any {
	switch calctype {
	case Energy:
		if S.Energy != nil {
			return *S.Energy
		}
	case Gradient:
		if S.Gradient != nil {
			return S.Gradient
		}
	case Hessian:
		if S.Hessian != nil {
			return S.Hessian
		}
	}
	return nil
}

func (S *SinglePointData) equal(o Data) bool {
	O, ok := o.(*SinglePointData)
	if !ok || len(S.NormalModesCartesian) != len(O.NormalModesCartesian) {
		return false
	}
	for i := range S.NormalModesCartesian {
		if !v3.Equal(S.NormalModesCartesian[i], O.NormalModesCartesian[i]) {
			return false
		}
	}
	hessEq := (S.Hessian == nil) == (O.Hessian == nil)
	if hessEq && S.Hessian != nil {
		hessEq = mat.Equal(S.Hessian, O.Hessian)
	}
	return hessEq &&
		S.CalcInfo.same(O.CalcInfo) &&
		floatPtrEqual(S.Energy, O.Energy) &&
		v3.Equal(S.Gradient, O.Gradient) &&
		floatPtrEqual(S.NuclearRepulsionEnergy, O.NuclearRepulsionEnergy) &&
		S.Wavefunction.Equal(O.Wavefunction) &&
		floatsEqual(S.FreqsWavenumber, O.FreqsWavenumber) &&
		floatPtrEqual(S.GibbsFreeEnergy, O.GibbsFreeEnergy) &&
		(S.SCFDipoleMoment == nil) == (O.SCFDipoleMoment == nil) &&
		floatsEqual(S.SCFDipoleMoment, O.SCFDipoleMoment) &&
		S.Files.Equal(O.Files) &&
		mapsEqual(S.Extras, O.Extras)
}

//Dump returns the mapping form. The gradient and hessian are written as
//lists of rows, the normal modes as a list of modes of rows.
func (S *SinglePointData) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	S.CalcInfo.dump(e)
	e.opt("energy", deref(S.Energy), S.Energy == nil)
	if S.Gradient != nil {
		e.opt("gradient", S.Gradient.Rows(), false)
	} else {
		e.opt("gradient", nil, true)
	}
	if S.Hessian != nil {
		e.opt("hessian", denseRows(S.Hessian), false)
	} else {
		e.opt("hessian", nil, true)
	}
	e.opt("nuclear_repulsion_energy", deref(S.NuclearRepulsionEnergy), S.NuclearRepulsionEnergy == nil)
	if S.Wavefunction != nil {
		e.opt("wavefunction", S.Wavefunction.Dump(opts), false)
	} else {
		e.opt("wavefunction", nil, true)
	}
	e.def("freqs_wavenumber", append([]float64{}, S.FreqsWavenumber...), len(S.FreqsWavenumber) == 0)
	if S.NormalModesCartesian != nil {
		modes := make([][][]float64, len(S.NormalModesCartesian))
		for i, m := range S.NormalModesCartesian {
			modes[i] = m.Rows()
		}
		e.opt("normal_modes_cartesian", modes, false)
	} else {
		e.opt("normal_modes_cartesian", nil, true)
	}
	e.opt("gibbs_free_energy", deref(S.GibbsFreeEnergy), S.GibbsFreeEnergy == nil)
	e.opt("scf_dipole_moment", append([]float64{}, S.SCFDipoleMoment...), S.SCFDipoleMoment == nil)
	e.files(S.Files)
	e.extras(S.Extras)
	return e.done()
}

func denseRows(D *mat.Dense) [][]float64 {
	r, _ := D.Dims()
	ret := make([][]float64, r)
	for i := range ret {
		ret[i] = append([]float64(nil), D.RawRowView(i)...)
	}
	return ret
}

//SinglePointDataFromMap builds a SinglePointData from its mapping form.
//The gradient is reshaped to N x 3, the hessian to a square matrix and the
//normal modes to one N x 3 matrix per frequency (or per element of the outer
//list, if there are no frequencies). Any other size is an error.
func SinglePointDataFromMap(m map[string]any) (*SinglePointData, error) {
	const rec = "SinglePointData"
	r := newReader(rec, m)
	S := new(SinglePointData)
	S.CalcInfo = readCalcInfo(r)
	S.Energy = r.float("energy")
	S.Gradient, _ = r.vectors("gradient")
	if h, ok := r.floats("hessian"); ok {
		n := int(math.Sqrt(float64(len(h))))
		if n == 0 || n*n != len(h) {
			return nil, invalid(rec, "hessian", "can't reshape %d values to a square matrix", len(h))
		}
		S.Hessian = mat.NewDense(n, n, h)
	}
	S.NuclearRepulsionEnergy = r.float("nuclear_repulsion_energy")
	if wm, ok := r.sub("wavefunction"); ok {
		w, err := WavefunctionFromMap(wm)
		if err != nil {
			return nil, err
		}
		S.Wavefunction = w
	}
	S.FreqsWavenumber, _ = r.floats("freqs_wavenumber")
	if raw, ok := r.get("normal_modes_cartesian"); ok {
		modes, err := normalModes(raw, len(S.FreqsWavenumber))
		if err != nil {
			return nil, err
		}
		S.NormalModesCartesian = modes
	}
	S.GibbsFreeEnergy = r.float("gibbs_free_energy")
	if d, ok := r.floats("scf_dipole_moment"); ok {
		S.SCFDipoleMoment = append([]float64{}, d...)
	}
	S.Files = r.files()
	S.Extras = r.extras()
	if err := r.finish(); err != nil {
		return nil, err
	}
	if err := S.Validate(); err != nil {
		return nil, err
	}
	return S, nil
}

func normalModes(raw any, nfreqs int) ([]*v3.Matrix, error) {
	const rec = "SinglePointData"
	outer, err := toList(raw)
	if err != nil {
		return nil, invalid(rec, "normal_modes_cartesian", "%s", err)
	}
	flat, err := flatten(raw, nil)
	if err != nil {
		return nil, invalid(rec, "normal_modes_cartesian", "%s", err)
	}
	nmodes := nfreqs
	if nmodes == 0 {
		nmodes = len(outer)
	}
	if nmodes == 0 {
		if len(flat) != 0 {
			return nil, invalid(rec, "normal_modes_cartesian", "no modes for %d values", len(flat))
		}
		return []*v3.Matrix{}, nil
	}
	per := len(flat) / nmodes
	if per == 0 || len(flat)%nmodes != 0 || per%3 != 0 {
		return nil, invalid(rec, "normal_modes_cartesian", "can't reshape %d values to %d modes x N x 3", len(flat), nmodes)
	}
	ret := make([]*v3.Matrix, nmodes)
	for i := range ret {
		ret[i], _ = v3.NewMatrix(flat[i*per : (i+1)*per])
	}
	return ret, nil
}

//OptimizationData is the output of a geometry optimization or transition
//state search. Each step of the trajectory is the Results of a
//single-point calculation, paired with SinglePointData or, for a failed
//step, EmptyData.
type OptimizationData struct {
	CalcInfo
	Trajectory []Output
	Files      Files
	Extras     map[string]any
}

func (O *OptimizationData) Kind() DataKind { return KindOptimizationData }
func (O *OptimizationData) FileMap() Files { return O.Files }

//Validate checks that every step pairs a CalcSpec with SinglePointData
//or EmptyData.
func (O *OptimizationData) Validate() error {
	for i, step := range O.Trajectory {
		if step == nil {
			return invalid("OptimizationData", "trajectory", "step %d is nil", i)
		}
		p := step.Pairing()
		if p.Spec != KindCalcSpec || (p.Data != KindSinglePointData && p.Data != KindEmptyData) {
			return invalid("OptimizationData", "trajectory", "step %d is a %s, expected Results[CalcSpec,SinglePointData] or Results[CalcSpec,EmptyData]", i, p.Name())
		}
	}
	return nil
}

func (O *OptimizationData) prepare() error { return O.Validate() }

//Energies returns the energy of each step. Failed steps, or steps with no
//energy, give NaN.
func (O *OptimizationData) Energies() []float64 {
	ret := make([]float64, len(O.Trajectory))
	for i, step := range O.Trajectory {
		ret[i] = math.NaN()
		if !step.Succeeded() {
			continue
		}
		if sp, ok := step.Payload().(*SinglePointData); ok && sp.Energy != nil {
			ret[i] = *sp.Energy
		}
	}
	return ret
}

//Structures returns the structure of each step.
func (O *OptimizationData) Structures() []*Structure {
	ret := make([]*Structure, 0, len(O.Trajectory))
	for _, step := range O.Trajectory {
		if s, ok := step.Input().(StructuredSpec); ok {
			ret = append(ret, s.Target())
		}
	}
	return ret
}

//FinalStructure returns the structure of the last step, or nil if the
//trajectory is empty.
func (O *OptimizationData) FinalStructure() *Structure {
	s := O.Structures()
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

//FinalEnergy returns the energy of the last step. It is NaN if that step
//failed or the trajectory is empty.
func (O *OptimizationData) FinalEnergy() float64 {
	e := O.Energies()
	if len(e) == 0 {
		return math.NaN()
	}
	return e[len(e)-1]
}

//ToXYZ returns the structures of the trajectory as a multi-structure XYZ text.
func (O *OptimizationData) ToXYZ(precision int) string {
	var b strings.Builder
	for _, s := range O.Structures() {
		b.WriteString(s.ToXYZ(precision))
	}
	return b.String()
}

func (O *OptimizationData) equal(o Data) bool {
	P, ok := o.(*OptimizationData)
	if !ok || len(O.Trajectory) != len(P.Trajectory) {
		return false
	}
	for i := range O.Trajectory {
		if !O.Trajectory[i].Equal(P.Trajectory[i]) {
			return false
		}
	}
	return O.CalcInfo.same(P.CalcInfo) && O.Files.Equal(P.Files) && mapsEqual(O.Extras, P.Extras)
}

func (O *OptimizationData) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	O.CalcInfo.dump(e)
	traj := make([]map[string]any, len(O.Trajectory))
	for i, step := range O.Trajectory {
		traj[i] = step.Dump(opts)
	}
	e.req("trajectory", traj)
	e.files(O.Files)
	e.extras(O.Extras)
	return e.done()
}

//OptimizationDataFromMap builds an OptimizationData from its mapping form.
//The steps are built as *Results[*CalcSpec, *SinglePointData] or
//*Results[*CalcSpec, *EmptyData], depending on their data.
func OptimizationDataFromMap(m map[string]any) (*OptimizationData, error) {
	r := newReader("OptimizationData", m)
	O := new(OptimizationData)
	O.CalcInfo = readCalcInfo(r)
	for i, raw := range r.list("trajectory") {
		sm, err := toMap(raw)
		if err != nil {
			return nil, invalid("OptimizationData", "trajectory", "step %d: %s", i, err)
		}
		step, err := trajectoryStep(sm)
		if err != nil {
			return nil, errDecorate(err, "OptimizationDataFromMap")
		}
		O.Trajectory = append(O.Trajectory, step)
	}
	O.Files = r.files()
	O.Extras = r.extras()
	if err := r.finish(); err != nil {
		return nil, err
	}
	if err := O.Validate(); err != nil {
		return nil, err
	}
	return O, nil
}

func trajectoryStep(m map[string]any) (Output, error) {
	dm, _ := m["data"].(map[string]any)
	if InferDataKind(dm) == KindEmptyData {
		return asOutput[*CalcSpec, *EmptyData](ResultsFromMap[*CalcSpec, *EmptyData](m))
	}
	return asOutput[*CalcSpec, *SinglePointData](ResultsFromMap[*CalcSpec, *SinglePointData](m))
}

//ConformerSearchData is the output of a conformer search. Conformers and
//rotamers are kept sorted by energy, if energies are given.
type ConformerSearchData struct {
	Conformers        []*Structure
	ConformerEnergies []float64
	Rotamers          []*Structure
	RotamerEnergies   []float64
	Files             Files
	Extras            map[string]any
}

//NewConformerSearchData returns a validated ConformerSearchData with the
//conformers and the rotamers sorted by energy. The slices given are not
//modified.
func NewConformerSearchData(conformers []*Structure, conformerEnergies []float64, rotamers []*Structure, rotamerEnergies []float64) (*ConformerSearchData, error) {
	C := &ConformerSearchData{
		Conformers:        append([]*Structure{}, conformers...),
		ConformerEnergies: append([]float64{}, conformerEnergies...),
		Rotamers:          append([]*Structure{}, rotamers...),
		RotamerEnergies:   append([]float64{}, rotamerEnergies...),
		Files:             Files{},
		Extras:            map[string]any{},
	}
	if err := C.prepare(); err != nil {
		return nil, err
	}
	return C, nil
}

func (C *ConformerSearchData) Kind() DataKind { return KindConformerSearchData }
func (C *ConformerSearchData) FileMap() Files { return C.Files }

//Validate checks that each list of energies is empty or has one energy
//per structure.
func (C *ConformerSearchData) Validate() error {
	if len(C.ConformerEnergies) > 0 && len(C.ConformerEnergies) != len(C.Conformers) {
		return invalid("ConformerSearchData", "conformer_energies", "%d energies for %d conformers", len(C.ConformerEnergies), len(C.Conformers))
	}
	if len(C.RotamerEnergies) > 0 && len(C.RotamerEnergies) != len(C.Rotamers) {
		return invalid("ConformerSearchData", "rotamer_energies", "%d energies for %d rotamers", len(C.RotamerEnergies), len(C.Rotamers))
	}
	for i, s := range append(append([]*Structure{}, C.Conformers...), C.Rotamers...) {
		if s == nil {
			return invalid("ConformerSearchData", "conformers,rotamers", "structure %d is nil", i)
		}
	}
	return nil
}

//prepare validates C and sorts, in place, both lists by energy.
func (C *ConformerSearchData) prepare() error {
	if err := C.Validate(); err != nil {
		return err
	}
	sortByEnergy(C.Conformers, C.ConformerEnergies)
	sortByEnergy(C.Rotamers, C.RotamerEnergies)
	return nil
}

//sortByEnergy sorts energies ascending, and the structures with them. The sort
//is stable, so structures with the same energy keep their order.
func sortByEnergy(structures []*Structure, energies []float64) {
	if len(energies) == 0 || sort.Float64sAreSorted(energies) {
		return
	}
	inds := make([]int, len(energies))
	floats.ArgsortStable(energies, inds)
	sorted := make([]*Structure, len(structures))
	for i, j := range inds {
		sorted[i] = structures[j]
	}
	copy(structures, sorted)
}

//ConformerEnergiesRelative returns the conformer energies minus the lowest one.
func (C *ConformerSearchData) ConformerEnergiesRelative() []float64 {
	return relative(C.ConformerEnergies)
}

//RotamerEnergiesRelative returns the rotamer energies minus the lowest one.
func (C *ConformerSearchData) RotamerEnergiesRelative() []float64 {
	return relative(C.RotamerEnergies)
}

func relative(e []float64) []float64 {
	ret := append([]float64{}, e...)
	if len(ret) == 0 {
		return ret
	}
	floats.AddConst(-floats.Min(ret), ret)
	return ret
}

func (C *ConformerSearchData) equal(o Data) bool {
	O, ok := o.(*ConformerSearchData)
	if !ok {
		return false
	}
	return structuresEqual(C.Conformers, O.Conformers) &&
		floatsEqual(C.ConformerEnergies, O.ConformerEnergies) &&
		structuresEqual(C.Rotamers, O.Rotamers) &&
		floatsEqual(C.RotamerEnergies, O.RotamerEnergies) &&
		C.Files.Equal(O.Files) &&
		mapsEqual(C.Extras, O.Extras)
}

func structuresEqual(a, b []*Structure) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func dumpStructures(l []*Structure, opts DumpOptions) []map[string]any {
	ret := make([]map[string]any, len(l))
	for i, s := range l {
		ret[i] = s.Dump(opts)
	}
	return ret
}

func (C *ConformerSearchData) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("conformers", dumpStructures(C.Conformers, opts))
	e.def("conformer_energies", append([]float64{}, C.ConformerEnergies...), len(C.ConformerEnergies) == 0)
	e.def("rotamers", dumpStructures(C.Rotamers, opts), len(C.Rotamers) == 0)
	e.def("rotamer_energies", append([]float64{}, C.RotamerEnergies...), len(C.RotamerEnergies) == 0)
	e.files(C.Files)
	e.extras(C.Extras)
	return e.done()
}

//ConformerSearchDataFromMap builds a ConformerSearchData from its mapping
//form. The structures are sorted by energy.
func ConformerSearchDataFromMap(m map[string]any) (*ConformerSearchData, error) {
	r := newReader("ConformerSearchData", m)
	readStructures := func(key string) []*Structure {
		var ret []*Structure
		for i, raw := range r.list(key) {
			sm, err := toMap(raw)
			if err != nil {
				r.fail(key, "element %d: %s", i, err)
				return nil
			}
			s, err := StructureFromMap(sm)
			if err != nil {
				if r.err == nil {
					r.err = err
				}
				return nil
			}
			ret = append(ret, s)
		}
		return ret
	}
	C := new(ConformerSearchData)
	C.Conformers = readStructures("conformers")
	C.ConformerEnergies, _ = r.floats("conformer_energies")
	C.Rotamers = readStructures("rotamers")
	C.RotamerEnergies, _ = r.floats("rotamer_energies")
	C.Files = r.files()
	C.Extras = r.extras()
	if err := r.finish(); err != nil {
		return nil, err
	}
	if err := C.prepare(); err != nil {
		return nil, err
	}
	return C, nil
}

//DataFromMap builds the Data of the given kind from its mapping form. If kind
//is empty, it is inferred from the fields present.
func DataFromMap(kind DataKind, m map[string]any) (Data, error) {
	if kind == "" {
		kind = InferDataKind(m)
	}
	switch kind {
	case KindEmptyData:
		return asData(EmptyDataFromMap(m))
	case KindSinglePointData:
		return asData(SinglePointDataFromMap(m))
	case KindOptimizationData:
		return asData(OptimizationDataFromMap(m))
	case KindConformerSearchData:
		return asData(ConformerSearchDataFromMap(m))
	}
	return nil, invalid("Data", "", "unknown data kind %q", string(kind))
}

func asData[T Data](d T, err error) (Data, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

//InferDataKind guesses the Data variant from the fields in the mapping.
func InferDataKind(m map[string]any) DataKind {
	switch {
	case hasAny(m, "trajectory"):
		return KindOptimizationData
	case hasAny(m, "conformers", "conformer_energies", "rotamers", "rotamer_energies"):
		return KindConformerSearchData
	case hasAny(m, "energy", "gradient", "hessian"):
		return KindSinglePointData
	}
	return KindEmptyData
}
