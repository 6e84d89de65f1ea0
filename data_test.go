/*
 * data_test.go, part of qcio.
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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSinglePointDataValidate(Te *testing.T) {
	S := &SinglePointData{}
	verr := requireValidation(Te, S.Validate())
	assert.Equal(Te, "energy,gradient,hessian", verr.Field)

	S.Hessian = mat.NewDense(2, 3, nil)
	verr = requireValidation(Te, S.Validate())
	assert.Equal(Te, "hessian", verr.Field)

	S = energyData(-1.0)
	S.SCFDipoleMoment = []float64{0, 1}
	requireValidation(Te, S.Validate())
	S.SCFDipoleMoment = []float64{0, 1, 0.5}
	require.NoError(Te, S.Validate())

	S.FreqsWavenumber = []float64{1600, 3700}
	S.NormalModesCartesian = append(S.NormalModesCartesian, gradient(Te, 3), gradient(Te, 2))
	requireValidation(Te, S.Validate())
	S.NormalModesCartesian[1] = gradient(Te, 3)
	require.NoError(Te, S.Validate())
	S.FreqsWavenumber = S.FreqsWavenumber[:1]
	requireValidation(Te, S.Validate())
}

func TestSinglePointDataReshape(Te *testing.T) {
	m := map[string]any{
		"energy":   -76.0,
		"gradient": []any{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
		"hessian":  []any{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	S, err := SinglePointDataFromMap(m)
	require.NoError(Te, err)
	assert.Equal(Te, 2, S.Gradient.NVecs())
	assert.Equal(Te, 0.6, S.Gradient.At(1, 2))
	r, c := S.Hessian.Dims()
	assert.Equal(Te, []int{3, 3}, []int{r, c})

	m["gradient"] = []any{0.1, 0.2}
	_, err = SinglePointDataFromMap(m)
	verr := requireValidation(Te, err)
	assert.Equal(Te, "gradient", verr.Field)

	m["gradient"] = []any{[]any{0.1, 0.2}, []any{0.3, 0.4}, []any{0.5, 0.6}}
	_, err = SinglePointDataFromMap(m)
	verr = requireValidation(Te, err)
	assert.Equal(Te, "gradient", verr.Field, "rows of 2 can't be a N x 3 gradient")

	m["gradient"] = []any{[]any{0.1, 0.2, 0.3}}
	m["hessian"] = []any{1, 2, 3}
	_, err = SinglePointDataFromMap(m)
	verr = requireValidation(Te, err)
	assert.Equal(Te, "hessian", verr.Field)
}

func TestNormalModes(Te *testing.T) {
	base := map[string]any{"energy": -1.0, "freqs_wavenumber": []any{100.0, 200.0}}
	base["normal_modes_cartesian"] = []any{0, 0, 1, 0, 0, -1, 1, 0, 0, -1, 0, 0}
	S, err := SinglePointDataFromMap(base)
	require.NoError(Te, err)
	require.Len(Te, S.NormalModesCartesian, 2)
	assert.Equal(Te, 2, S.NormalModesCartesian[0].NVecs())
	assert.Equal(Te, 1.0, S.NormalModesCartesian[1].At(0, 0))

	back, err := SinglePointDataFromMap(S.Dump(FullDump))
	require.NoError(Te, err)
	assert.True(Te, S.equal(back))

	base["normal_modes_cartesian"] = []any{0, 0, 1, 0}
	_, err = SinglePointDataFromMap(base)
	requireValidation(Te, err)
}

func TestReturnResult(Te *testing.T) {
	S := energyData(-76.5)
	assert.Equal(Te, -76.5, S.ReturnResult(Energy))
	assert.Nil(Te, S.ReturnResult(Gradient))
	assert.Nil(Te, S.ReturnResult(Optimization))
	S.Gradient = gradient(Te, 3)
	assert.Same(Te, S.Gradient, S.ReturnResult(Gradient))
}

func TestSinglePointDataDump(Te *testing.T) {
	S := energyData(-76.0)
	S.NAtoms = ptr(3)
	S.Wavefunction = &Wavefunction{SCFEigenvaluesA: []float64{-20.5, -1.3}, SCFOccupationsA: []float64{2, 2}}
	S.Files["orbitals.bin"] = BinaryBlob(binaryContent)
	full := S.Dump(FullDump)
	assert.Contains(Te, full, "gradient")
	assert.Nil(Te, full["gradient"])
	assert.Equal(Te, 3, full["calcinfo_natoms"])

	slim := S.Dump(DumpOptions{ExcludeNone: true, ExcludeUnset: true})
	assert.NotContains(Te, slim, "gradient")
	assert.NotContains(Te, slim, "freqs_wavenumber")
	wf := slim["wavefunction"].(map[string]any)
	assert.NotContains(Te, wf, "scf_eigenvalues_b")

	back, err := SinglePointDataFromMap(canonical(slim).(map[string]any))
	require.NoError(Te, err)
	assert.True(Te, S.equal(back))
}

func TestEmptyData(Te *testing.T) {
	E, err := EmptyDataFromMap(map[string]any{"files": map[string]any{"out.log": "done"}})
	require.NoError(Te, err)
	assert.Equal(Te, "done", E.Files["out.log"].Text())
	_, err = EmptyDataFromMap(map[string]any{"energy": 1.0})
	requireValidation(Te, err)
}

func TestInferDataKind(Te *testing.T) {
	assert.Equal(Te, KindEmptyData, InferDataKind(nil))
	assert.Equal(Te, KindEmptyData, InferDataKind(map[string]any{"files": map[string]any{}}))
	assert.Equal(Te, KindSinglePointData, InferDataKind(map[string]any{"gradient": []any{}}))
	assert.Equal(Te, KindOptimizationData, InferDataKind(map[string]any{"trajectory": []any{}, "energy": 1.0}))
	assert.Equal(Te, KindConformerSearchData, InferDataKind(map[string]any{"rotamers": []any{}}))

	d, err := DataFromMap("", map[string]any{"energy": -1.0})
	require.NoError(Te, err)
	assert.Equal(Te, KindSinglePointData, d.Kind())
	_, err = DataFromMap("Nope", map[string]any{})
	requireValidation(Te, err)
	d, err = DataFromMap(KindSinglePointData, map[string]any{})
	assert.Nil(Te, d)
	requireValidation(Te, err)
}

func TestConformerSearchData(Te *testing.T) {
	a, b, c := water(Te), water(Te, WithCharge(1), WithMultiplicity(2)), water(Te, WithCharge(-1), WithMultiplicity(2))
	energies := []float64{-1.0, -3.0, -2.0}
	C, err := NewConformerSearchData([]*Structure{a, b, c}, energies, nil, nil)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{-3.0, -2.0, -1.0}, C.ConformerEnergies)
	assert.Same(Te, b, C.Conformers[0])
	assert.Same(Te, c, C.Conformers[1])
	assert.Same(Te, a, C.Conformers[2])
	assert.Equal(Te, []float64{-1.0, -3.0, -2.0}, energies)
	assert.Equal(Te, []float64{0, 1, 2}, C.ConformerEnergiesRelative())
	assert.Empty(Te, C.RotamerEnergiesRelative())

	_, err = NewConformerSearchData([]*Structure{a, b}, []float64{1}, nil, nil)
	verr := requireValidation(Te, err)
	assert.Equal(Te, "conformer_energies", verr.Field)
	_, err = NewConformerSearchData(nil, nil, []*Structure{a}, []float64{1, 2})
	requireValidation(Te, err)

	noEnergies, err := NewConformerSearchData([]*Structure{a, b}, nil, nil, nil)
	require.NoError(Te, err)
	assert.Same(Te, a, noEnergies.Conformers[0])

	back, err := ConformerSearchDataFromMap(canonical(C.Dump(DumpOptions{ExcludeUnset: true})).(map[string]any))
	require.NoError(Te, err)
	assert.True(Te, C.equal(back))
}

func TestOptimizationData(Te *testing.T) {
	R := optimization(Te)
	O := R.Data
	e := O.Energies()
	require.Len(Te, e, 3)
	assert.Equal(Te, -76.0, e[0])
	assert.True(Te, math.IsNaN(e[1]))
	assert.Equal(Te, -76.2, e[2])
	assert.Equal(Te, -76.2, O.FinalEnergy())
	assert.InDelta(Te, 1.1292, O.FinalStructure().Geometry.At(1, 2), 1e-12)
	assert.Len(Te, O.Structures(), 3)

	xyz := O.ToXYZ(6)
	assert.Equal(Te, 3, strings.Count(xyz, "qcio_charge=0"))
	S, err := FromXYZMulti(xyz, nil, nil)
	require.NoError(Te, err)
	assert.Len(Te, S, 3)

	empty := &OptimizationData{}
	assert.Nil(Te, empty.FinalStructure())
	assert.True(Te, math.IsNaN(empty.FinalEnergy()))

	back, err := OptimizationDataFromMap(canonical(O.Dump(FullDump)).(map[string]any))
	require.NoError(Te, err)
	assert.True(Te, O.equal(back))
	_, isEmpty := back.Trajectory[1].(*Results[*CalcSpec, *EmptyData])
	assert.True(Te, isEmpty)
	_, isSP := back.Trajectory[0].(*Results[*CalcSpec, *SinglePointData])
	assert.True(Te, isSP)
}

func TestOptimizationDataRejectsOtherSteps(Te *testing.T) {
	inner := optimization(Te)
	O := &OptimizationData{Trajectory: []Output{inner}}
	verr := requireValidation(Te, O.Validate())
	assert.Equal(Te, "trajectory", verr.Field)
	O.Trajectory = []Output{nil}
	requireValidation(Te, O.Validate())
}
