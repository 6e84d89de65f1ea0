/*
 * results_test.go, part of qcio.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairingNames(Te *testing.T) {
	P := Pairing{Spec: KindCalcSpec, Data: KindSinglePointData}
	assert.Equal(Te, "Results[CalcSpec,SinglePointData]", P.Name())
	back, err := ParsePairing(P.Name())
	require.NoError(Te, err)
	assert.Equal(Te, P, back)
	for _, bad := range []string{"", "Results[]", "Results[CalcSpec]", "CalcSpec,SinglePointData", "Results[,EmptyData]"} {
		_, err := ParsePairing(bad)
		var uerr *UnregisteredTypeError
		assert.ErrorAs(Te, err, &uerr, bad)
	}
}

func TestFailedResultsNeedTraceback(Te *testing.T) {
	spec := calcSpec(Te, Energy)
	_, err := NewTyped(spec, false, &EmptyData{}, prov())
	verr := requireValidation(Te, err)
	assert.Equal(Te, "traceback", verr.Field)
	assert.Contains(Te, verr.Reason, "a traceback must be provided for failed calculations")

	_, err = NewTyped(spec, false, &EmptyData{}, prov(), WithTraceback(""))
	requireValidation(Te, err)

	R, err := NewTyped(spec, false, &EmptyData{}, prov(), WithTraceback("Traceback: SCF failed"))
	require.NoError(Te, err)
	assert.False(Te, R.Succeeded())
	assert.Equal(Te, "Traceback: SCF failed", R.TracebackText())
	assert.Equal(Te, "", R.LogText())
	assert.Nil(Te, R.ReturnResult())
}

func TestSuccessfulResultsNeedData(Te *testing.T) {
	_, err := NewTyped(calcSpec(Te, Energy), true, &EmptyData{}, prov())
	verr := requireValidation(Te, err)
	assert.Equal(Te, "data", verr.Field)
	assert.Contains(Te, verr.Reason, "structured data must be provided for successful, non FileSpec calculations")

	fs := &FileSpec{Files: Files{"input.dat": TextBlob("molecule {}\n")}, CmdlineArgs: []string{"-n", "4"}}
	R, err := NewTyped(fs, true, &EmptyData{Files: Files{"output.dat": TextBlob("done\n")}}, prov())
	require.NoError(Te, err)
	assert.Equal(Te, "done\n", R.FileMap()["output.dat"].Text())
	assert.Nil(Te, R.ReturnResult())
}

func TestPrimaryResultIsRequired(Te *testing.T) {
	spec := calcSpec(Te, Gradient)
	_, err := NewTyped(spec, true, energyData(-76.0), prov())
	verr := requireValidation(Te, err)
	assert.Equal(Te, "data.gradient", verr.Field)
	assert.Contains(Te, verr.Error(), "missing the primary result: gradient")

	d := energyData(-76.0)
	d.Gradient = gradient(Te, 3)
	R, err := NewTyped(spec, true, d, prov())
	require.NoError(Te, err)
	assert.Same(Te, d.Gradient, R.ReturnResult())

	hess := &SinglePointData{Gradient: gradient(Te, 3)}
	_, err = NewTyped(calcSpec(Te, Energy), true, hess, prov())
	verr = requireValidation(Te, err)
	assert.Contains(Te, verr.Reason, "missing the primary result: energy")
}

func TestResultsNilParts(Te *testing.T) {
	_, err := NewTyped[*CalcSpec, *SinglePointData](nil, true, energyData(1), prov())
	verr := requireValidation(Te, err)
	assert.Equal(Te, "input_data", verr.Field)

	_, err = NewTyped[*CalcSpec, *SinglePointData](calcSpec(Te, Energy), true, nil, prov())
	verr = requireValidation(Te, err)
	assert.Equal(Te, "data", verr.Field)

	_, err = NewTyped(calcSpec(Te, Energy), true, energyData(1), Provenance{})
	verr = requireValidation(Te, err)
	assert.Equal(Te, "Provenance", verr.Record)

	bad := calcSpec(Te, "freq")
	_, err = NewTyped(bad, true, energyData(1), prov())
	requireValidation(Te, err)
}

func TestNewUsesConcreteTypes(Te *testing.T) {
	var spec Spec = calcSpec(Te, Energy)
	var data Data = energyData(-76.0)
	o, err := New(spec, true, data, prov(), WithLogs("SCF converged"), WithResultExtras(map[string]any{"tag": "a"}))
	require.NoError(Te, err)
	R, ok := o.(*Results[*CalcSpec, *SinglePointData])
	require.True(Te, ok, "got %T", o)
	assert.Equal(Te, -76.0, R.ReturnResult())
	assert.Equal(Te, "SCF converged", R.LogText())
	assert.Equal(Te, "a", R.Extras["tag"])
	assert.Equal(Te, Pairing{KindCalcSpec, KindSinglePointData}, o.Pairing())

	_, err = New(nil, true, data, prov())
	requireValidation(Te, err)
}

func TestSpecialize(Te *testing.T) {
	generic, err := NewTyped[Spec, Data](calcSpec(Te, Energy), true, energyData(-76.0), prov(), WithLogs("ok"))
	require.NoError(Te, err)

	o, err := Specialize(generic)
	require.NoError(Te, err)
	R, ok := o.(*Results[*CalcSpec, *SinglePointData])
	require.True(Te, ok, "got %T", o)
	assert.Equal(Te, "ok", R.LogText())
	assert.True(Te, generic.Equal(R))
	assert.True(Te, R.Equal(generic))

	again, err := Specialize(o)
	require.NoError(Te, err)
	assert.Same(Te, o, again)

	empty := new(Registry)
	_, err = empty.Specialize(generic)
	var uerr *UnregisteredTypeError
	require.ErrorAs(Te, err, &uerr)
	assert.Equal(Te, "Results[CalcSpec,SinglePointData]", uerr.Name)
}

func TestResultsEqual(Te *testing.T) {
	a := optimization(Te)
	b := optimization(Te)
	assert.True(Te, a.Equal(b))
	assert.False(Te, a.Equal(nil))

	c, err := NewTyped(a.InputData, a.Success, a.Data, a.Provenance, WithLogs("different"))
	require.NoError(Te, err)
	assert.False(Te, a.Equal(c))

	sp, err := NewTyped(calcSpec(Te, Energy), true, energyData(-1), prov())
	require.NoError(Te, err)
	assert.False(Te, a.Equal(sp))

	other := prov()
	other.Program = "otherprog"
	d, err := NewTyped(a.InputData, a.Success, a.Data, other)
	require.NoError(Te, err)
	assert.False(Te, a.Equal(d))
}

func TestResultsMapRoundTrip(Te *testing.T) {
	R := optimization(Te)
	assert.Same(Te, R.Data.FinalStructure(), R.ReturnResult())
	for _, opts := range []DumpOptions{FullDump, {ExcludeNone: true, ExcludeUnset: true}} {
		m := canonical(R.Dump(opts)).(map[string]any)
		back, err := ResultsFromMap[*CompositeCalcSpec, *OptimizationData](m)
		require.NoError(Te, err)
		assert.True(Te, R.Equal(back), "options %+v", opts)

		generic, err := ResultsFromMap[Spec, Data](m)
		require.NoError(Te, err)
		assert.True(Te, R.Equal(generic))
		assert.Equal(Te, KindCompositeCalcSpec, generic.InputData.Kind())
	}

	m := canonical(R.Dump(FullDump)).(map[string]any)
	_, err := ResultsFromMap[*CalcSpec, *OptimizationData](m)
	requireValidation(Te, err)
	m["stdout"] = "legacy"
	_, err = ResultsFromMap[*CompositeCalcSpec, *OptimizationData](m)
	verr := requireValidation(Te, err)
	assert.Equal(Te, "stdout", verr.Field)
}
