/*
 * helpers_test.go, part of qcio.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	v3 "github.com/qcgo/qcio/v3"
)

//Fixtures shared by the tests of the package.

func water(Te *testing.T, opts ...StructureOption) *Structure {
	Te.Helper()
	S, err := NewStructure([]string{"O", "H", "H"}, []float64{
		0.0, 0.0, 0.0,
		0.0, 1.4305, 1.1092,
		0.0, -1.4305, 1.1092,
	}, opts...)
	require.NoError(Te, err)
	return S
}

func prov() Provenance {
	v := "1.2.3"
	return Provenance{Program: "qcprog", ProgramVersion: &v, Extras: map[string]any{}}
}

func calcSpec(Te *testing.T, ct CalcType) *CalcSpec {
	Te.Helper()
	basis := "6-31g"
	return &CalcSpec{
		CalcType:  ct,
		Structure: water(Te),
		Model:     Model{Method: "hf", Basis: &basis},
		Keywords:  map[string]any{"maxiter": 100, "convergence": 1e-8},
		Files:     Files{},
		Extras:    map[string]any{},
	}
}

func ptr[T any](v T) *T { return &v }

func gradient(Te *testing.T, natoms int) *v3.Matrix {
	Te.Helper()
	g := make([]float64, 3*natoms)
	for i := range g {
		g[i] = 0.01 * float64(i+1)
	}
	M, err := v3.NewMatrix(g)
	require.NoError(Te, err)
	return M
}

func energyData(e float64) *SinglePointData {
	return &SinglePointData{Energy: &e, Files: Files{}, Extras: map[string]any{}}
}

//requireValidation checks that err is a *ValidationError and returns it.
func requireValidation(Te *testing.T, err error) *ValidationError {
	Te.Helper()
	require.Error(Te, err)
	var verr *ValidationError
	require.True(Te, errors.As(err, &verr), "expected a *ValidationError, got %T: %v", err, err)
	return verr
}

func requireMalformed(Te *testing.T, err error) *MalformedInterchangeError {
	Te.Helper()
	require.Error(Te, err)
	var merr *MalformedInterchangeError
	require.True(Te, errors.As(err, &merr), "expected a *MalformedInterchangeError, got %T: %v", err, err)
	return merr
}

//optimization returns a successful optimization on water with three steps,
//the second of which failed.
func optimization(Te *testing.T) *Results[*CompositeCalcSpec, *OptimizationData] {
	Te.Helper()
	var traj []Output
	for i, e := range []float64{-76.0, 0, -76.2} {
		spec := calcSpec(Te, Gradient)
		spec.Structure.Geometry.Set(1, 2, 1.1092+0.01*float64(i))
		if i == 1 {
			step, err := NewTyped(spec, false, &EmptyData{Files: Files{}}, prov(), WithTraceback("SCF did not converge"))
			require.NoError(Te, err)
			traj = append(traj, step)
			continue
		}
		d := energyData(e)
		d.Gradient = gradient(Te, 3)
		step, err := NewTyped(spec, true, d, prov(), WithLogs("step ok"))
		require.NoError(Te, err)
		traj = append(traj, step)
	}
	spec := &CompositeCalcSpec{
		CalcType:       Optimization,
		Structure:      water(Te),
		Keywords:       map[string]any{"maxiter": 50},
		Subprogram:     "qcprog",
		SubprogramSpec: CoreSpec{Model: Model{Method: "b3lyp"}},
	}
	R, err := NewTyped(spec, true, &OptimizationData{Trajectory: traj}, prov())
	require.NoError(Te, err)
	return R
}
