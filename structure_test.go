/*
 * structure_test.go, part of qcio.
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

func TestNewStructure(Te *testing.T) {
	S, err := NewStructure([]string{"c", "CL", " h "}, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"C", "Cl", "H"}, S.Symbols)
	assert.Equal(Te, 0, S.Charge)
	assert.Equal(Te, 1, S.Multiplicity)
	assert.Equal(Te, []int{6, 17, 1}, S.AtomicNumbers())
	assert.Equal(Te, "CHCl", S.Formula())

	_, err = NewStructure([]string{"O", "H"}, []float64{0, 0, 0, 1, 0})
	verr := requireValidation(Te, err)
	assert.Equal(Te, "geometry", verr.Field)

	_, err = NewStructure([]string{"Xx"}, []float64{0, 0, 0})
	verr = requireValidation(Te, err)
	assert.Equal(Te, "symbols", verr.Field)

	_, err = NewStructure(nil, nil)
	requireValidation(Te, err)

	_, err = NewStructure([]string{"H"}, []float64{0, 0, 0}, WithMultiplicity(0))
	verr = requireValidation(Te, err)
	assert.Contains(Te, verr.Field, "Multiplicity")
}

func TestStructureGeometryIsCopied(Te *testing.T) {
	geom := []float64{0, 0, 0, 0, 0, 1.4}
	S, err := NewStructure([]string{"H", "H"}, geom)
	require.NoError(Te, err)
	geom[5] = 100
	assert.Equal(Te, 1.4, S.Geometry.At(1, 2))
	assert.InDelta(Te, 1.4, S.Distance(0, 1, Bohr), 1e-12)
	assert.InDelta(Te, 1.4*BohrToAngstrom, S.Distance(0, 1, Angstrom), 1e-12)
	assert.InDelta(Te, 1.4*BohrToAngstrom, S.GeometryAngstrom().At(1, 2), 1e-12)
}

func TestAddIdentifiers(Te *testing.T) {
	S := water(Te)
	S2, err := S.AddIdentifiers(map[string]string{"name": "water", "smiles": "O", "pubchem_cid": "962"})
	require.NoError(Te, err)
	assert.Equal(Te, "water", S2.Identifiers.Name)
	assert.Equal(Te, "O", S2.Identifiers.Smiles)
	assert.Equal(Te, "962", S2.Identifiers.PubchemCID)
	assert.True(Te, S.Identifiers.IsZero(), "the original must not change")

	_, err = S.AddIdentifiers(map[string]string{"color": "blue"})
	verr := requireValidation(Te, err)
	assert.Equal(Te, "Identifiers", verr.Record)
}

func TestSwapIndices(Te *testing.T) {
	S := water(Te)
	S2, err := S.SwapIndices([][2]int{{0, 2}, {2, 0}})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"H", "H", "O"}, S2.Symbols)
	assert.Equal(Te, S.Geometry.RawRowView(0), S2.Geometry.RawRowView(2))
	assert.Equal(Te, S.Geometry.RawRowView(2), S2.Geometry.RawRowView(0))
	assert.Equal(Te, "O", S.Symbols[0])

	_, err = S.SwapIndices([][2]int{{0, 1}, {0, 2}})
	requireValidation(Te, err)
	_, err = S.SwapIndices([][2]int{{0, 1}, {2, 1}})
	requireValidation(Te, err)
	_, err = S.SwapIndices([][2]int{{0, 3}})
	requireValidation(Te, err)
}

func TestStructureMapRoundTrip(Te *testing.T) {
	S := water(Te,
		WithCharge(-1),
		WithMultiplicity(2),
		WithIdentifiers(Identifiers{Name: "water", NameIUPAC: "oxidane"}),
		WithConnectivity([]Bond{{0, 1, 1}, {0, 2, 1}}),
		WithStructureExtras(map[string]any{"source": "test", "n": 2}),
	)
	for _, opts := range []DumpOptions{FullDump, {ExcludeNone: true}, {ExcludeUnset: true}} {
		m := S.Dump(opts)
		S2, err := StructureFromMap(m)
		require.NoError(Te, err)
		assert.True(Te, S.Equal(S2), "options %+v", opts)
	}

	m := water(Te).Dump(DumpOptions{ExcludeUnset: true})
	assert.NotContains(Te, m, "charge")
	assert.NotContains(Te, m, "identifiers")
	assert.NotContains(Te, m, "connectivity")
	assert.Contains(Te, m, "geometry")

	ids := S.Dump(FullDump)["identifiers"].(map[string]any)
	assert.Equal(Te, "oxidane", ids["name_IUPAC"])
}

func TestStructureFromMap(Te *testing.T) {
	m := map[string]any{
		"symbols":  []any{"O", "H", "H"},
		"geometry": []any{0, 0, 0, 0, 1.43, 1.1, 0, -1.43, 1.1},
	}
	S, err := StructureFromMap(m)
	require.NoError(Te, err)
	assert.Equal(Te, 3, S.Geometry.NVecs())

	m["unknown"] = 1
	_, err = StructureFromMap(m)
	verr := requireValidation(Te, err)
	assert.Equal(Te, "unknown", verr.Field)
	delete(m, "unknown")

	m["geometry"] = []any{[]any{0, 0, 0}, []any{0, 1}}
	_, err = StructureFromMap(m)
	requireValidation(Te, err)

	m["geometry"] = []any{[]any{0, 0}, []any{0, 0, 1.43}, []any{1.1, 0}, []any{-1.43, 1.1}}
	_, err = StructureFromMap(m)
	verr = requireValidation(Te, err)
	assert.Equal(Te, "geometry", verr.Field)

	m["geometry"] = []any{[]any{0, 0, 0}, []any{0, 1.43, 1.1}, []any{0, -1.43, 1.1}}
	S, err = StructureFromMap(m)
	require.NoError(Te, err)
	assert.Equal(Te, 1.43, S.Geometry.At(1, 1))

	delete(m, "geometry")
	_, err = StructureFromMap(m)
	verr = requireValidation(Te, err)
	assert.Equal(Te, "geometry", verr.Field)
}
