/*
 * v3_test.go, part of qcio.
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

package v3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	assert.Equal(Te, 2, A.NVecs())
	assert.Equal(Te, [][]float64{{1, 2, 3}, {4, 5, 6}}, A.Rows())
	assert.Equal(Te, []float64{1, 2, 3, 4, 5, 6}, A.Flat())

	_, err = NewMatrix([]float64{1, 2, 3, 4})
	require.Error(Te, err)
	_, err = NewMatrix(nil)
	require.Error(Te, err)
	_, err = FromRows([][]float64{{1, 2, 3}, {1, 2}})
	require.Error(Te, err)
}

func TestCopy(Te *testing.T) {
	A, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(Te, err)
	B := A.Copy()
	A.Set(0, 0, 10)
	assert.Equal(Te, 1.0, B.At(0, 0), "copy must not share storage")
	assert.False(Te, Equal(A, B))
	A.Set(0, 0, 1)
	assert.True(Te, Equal(A, B))
	assert.True(Te, Equal(nil, nil))
	assert.False(Te, Equal(A, nil))
	assert.Nil(Te, (*Matrix)(nil).Copy())
}

func TestScaledAndDist(Te *testing.T) {
	A, err := FromRows([][]float64{{0, 0, 0}, {3, 4, 0}})
	require.NoError(Te, err)
	assert.InDelta(Te, 5.0, A.Dist(0, 1), 1e-12)
	S := A.Scaled(2)
	assert.InDelta(Te, 10.0, S.Dist(0, 1), 1e-12)
	assert.Equal(Te, 4.0, A.At(1, 1), "Scaled must not modify the receiver")
	assert.True(Te, EqualApprox(S.Scaled(0.5), A, 1e-12))
	assert.False(Te, math.IsNaN(S.At(1, 0)))
}
