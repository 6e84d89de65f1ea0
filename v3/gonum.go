/*
 * gonum.go, part of qcio.
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
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space. The name of some funcitions in
//the library reflect this.
type Matrix struct {
	*mat.Dense
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
//The data slice is used as backing storage, it is not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l == 0 {
		return nil, Error{"Can't build a Matrix from an empty slice", []string{"NewMatrix"}, true}
	}
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//FromRows builds a Matrix copying the given rows, each of which must have 3 elements.
func FromRows(rows [][]float64) (*Matrix, error) {
	data := make([]float64, 0, 3*len(rows))
	for i, r := range rows {
		if len(r) != 3 {
			return nil, Error{fmt.Sprintf("Row %d has %d elements, 3 expected", i, len(r)), []string{"FromRows"}, true}
		}
		data = append(data, r...)
	}
	return NewMatrix(data)
}

//zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Flat returns a copy of the elements of the matrix, in row-major order.
func (F *Matrix) Flat() []float64 {
	n := F.NVecs()
	ret := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		ret = append(ret, F.RawRowView(i)...)
	}
	return ret
}

//Rows returns a copy of the matrix as a slice of 3-element slices.
func (F *Matrix) Rows() [][]float64 {
	n := F.NVecs()
	ret := make([][]float64, n)
	for i := range ret {
		ret[i] = append([]float64(nil), F.RawRowView(i)...)
	}
	return ret
}

//Scaled returns a new Matrix with every element of F multiplied by factor.
//F is not modified.
func (F *Matrix) Scaled(factor float64) *Matrix {
	ret := zeros(F.NVecs())
	ret.Scale(factor, F.Dense)
	return ret
}

//Copy returns a deep copy of F. It returns nil for a nil receiver.
func (F *Matrix) Copy() *Matrix {
	if F == nil || F.Dense == nil {
		return nil
	}
	return &Matrix{mat.DenseCopyOf(F.Dense)}
}

//Dist returns the euclidean distance between the vectors i and j.
func (F *Matrix) Dist(i, j int) float64 {
	n := F.NVecs()
	if i >= n || j >= n || i < 0 || j < 0 {
		panic(ErrIndexOutOfRange)
	}
	return floats.Distance(F.RawRowView(i), F.RawRowView(j), 2)
}

//Equal returns true if both matrices have the same shape and elements.
//Two nil matrices are equal.
func Equal(A, B *Matrix) bool {
	if A == nil || B == nil {
		return A == nil && B == nil
	}
	return mat.Equal(A.Dense, B.Dense)
}

//EqualApprox returns true if both matrices have the same shape and their
//elements differ by at most tol.
func EqualApprox(A, B *Matrix, tol float64) bool {
	if A == nil || B == nil {
		return A == nil && B == nil
	}
	return mat.EqualApprox(A.Dense, B.Dense, tol)
}

//Errors

//Error is the error type for the package. It carries a message, a "decoration"
//with the call stack of functions that passed the error along, and whether the
//error is critical.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("qcio/v3: A Matrix should have 3 columns")
	ErrIndexOutOfRange = PanicMsg("qcio/v3: index out of range")
)
