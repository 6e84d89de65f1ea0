/*
 * provenance.go, part of qcio.
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
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

//Provenance describes the program run that produced a Results.
type Provenance struct {
	Program        string
	ProgramVersion *string
	ScratchDir     *string //the working directory used by the program.
	WallTime       *float64
	Hostname       *string
	HostCPUs       *int //logical CPUs on the host.
	HostMem        *int //host memory in GiB.
	Extras         map[string]any
}

//Validate checks that the program name is given and that the run
//figures are not negative.
func (P Provenance) Validate() error {
	err := validation.ValidateStruct(&P,
		validation.Field(&P.Program, validation.Required),
		validation.Field(&P.WallTime, validation.Min(0.0)),
		validation.Field(&P.HostCPUs, validation.Min(0)),
		validation.Field(&P.HostMem, validation.Min(0)),
	)
	return fromRules("Provenance", err)
}

//Dump returns the mapping form of the Provenance.
func (P Provenance) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("program", P.Program)
	e.opt("program_version", deref(P.ProgramVersion), P.ProgramVersion == nil)
	e.opt("scratch_dir", deref(P.ScratchDir), P.ScratchDir == nil)
	e.opt("wall_time", deref(P.WallTime), P.WallTime == nil)
	e.opt("hostname", deref(P.Hostname), P.Hostname == nil)
	e.opt("hostcpus", deref(P.HostCPUs), P.HostCPUs == nil)
	e.opt("hostmem", deref(P.HostMem), P.HostMem == nil)
	e.extras(P.Extras)
	return e.done()
}

//Equal returns true if both provenances hold the same values.
func (P Provenance) Equal(o Provenance) bool {
	return P.Program == o.Program &&
		ptrEqual(P.ProgramVersion, o.ProgramVersion) &&
		ptrEqual(P.ScratchDir, o.ScratchDir) &&
		floatPtrEqual(P.WallTime, o.WallTime) &&
		ptrEqual(P.Hostname, o.Hostname) &&
		ptrEqual(P.HostCPUs, o.HostCPUs) &&
		ptrEqual(P.HostMem, o.HostMem) &&
		mapsEqual(P.Extras, o.Extras)
}

//ProvenanceFromMap builds a Provenance from its mapping form.
func ProvenanceFromMap(m map[string]any) (Provenance, error) {
	r := newReader("Provenance", m)
	P := Provenance{
		Program:        r.reqString("program"),
		ProgramVersion: r.str("program_version"),
		ScratchDir:     r.str("scratch_dir"),
		WallTime:       r.float("wall_time"),
		Hostname:       r.str("hostname"),
		HostCPUs:       r.intp("hostcpus"),
		HostMem:        r.intp("hostmem"),
		Extras:         r.extras(),
	}
	if err := r.finish(); err != nil {
		return Provenance{}, err
	}
	return P, P.Validate()
}

//Model is the physical model of a calculation, named as the program running
//it names it (for MM calculations the method is the force field).
type Model struct {
	Method string
	Basis  *string
	Extras map[string]any
}

func (M Model) Validate() error {
	err := validation.ValidateStruct(&M,
		validation.Field(&M.Method, validation.Required),
	)
	return fromRules("Model", err)
}

func (M Model) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("method", M.Method)
	e.opt("basis", deref(M.Basis), M.Basis == nil)
	e.extras(M.Extras)
	return e.done()
}

func (M Model) Equal(o Model) bool {
	return M.Method == o.Method && ptrEqual(M.Basis, o.Basis) && mapsEqual(M.Extras, o.Extras)
}

//ModelFromMap builds a Model from its mapping form.
func ModelFromMap(m map[string]any) (Model, error) {
	r := newReader("Model", m)
	M := Model{
		Method: r.reqString("method"),
		Basis:  r.str("basis"),
		Extras: r.extras(),
	}
	if err := r.finish(); err != nil {
		return Model{}, err
	}
	return M, M.Validate()
}

func modelEqual(a, b *Model) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

//CalcType is the kind of calculation requested.
type CalcType string

const (
	Energy          CalcType = "energy"
	Gradient        CalcType = "gradient"
	Hessian         CalcType = "hessian"
	Optimization    CalcType = "optimization"
	TransitionState CalcType = "transition_state"
	ConformerSearch CalcType = "conformer_search"
)

//CalcTypes lists every valid CalcType.
var CalcTypes = []CalcType{Energy, Gradient, Hessian, Optimization, TransitionState, ConformerSearch}

//Validate returns an error if C is not one of CalcTypes.
func (C CalcType) Validate() error {
	err := validation.Validate(string(C), validation.Required, validation.In(
		string(Energy), string(Gradient), string(Hessian),
		string(Optimization), string(TransitionState), string(ConformerSearch)))
	if err != nil {
		return invalid("CalcSpec", "calctype", "%q: %s", string(C), err)
	}
	return nil
}

//singlePoint returns true for the calctypes whose primary result is a
//SinglePointData field.
func (C CalcType) singlePoint() bool {
	return C == Energy || C == Gradient || C == Hessian
}
