/*
 * qcel.go, part of qcio.
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

//Package qcel converts qcio records to and from the QCElemental v1
//(QCSchema) AtomicInput and AtomicResult mappings, so qcio programs can
//exchange data with QCEngine and other QCSchema tools.
package qcel

import (
	"fmt"

	"github.com/qcgo/qcio"
)

//Note is the extras entry added to every SinglePointData read from a
//QCSchema result.
const Note = "Results computed using QCEngine"

//identifiers not present in the QCSchema molecule.
var skipIdentifiers = map[string]bool{
	"name":                     true,
	"name_IUPAC":               true,
	"canonical_smiles_program": true,
}

//qcioToQCEl maps the SinglePointData fields whose QCSchema property has a
//different name.
var qcioToQCEl = map[string]string{
	"calcinfo_natoms": "calcinfo_natom",
	"energy":          "return_energy",
	"gradient":        "return_gradient",
	"hessian":         "return_hessian",
}

//properties lists the SinglePointData fields read from the QCSchema
//properties.
var properties = []string{
	"calcinfo_natoms", "calcinfo_nalpha", "calcinfo_nbeta", "calcinfo_nbasis", "calcinfo_nmo",
	"energy", "gradient", "hessian", "nuclear_repulsion_energy", "scf_dipole_moment",
}

var wavefunctionFields = []string{"scf_eigenvalues_a", "scf_eigenvalues_b", "scf_occupations_a", "scf_occupations_b"}

//ToQCElInput returns the AtomicInput mapping for C. The molecule is marked
//fix_com and fix_orientation, so QCElemental keeps the geometry as given.
func ToQCElInput(C *qcio.CalcSpec) map[string]any {
	S := C.Structure
	ids := make(map[string]any)
	for k, v := range S.Identifiers.Map() {
		if !skipIdentifiers[k] {
			ids[k] = v
		}
	}
	var conn any
	if len(S.Connectivity) > 0 {
		bonds := make([][]float64, len(S.Connectivity))
		for i, b := range S.Connectivity {
			bonds[i] = []float64{float64(b.I), float64(b.J), b.Order}
		}
		conn = bonds
	}
	model := map[string]any{"method": C.Model.Method, "basis": nil}
	if C.Model.Basis != nil {
		model["basis"] = *C.Model.Basis
	}
	keywords := C.Keywords
	if keywords == nil {
		keywords = map[string]any{}
	}
	extras := C.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	return map[string]any{
		"molecule": map[string]any{
			"symbols":                append([]string(nil), S.Symbols...),
			"geometry":               S.Geometry.Rows(),
			"molecular_charge":       S.Charge,
			"molecular_multiplicity": S.Multiplicity,
			"connectivity":           conn,
			"fix_com":                true,
			"fix_orientation":        true,
			"identifiers":            ids,
		},
		"driver":   string(C.CalcType),
		"model":    model,
		"keywords": keywords,
		"extras":   extras,
	}
}

//SinglePointFromQCElOutput builds a SinglePointData from an AtomicResult
//mapping. The return_result is stored in the field named by the driver,
//overriding the matching property.
func SinglePointFromQCElOutput(out map[string]any) (*qcio.SinglePointData, error) {
	props, _ := out["properties"].(map[string]any)
	m := make(map[string]any)
	for _, k := range properties {
		qk, ok := qcioToQCEl[k]
		if !ok {
			qk = k
		}
		if v, ok := props[qk]; ok && v != nil {
			m[k] = v
		}
	}
	driver, _ := out["driver"].(string)
	switch qcio.CalcType(driver) {
	case qcio.Energy, qcio.Gradient, qcio.Hessian:
		if rr, ok := out["return_result"]; ok && rr != nil {
			m[driver] = rr
		}
	default:
		return nil, fmt.Errorf("qcel: unsupported driver %q", driver)
	}
	if wfn, ok := out["wavefunction"].(map[string]any); ok && len(wfn) > 0 {
		w := make(map[string]any)
		for _, k := range wavefunctionFields {
			if v, ok := wfn[k]; ok && v != nil {
				w[k] = v
			}
		}
		m["wavefunction"] = w
	}
	m["extras"] = map[string]any{"NOTE": Note}
	sp, err := qcio.SinglePointDataFromMap(m)
	if err != nil {
		return nil, fmt.Errorf("qcel: %w", err)
	}
	return sp, nil
}
