/*
 * migrate.go, part of qcio.
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

//RecordKind says which kind of record a mapping holds, so the right
//migrations are applied to it.
type RecordKind string

const (
	RecordResults   RecordKind = "Results"
	RecordSpec      RecordKind = "Spec"
	RecordData      RecordKind = "Data"
	RecordStructure RecordKind = "Structure"
)

//Migration rewrites one legacy field of a record onto its current form.
type Migration struct {
	Record      RecordKind
	Field       string //the legacy field
	Replacement string //where its value goes
	//Apply rewrites m in place and returns true if the legacy field
	//was there.
	Apply func(m map[string]any) bool
}

//Migrations is the ordered chain of rewrites applied by Migrate.
var Migrations = []Migration{
	{RecordResults, "stdout", "logs", rename("stdout", "logs")},
	{RecordResults, "results", "data", rename("results", "data")},
	{RecordResults, "files", "data.files", filesToData},
	{RecordSpec, "molecule", "structure", rename("molecule", "structure")},
	{RecordSpec, "subprogram_args", "subprogram_spec", rename("subprogram_args", "subprogram_spec")},
	{RecordStructure, "ids", "identifiers", rename("ids", "identifiers")},
}

//rename moves the value of old to current. If both are present, the
//current one is kept and the old one dropped.
func rename(old, current string) func(map[string]any) bool {
	return func(m map[string]any) bool {
		v, ok := m[old]
		if !ok {
			return false
		}
		delete(m, old)
		if _, ok := m[current]; !ok {
			m[current] = v
		}
		return true
	}
}

//filesToData merges a top-level file map into the data's files. The
//top-level entries win on a name clash.
func filesToData(m map[string]any) bool {
	raw, ok := m["files"]
	if !ok {
		return false
	}
	delete(m, "files")
	top, err := toMap(raw)
	if err != nil || len(top) == 0 {
		return true
	}
	data, _ := m["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	files, _ := data["files"].(map[string]any)
	if files == nil {
		files = map[string]any{}
	}
	for k, v := range top {
		files[k] = v
	}
	data["files"] = files
	m["data"] = data
	return true
}

//Migrate returns a copy of m, a mapping of the given record kind, with the
//legacy fields rewritten onto the current ones, along with a Notice for
//each rewrite. Nested records (the input and data of a Results, the
//structure of a Spec, the steps of a trajectory and the structures of a
//conformer search) are migrated too. m is not modified.
func Migrate(record RecordKind, m map[string]any) (map[string]any, []Notice) {
	out, _ := canonical(m).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	var notices []Notice
	migrate(record, out, &notices)
	return out, notices
}

func migrate(record RecordKind, m map[string]any, notices *[]Notice) {
	for _, mig := range Migrations {
		if mig.Record == record && mig.Apply(m) {
			*notices = append(*notices, Notice{Record: string(record), Field: mig.Field, Replacement: mig.Replacement})
		}
	}
	nested := func(kind RecordKind, key string) {
		if sub, ok := m[key].(map[string]any); ok {
			migrate(kind, sub, notices)
		}
	}
	nestedList := func(kind RecordKind, key string) {
		l, _ := m[key].([]any)
		for _, e := range l {
			if sub, ok := e.(map[string]any); ok {
				migrate(kind, sub, notices)
			}
		}
	}
	switch record {
	case RecordResults:
		nested(RecordSpec, "input_data")
		nested(RecordData, "data")
	case RecordSpec:
		nested(RecordStructure, "structure")
	case RecordData:
		nestedList(RecordResults, "trajectory")
		nestedList(RecordStructure, "conformers")
		nestedList(RecordStructure, "rotamers")
	}
}
