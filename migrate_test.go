/*
 * migrate_test.go, part of qcio.
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
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//legacyResults is a Results written by an old version: the logs in stdout,
//the data in results, the structure in molecule, the identifiers in ids and
//part of the files at the top level.
func legacyResults() map[string]any {
	return map[string]any{
		"input_data": map[string]any{
			"calctype": "energy",
			"molecule": map[string]any{
				"symbols":  []any{"H", "H"},
				"geometry": []any{[]any{0, 0, 0}, []any{0, 0, 1.4}},
				"ids":      map[string]any{"name": "hydrogen"},
			},
			"model": map[string]any{"method": "hf", "basis": "sto-3g"},
		},
		"success": true,
		"results": map[string]any{
			"energy": -1.1167,
			"files":  map[string]any{"scf.log": "old", "kept.txt": "kept"},
		},
		"stdout":     "SCF converged",
		"files":      map[string]any{"scf.log": "new"},
		"provenance": map[string]any{"program": "qcprog"},
	}
}

func TestMigrate(Te *testing.T) {
	in := legacyResults()
	m, notices := Migrate(RecordResults, in)
	assert.Equal(Te, []Notice{
		{"Results", "stdout", "logs"},
		{"Results", "results", "data"},
		{"Results", "files", "data.files"},
		{"Spec", "molecule", "structure"},
		{"Structure", "ids", "identifiers"},
	}, notices)
	assert.Contains(Te, in, "stdout", "the input must not be modified")

	assert.Equal(Te, "SCF converged", m["logs"])
	files := m["data"].(map[string]any)["files"].(map[string]any)
	assert.Equal(Te, "new", files["scf.log"])
	assert.Equal(Te, "kept", files["kept.txt"])

	o, _, err := DefaultRegistry().ResultsFromMap(in)
	require.NoError(Te, err)
	R, ok := o.(*Results[*CalcSpec, *SinglePointData])
	require.True(Te, ok, "got %T", o)
	assert.Equal(Te, "hydrogen", R.InputData.Structure.Identifiers.Name)
	assert.Equal(Te, -1.1167, R.ReturnResult())
	assert.Equal(Te, "new", R.FileMap()["scf.log"].Text())

	again, notices := Migrate(RecordResults, m)
	assert.Empty(Te, notices)
	assert.Equal(Te, m, again)
}

func TestMigrateKeepsCurrentField(Te *testing.T) {
	m, notices := Migrate(RecordResults, map[string]any{"stdout": "old", "logs": "new"})
	assert.Len(Te, notices, 1)
	assert.Equal(Te, "new", m["logs"])
	assert.NotContains(Te, m, "stdout")
}

func TestMigrateNested(Te *testing.T) {
	step := legacyResults()
	opt := map[string]any{
		"trajectory": []any{step},
		"conformers": []any{map[string]any{"ids": map[string]any{}}},
	}
	_, notices := Migrate(RecordData, opt)
	assert.Len(Te, notices, 6)
	assert.Equal(Te, Notice{"Structure", "ids", "identifiers"}, notices[5])

	spec, notices := Migrate(RecordSpec, map[string]any{"subprogram_args": map[string]any{}})
	assert.Len(Te, notices, 1)
	assert.Contains(Te, spec, "subprogram_spec")
	assert.Equal(Te, "Results: 'stdout' is deprecated, use 'logs' instead", Notice{"Results", "stdout", "logs"}.String())
}

func TestStoreLogsMigrations(Te *testing.T) {
	dir := Te.TempDir()
	path := filepath.Join(dir, "legacy.json")
	raw, err := encode(JSON, legacyResults(), 2)
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(path, raw, 0o644))

	var buf bytes.Buffer
	st := NewStore(nil, slog.New(slog.NewTextHandler(&buf, nil)))
	o, err := st.OpenResults(path)
	require.NoError(Te, err)
	assert.Equal(Te, "SCF converged", o.LogText())
	out := buf.String()
	assert.Contains(Te, out, "level=WARN")
	assert.Contains(Te, out, "field=stdout")
	assert.Contains(Te, out, "replacement=data.files")
	assert.Contains(Te, out, "record=Structure")
	assert.Equal(Te, 5, bytes.Count(buf.Bytes(), []byte("deprecated field")))
}
