/*
 * files_test.go, part of qcio.
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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryContent = []byte{0x00, 0xff, 0xfe, 0x10, 0x80, 'q', 'c'}

func TestBlobEncoding(Te *testing.T) {
	bin := BinaryBlob(binaryContent)
	enc := bin.Encode()
	assert.Equal(Te, "base64:AP/+EIBxYw==", enc)
	back, err := DecodeBlob(enc)
	require.NoError(Te, err)
	assert.True(Te, back.IsBinary())
	assert.Equal(Te, binaryContent, back.Bytes())
	assert.True(Te, bin.Equal(back))

	txt := TextBlob("$molecule\n0 1\n$end\n")
	assert.Equal(Te, txt.Text(), txt.Encode())
	back, err = DecodeBlob(txt.Encode())
	require.NoError(Te, err)
	assert.False(Te, back.IsBinary())
	assert.True(Te, txt.Equal(back))
	assert.False(Te, txt.Equal(BinaryBlob(txt.Bytes())))

	_, err = DecodeBlob("base64:not base64!")
	assert.Error(Te, err)
	assert.Equal(Te, "<bytes:7>", bin.String())
}

func TestFilesCopy(Te *testing.T) {
	F := Files{"a.txt": TextBlob("a"), "b.bin": BinaryBlob(binaryContent)}
	C := F.Copy()
	require.True(Te, F.Equal(C))
	C["b.bin"].Bytes()[0] = 1 //Bytes returns a copy.
	assert.True(Te, F.Equal(C))
	delete(C, "a.txt")
	assert.False(Te, F.Equal(C))
	assert.Equal(Te, []string{"a.txt", "b.bin"}, F.Names())
}

func TestAddAndSaveFiles(Te *testing.T) {
	dir := Te.TempDir()
	require.NoError(Te, os.MkdirAll(filepath.Join(dir, "scratch"), 0o755))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "input.in"), []byte("run energy\n"), 0o644))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "c0"), binaryContent, 0o644))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "scratch", "orbitals"), binaryContent, 0o644))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "skip.me"), []byte("no"), 0o644))

	var F Files
	require.NoError(Te, F.AddFiles(dir, false, []string{"skip.me"}))
	assert.Equal(Te, []string{"c0", "input.in"}, F.Names())
	assert.True(Te, F["c0"].IsBinary())
	assert.Equal(Te, "run energy\n", F["input.in"].Text())

	var R Files
	require.NoError(Te, R.AddFiles(dir, true, nil))
	assert.Equal(Te, []string{"c0", "input.in", "scratch/orbitals", "skip.me"}, R.Names())

	var single Files
	require.NoError(Te, single.AddFile(filepath.Join(dir, "scratch", "orbitals"), ""))
	assert.Equal(Te, []string{"orbitals"}, single.Names())
	assert.Error(Te, single.AddFile(filepath.Join(dir, "missing"), ""))

	out := Te.TempDir()
	require.NoError(Te, R.SaveFiles(out))
	raw, err := os.ReadFile(filepath.Join(out, "scratch", "orbitals"))
	require.NoError(Te, err)
	assert.Equal(Te, binaryContent, raw)
	var again Files
	require.NoError(Te, again.AddFiles(out, true, nil))
	assert.True(Te, R.Equal(again))
}

func TestFilesFromMap(Te *testing.T) {
	F := Files{"a.txt": TextBlob("a"), "b.bin": BinaryBlob(binaryContent)}
	back, err := filesFromMap(F.dump())
	require.NoError(Te, err)
	assert.True(Te, F.Equal(back))

	_, err = filesFromMap(map[string]any{"x": 1})
	verr := requireValidation(Te, err)
	assert.Equal(Te, "x", verr.Field)
	_, err = filesFromMap(map[string]any{"x": "base64:%%%"})
	requireValidation(Te, err)
}
