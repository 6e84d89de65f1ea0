/*
 * files.go, part of qcio.
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
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

//Base64Prefix marks a binary blob encoded as text.
const Base64Prefix = "base64:"

//Blob is the content of a file. It holds either text or raw bytes, never both.
//The zero value is an empty text blob.
type Blob struct {
	text   string
	data   []byte
	binary bool
}

//TextBlob returns a text blob with the given content.
func TextBlob(s string) Blob {
	return Blob{text: s}
}

//BinaryBlob returns a binary blob with a copy of b.
func BinaryBlob(b []byte) Blob {
	return Blob{data: append([]byte{}, b...), binary: true}
}

//IsBinary returns true if the blob holds raw bytes.
func (B Blob) IsBinary() bool { return B.binary }

//Text returns the content of a text blob, or "" for a binary one.
func (B Blob) Text() string { return B.text }

//Bytes returns the content of the blob as bytes. For text blobs they are the
//UTF-8 encoding of the text.
func (B Blob) Bytes() []byte {
	if B.binary {
		return append([]byte{}, B.data...)
	}
	return []byte(B.text)
}

//Len returns the size of the content in bytes.
func (B Blob) Len() int {
	if B.binary {
		return len(B.data)
	}
	return len(B.text)
}

//Encode returns the blob as a string safe for text formats. Binary content is
//written in standard base64 after the Base64Prefix. Text is returned as is.
func (B Blob) Encode() string {
	if !B.binary {
		return B.text
	}
	return Base64Prefix + base64.StdEncoding.EncodeToString(B.data)
}

//Equal returns true if both blobs are of the same kind and hold the same content.
func (B Blob) Equal(other Blob) bool {
	if B.binary != other.binary {
		return false
	}
	if B.binary {
		return bytes.Equal(B.data, other.data)
	}
	return B.text == other.text
}

func (B Blob) String() string {
	if B.binary {
		return fmt.Sprintf("<bytes:%d>", len(B.data))
	}
	return fmt.Sprintf("<str:%d>", len(B.text))
}

//DecodeBlob reverses Encode. Strings starting with Base64Prefix are always
//decoded to binary blobs, anything else is text.
func DecodeBlob(s string) (Blob, error) {
	if !strings.HasPrefix(s, Base64Prefix) {
		return TextBlob(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(s[len(Base64Prefix):])
	if err != nil {
		return Blob{}, err
	}
	return Blob{data: b, binary: true}, nil
}

//Files maps a relative file name to its content. Keys use forward slashes.
type Files map[string]Blob

//Names returns the file names, sorted.
func (F Files) Names() []string {
	ret := make([]string, 0, len(F))
	for k := range F {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Copy returns a copy of F. The blobs share no memory with the originals.
func (F Files) Copy() Files {
	ret := make(Files, len(F))
	for k, v := range F {
		if v.binary {
			v = BinaryBlob(v.data)
		}
		ret[k] = v
	}
	return ret
}

//Equal returns true if both maps hold the same names with equal blobs.
func (F Files) Equal(other Files) bool {
	if len(F) != len(other) {
		return false
	}
	for k, v := range F {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

//AddFile reads the file at path and stores it. The content is kept as text
//if it is valid UTF-8, as bytes otherwise. The key is the base name of the
//file, or, if relativeTo is not empty, the path relative to that directory.
func (F *Files) AddFile(path, relativeTo string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("qcio: AddFile: %w", err)
	}
	name := filepath.Base(path)
	if relativeTo != "" {
		rel, err := filepath.Rel(relativeTo, path)
		if err != nil {
			return fmt.Errorf("qcio: AddFile: %w", err)
		}
		name = filepath.ToSlash(rel)
	}
	if *F == nil {
		*F = make(Files)
	}
	if utf8.Valid(raw) {
		(*F)[name] = TextBlob(string(raw))
	} else {
		(*F)[name] = Blob{data: raw, binary: true}
	}
	return nil
}

//AddFiles adds every regular file in dir, keyed relative to dir. If recursive
//is true, subdirectories are walked too. Files whose base name is in exclude
//are skipped.
func (F *Files) AddFiles(dir string, recursive bool, exclude []string) error {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("qcio: AddFiles: %w", err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || skip[e.Name()] {
				continue
			}
			if err := F.AddFile(filepath.Join(dir, e.Name()), dir); err != nil {
				return err
			}
		}
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("qcio: AddFiles: %w", err)
		}
		if !d.Type().IsRegular() || skip[d.Name()] {
			return nil
		}
		return F.AddFile(path, dir)
	})
}

//SaveFiles writes every blob under dir, creating the directories needed.
func (F Files) SaveFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("qcio: SaveFiles: %w", err)
	}
	for _, name := range F.Names() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("qcio: SaveFiles: %w", err)
		}
		blob := F[name]
		var err error
		if blob.binary {
			err = os.WriteFile(path, blob.data, 0o644)
		} else {
			err = os.WriteFile(path, []byte(blob.text), 0o644)
		}
		if err != nil {
			return fmt.Errorf("qcio: SaveFiles: %w", err)
		}
	}
	return nil
}

func (F Files) dump() map[string]any {
	ret := make(map[string]any, len(F))
	for k, v := range F {
		ret[k] = v.Encode()
	}
	return ret
}

func filesFromMap(m map[string]any) (Files, error) {
	ret := make(Files, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, invalid("Files", k, "expected a string, got %T", v)
		}
		b, err := DecodeBlob(s)
		if err != nil {
			return nil, &ValidationError{Record: "Files", Field: k, Reason: "malformed base64 content", Err: err}
		}
		ret[k] = b
	}
	return ret, nil
}
