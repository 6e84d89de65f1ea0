/*
 * formats.go, part of qcio.
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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

//Format is a file format, chosen by the file extension.
type Format string

const (
	JSON    Format = "json" //the default, for any unknown extension.
	YAML    Format = "yaml"
	TOML    Format = "toml"
	XYZ     Format = "xyz"
	Archive Format = "qcb"
)

//Compression is applied on top of a format when the file name ends in
//.gz or .zst, as in results.json.zst.
type Compression string

const (
	NoCompression Compression = ""
	Gzip          Compression = "gz"
	Zstd          Compression = "zst"
)

//tomlItemsKey holds the records of a multi-record TOML file, as TOML
//has no top-level arrays.
const tomlItemsKey = "items"

//FormatOf returns the format and the compression implied by the
//extensions of path. The extensions are not case sensitive.
func FormatOf(path string) (Format, Compression) {
	name := strings.ToLower(filepath.Base(path))
	comp := NoCompression
	switch filepath.Ext(name) {
	case ".gz":
		comp = Gzip
	case ".zst":
		comp = Zstd
	}
	if comp != NoCompression {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return YAML, comp
	case ".toml":
		return TOML, comp
	case ".xyz":
		return XYZ, comp
	case ".qcb":
		return Archive, comp
	}
	return JSON, comp
}

//encode writes the mapping v (or a list of mappings) in the format f.
//indent is the number of spaces per level, 0 gives compact JSON.
//A value the format can't hold exactly gives a *MalformedInterchangeError.
func encode(f Format, v any, indent int) ([]byte, error) {
	v = canonical(v)
	if err := representable(f, v, ""); err != nil {
		return nil, err
	}
	switch f {
	case YAML:
		node, err := yamlNode(v)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(max(indent, 2))
		if err := enc.Encode(node); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case TOML:
		v = stripNulls(v)
		if l, ok := v.([]any); ok {
			v = map[string]any{tomlItemsKey: l}
		}
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.Indent = strings.Repeat(" ", indent)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case JSON:
		if indent <= 0 {
			return json.Marshal(v)
		}
		return json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	}
	return nil, malformed(0, "format %s can't hold a generic record", f)
}

//representable checks that the canonical value v, found at path, can be
//written in the format f: JSON has no NaN or infinities, and TOML has no
//null list elements (a null field is just left out).
func representable(f Format, v any, path string) error {
	switch t := v.(type) {
	case float64:
		if f == JSON && (math.IsNaN(t) || math.IsInf(t, 0)) {
			return malformed(0, "%s: JSON can't hold the value %v", path, t)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sub := k
			if path != "" {
				sub = path + "." + k
			}
			if err := representable(f, t[k], sub); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range t {
			sub := fmt.Sprintf("%s[%d]", path, i)
			if e == nil && f == TOML {
				return malformed(0, "%s: TOML can't hold a null list element", sub)
			}
			if err := representable(f, e, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

//yamlNode builds the YAML tree of a canonical value. Building the tree
//here, rather than letting yaml.v3 do it, lets the strings that a block
//scalar can't hold exactly be written double-quoted: those with a carriage
//return, and those with a line break that are blank or start with a blank.
func yamlNode(v any) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch t := v.(type) {
	case nil:
		n.Tag, n.Value = "!!null", "null"
	case bool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(t)
	case int:
		n.Tag, n.Value = "!!int", strconv.Itoa(t)
	case float64:
		switch {
		case math.IsNaN(t):
			n.Value = ".nan"
		case math.IsInf(t, 1):
			n.Value = ".inf"
		case math.IsInf(t, -1):
			n.Value = "-.inf"
		default:
			n.Value = strconv.FormatFloat(t, 'g', -1, 64)
		}
	case string:
		n.SetString(t)
		if strings.ContainsAny(t, "\n\r") {
			if strings.Contains(t, "\r") || strings.TrimSpace(t) == "" || strings.TrimLeft(t, " \t\n") != t {
				n.Style = yaml.DoubleQuotedStyle
			}
		}
	case map[string]any:
		n.Kind, n.Tag = yaml.MappingNode, "!!map"
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kn := new(yaml.Node)
			kn.SetString(k)
			vn, err := yamlNode(t[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, kn, vn)
		}
	case []any:
		n.Kind, n.Tag = yaml.SequenceNode, "!!seq"
		for _, e := range t {
			en, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
	default:
		if err := n.Encode(t); err != nil {
			return nil, err
		}
	}
	return n, nil
}

//decode reads data in the format f. The value returned is canonical.
func decode(f Format, data []byte) (any, error) {
	var v any
	switch f {
	case YAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
	case TOML:
		m := map[string]any{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		v = m
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
	default:
		return nil, malformed(0, "format %s can't hold a generic record", f)
	}
	return canonical(v), nil
}

//decodeMap reads a single record.
func decodeMap(f Format, data []byte) (map[string]any, error) {
	v, err := decode(f, data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, malformed(0, "expected a single record, got %T", v)
	}
	return m, nil
}

//decodeList reads a sequence of records.
func decodeList(f Format, data []byte) ([]map[string]any, error) {
	v, err := decode(f, data)
	if err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok && f == TOML {
		v = m[tomlItemsKey]
	}
	l, ok := v.([]any)
	if !ok {
		return nil, malformed(0, "expected a sequence of records, got %T", v)
	}
	ret := make([]map[string]any, len(l))
	for i, e := range l {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, malformed(0, "element %d: expected a record, got %T", i, e)
		}
		ret[i] = m
	}
	return ret, nil
}

//stripNulls removes the null fields of a canonical value, as TOML can't
//write them. A missing field reads as nil anyway. Null list elements are
//rejected by representable before this.
func stripNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			if e == nil {
				delete(t, k)
				continue
			}
			t[k] = stripNulls(e)
		}
	case []any:
		for i, e := range t {
			t[i] = stripNulls(e)
		}
	}
	return v
}

//zstdReadCloser turns a *zstd.Decoder, whose Close returns nothing, into
//an io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//compress applies the compression c to data.
func compress(c Compression, data []byte) ([]byte, error) {
	var newWriter func(io.Writer) (io.WriteCloser, error)
	switch c {
	case Gzip:
		newWriter = func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }
	case Zstd:
		newWriter = func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		}
	default:
		return data, nil
	}
	var buf bytes.Buffer
	w, err := newWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//decompress undoes compress.
func decompress(c Compression, data []byte) ([]byte, error) {
	var newReader func(io.Reader) (io.ReadCloser, error)
	switch c {
	case Gzip:
		newReader = func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) }
	case Zstd:
		newReader = func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return zstdReadCloser{d}, nil
		}
	default:
		return data, nil
	}
	r, err := newReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

//readFile returns the contents of path, decompressed, and its format.
func readFile(path string) ([]byte, Format, error) {
	f, c := FormatOf(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, f, err
	}
	data, err = decompress(c, data)
	if err != nil {
		return nil, f, fmt.Errorf("qcio: decompressing %s: %w", path, err)
	}
	return data, f, nil
}

//writeFile compresses data as the name of path asks, and writes it.
func writeFile(path string, data []byte) error {
	_, c := FormatOf(path)
	data, err := compress(c, data)
	if err != nil {
		return fmt.Errorf("qcio: compressing %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}
