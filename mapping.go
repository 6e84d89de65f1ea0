/*
 * mapping.go, part of qcio.
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

//This file contains the machinery shared by every record to go to and from
//the generic nested mapping (map[string]any) that all formats encode.

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	v3 "github.com/qcgo/qcio/v3"
)

//DumpOptions control which fields are written when a record is dumped.
//They have the same meaning for every output format.
type DumpOptions struct {
	ExcludeNone  bool //omit optional fields that are nil.
	ExcludeUnset bool //omit fields that hold their default value.
}

//FullDump writes every field, nulls included.
var FullDump = DumpOptions{}

//emitter builds the mapping for a record honoring the DumpOptions.
type emitter struct {
	m map[string]any
	o DumpOptions
}

func newEmitter(o DumpOptions) *emitter {
	return &emitter{m: make(map[string]any), o: o}
}

//req writes a required field, always.
func (e *emitter) req(key string, v any) {
	e.m[key] = v
}

//opt writes an optional field that may be nil. Nil is the default for
//optional fields, so excluding unset fields also drops it.
func (e *emitter) opt(key string, v any, isNil bool) {
	if isNil {
		if e.o.ExcludeNone || e.o.ExcludeUnset {
			return
		}
		e.m[key] = nil
		return
	}
	e.m[key] = v
}

//def writes a field with a default value.
func (e *emitter) def(key string, v any, isDefault bool) {
	if isDefault && e.o.ExcludeUnset {
		return
	}
	e.m[key] = v
}

func (e *emitter) extras(x map[string]any) {
	if x == nil {
		x = map[string]any{}
	}
	e.def("extras", canonical(x), len(x) == 0)
}

func (e *emitter) files(f Files) {
	e.def("files", f.dump(), len(f) == 0)
}

func (e *emitter) done() map[string]any { return e.m }

//reader takes fields out of a decoded mapping, converting them to the
//expected Go types. The first conversion error is kept, and the fields
//left unread at the end are reported, as unknown fields are not allowed.
type reader struct {
	record string
	m      map[string]any
	used   map[string]bool
	err    error
}

func newReader(record string, m map[string]any) *reader {
	if m == nil {
		m = map[string]any{}
	}
	return &reader{record: record, m: m, used: make(map[string]bool)}
}

func (r *reader) fail(field, format string, args ...any) {
	if r.err == nil {
		r.err = invalid(r.record, field, format, args...)
	}
}

//get returns the raw value for key and whether it is present and not null.
func (r *reader) get(key string) (any, bool) {
	r.used[key] = true
	v, ok := r.m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *reader) has(key string) bool {
	_, ok := r.get(key)
	return ok
}

func (r *reader) reqString(key string) string {
	v, ok := r.get(key)
	if !ok {
		r.fail(key, "field required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "expected a string, got %T", v)
	}
	return s
}

func (r *reader) str(key string) *string {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "expected a string, got %T", v)
		return nil
	}
	return &s
}

func (r *reader) boolean(key string) (bool, bool) {
	v, ok := r.get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(key, "expected a boolean, got %T", v)
	}
	return b, true
}

func (r *reader) intp(key string) *int {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	i, err := toInt(v)
	if err != nil {
		r.fail(key, "%s", err)
		return nil
	}
	return &i
}

func (r *reader) float(key string) *float64 {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		r.fail(key, "%s", err)
		return nil
	}
	return &f
}

//floats reads a (possibly nested) numeric array and flattens it.
func (r *reader) floats(key string) ([]float64, bool) {
	v, ok := r.get(key)
	if !ok {
		return nil, false
	}
	f, err := flatten(v, nil)
	if err != nil {
		r.fail(key, "%s", err)
		return nil, false
	}
	return f, true
}

//vectors reads an N x 3 array, given either as a list of rows, each of
//which must have 3 elements, or as a flat list.
func (r *reader) vectors(key string) (*v3.Matrix, bool) {
	v, ok := r.get(key)
	if !ok {
		return nil, false
	}
	l, err := toList(v)
	if err != nil {
		r.fail(key, "%s", err)
		return nil, false
	}
	var M *v3.Matrix
	if len(l) > 0 && isList(l[0]) {
		rows := make([][]float64, len(l))
		for i, e := range l {
			if rows[i], err = flatten(e, nil); err != nil {
				break
			}
		}
		if err == nil {
			M, err = v3.FromRows(rows)
		}
	} else {
		var f []float64
		if f, err = flatten(l, nil); err == nil {
			M, err = v3.NewMatrix(f)
		}
	}
	if err != nil {
		r.fail(key, "%s", err)
		return nil, false
	}
	return M, true
}

func (r *reader) strings(key string) []string {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	l, err := toList(v)
	if err != nil {
		r.fail(key, "%s", err)
		return nil
	}
	ret := make([]string, 0, len(l))
	for i, e := range l {
		s, ok := e.(string)
		if !ok {
			r.fail(key, "element %d: expected a string, got %T", i, e)
			return nil
		}
		ret = append(ret, s)
	}
	return ret
}

func (r *reader) sub(key string) (map[string]any, bool) {
	v, ok := r.get(key)
	if !ok {
		return nil, false
	}
	m, err := toMap(v)
	if err != nil {
		r.fail(key, "%s", err)
		return nil, false
	}
	return m, true
}

func (r *reader) list(key string) []any {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	l, err := toList(v)
	if err != nil {
		r.fail(key, "%s", err)
		return nil
	}
	return l
}

func (r *reader) extras() map[string]any {
	m, ok := r.sub("extras")
	if !ok {
		return map[string]any{}
	}
	return m
}

func (r *reader) files() Files {
	m, ok := r.sub("files")
	if !ok {
		return Files{}
	}
	f, err := filesFromMap(m)
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return Files{}
	}
	return f
}

//finish reports the first error found, or an unknown field.
func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for k := range r.m {
		if !r.used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return invalid(r.record, strings.Join(unknown, ","), "unexpected field(s)")
	}
	return nil
}

//Conversions of decoded values. The formats don't agree on the Go types they
//produce (JSON numbers, YAML ints, TOML int64s) so everything goes through here.

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return 0, fmt.Errorf("expected an integer, got %s", n)
			}
			return int(f), nil
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func toList(v any) ([]any, error) {
	switch l := v.(type) {
	case []any:
		return l, nil
	case []map[string]any:
		ret := make([]any, len(l))
		for i := range l {
			ret[i] = l[i]
		}
		return ret, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		ret := make([]any, rv.Len())
		for i := range ret {
			ret[i] = rv.Index(i).Interface()
		}
		return ret, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", v)
}

func toMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		ret := make(map[string]any, len(m))
		for k, val := range m {
			ret[fmt.Sprint(k)] = val
		}
		return ret, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", v)
}

func isList(v any) bool {
	_, err := toList(v)
	return err == nil
}

//flatten appends every number in a (possibly nested) list to dst.
func flatten(v any, dst []float64) ([]float64, error) {
	if f, err := toFloat(v); err == nil {
		return append(dst, f), nil
	}
	l, err := toList(v)
	if err != nil {
		return nil, fmt.Errorf("expected a numeric array, got %T", v)
	}
	for _, e := range l {
		dst, err = flatten(e, dst)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

//canonical returns a copy of a decoded value with every integer as int,
//every other number as float64, every mapping as map[string]any and every
//list as []any. Values from different formats compare equal once canonical.
func canonical(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, int:
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case int64:
		return int(t)
	case int32:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return float64(t)
	case map[string]any:
		ret := make(map[string]any, len(t))
		for k, val := range t {
			ret[k] = canonical(val)
		}
		return ret
	case map[any]any:
		ret := make(map[string]any, len(t))
		for k, val := range t {
			ret[fmt.Sprint(k)] = canonical(val)
		}
		return ret
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		ret := make([]any, rv.Len())
		for i := range ret {
			ret[i] = canonical(rv.Index(i).Interface())
		}
		return ret
	case reflect.Map:
		ret := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ret[fmt.Sprint(iter.Key().Interface())] = canonical(iter.Value().Interface())
		}
		return ret
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int(reflect.ValueOf(v).Convert(reflect.TypeOf(0)).Int())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

//valuesEqual compares two generic values. Numbers are compared by value,
//so 2 and 2.0 are equal, as some formats don't keep the distinction.
func valuesEqual(a, b any) bool {
	a, b = canonical(a), canonical(b)
	fa, erra := toFloat(a)
	fb, errb := toFloat(b)
	if erra == nil && errb == nil {
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	}
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, ok := tb[k]
			if !ok || !valuesEqual(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !valuesEqual(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

//mapsEqual treats nil and empty maps as equal.
func mapsEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return valuesEqual(a, b)
}

//Helpers for optional values

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b || (math.IsNaN(*a) && math.IsNaN(*b))
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

//copyMap makes a shallow copy, never returning nil.
func copyMap(m map[string]any) map[string]any {
	ret := make(map[string]any, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}
