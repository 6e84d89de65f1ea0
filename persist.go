/*
 * persist.go, part of qcio.
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
	"fmt"
	"log/slog"
	"strings"
)

//SaveOptions control how records are written to files.
type SaveOptions struct {
	ExcludeNone  bool //omit optional fields that are nil.
	ExcludeUnset bool //omit fields that hold their default value.
	Indent       int  //spaces per nesting level. 0 gives compact JSON.
	XYZPrecision int  //decimals for XYZ files. 0 means DefaultXYZPrecision.
}

//DefaultSaveOptions are the options of a Store built with NewStore.
var DefaultSaveOptions = SaveOptions{ExcludeNone: true, ExcludeUnset: true, Indent: 4}

func (O SaveOptions) dump() DumpOptions {
	return DumpOptions{ExcludeNone: O.ExcludeNone, ExcludeUnset: O.ExcludeUnset}
}

func (O SaveOptions) xyzPrecision() int {
	if O.XYZPrecision <= 0 {
		return DefaultXYZPrecision
	}
	return O.XYZPrecision
}

//Store reads and writes records in any of the supported formats, chosen
//by the file extension: .json (and any unknown extension), .yaml or .yml,
//.toml, .xyz (structures and optimization trajectories only) and .qcb
//(Results archives). A .gz or .zst suffix adds compression.
//
//Legacy fields are migrated on read, and each rewrite is logged as a
//warning.
type Store struct {
	Registry *Registry //used to build Results. If nil, DefaultRegistry().
	Options  SaveOptions
	Logger   *slog.Logger //If nil, slog.Default().
}

//NewStore returns a Store with DefaultSaveOptions. A nil registry or logger
//means the default one.
func NewStore(R *Registry, logger *slog.Logger) *Store {
	return &Store{Registry: R, Options: DefaultSaveOptions, Logger: logger}
}

func (S *Store) registry() *Registry {
	if S.Registry == nil {
		return DefaultRegistry()
	}
	return S.Registry
}

func (S *Store) logger() *slog.Logger {
	if S.Logger == nil {
		return slog.Default()
	}
	return S.Logger
}

func (S *Store) notify(path string, notices []Notice) {
	for _, n := range notices {
		S.logger().Warn("deprecated field",
			slog.String("path", path),
			slog.String("record", n.Record),
			slog.String("field", n.Field),
			slog.String("replacement", n.Replacement))
	}
}

func unsupported(path, op string) error {
	return malformed(0, "%s: unsupported extension for %s", path, op)
}

//readMap reads the single record in path and migrates it.
func (S *Store) readMap(path string, kind RecordKind) (map[string]any, error) {
	data, f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if f == XYZ || f == Archive {
		return nil, unsupported(path, "reading a "+string(kind))
	}
	m, err := decodeMap(f, data)
	if err != nil {
		return nil, errDecorate(err, "readMap "+path)
	}
	m, notices := Migrate(kind, m)
	S.notify(path, notices)
	return m, nil
}

//readList reads the sequence of records in path and migrates each.
func (S *Store) readList(path string, kind RecordKind) ([]map[string]any, error) {
	data, f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if f == XYZ || f == Archive {
		return nil, unsupported(path, "reading a sequence of "+string(kind))
	}
	l, err := decodeList(f, data)
	if err != nil {
		return nil, errDecorate(err, "readList "+path)
	}
	for i := range l {
		var notices []Notice
		l[i], notices = Migrate(kind, l[i])
		S.notify(path, notices)
	}
	return l, nil
}

//OpenStructure reads a Structure. XYZ files must hold a single structure.
func (S *Store) OpenStructure(path string) (*Structure, error) {
	if f, _ := FormatOf(path); f == XYZ {
		data, _, err := readFile(path)
		if err != nil {
			return nil, err
		}
		st, err := FromXYZ(string(data), nil, nil)
		return st, errDecorate(err, "OpenStructure "+path)
	}
	m, err := S.readMap(path, RecordStructure)
	if err != nil {
		return nil, err
	}
	st, err := StructureFromMap(m)
	return st, errDecorate(err, "OpenStructure "+path)
}

//OpenStructures reads a sequence of structures, from a multi-structure XYZ
//file or a sequence of records.
func (S *Store) OpenStructures(path string) ([]*Structure, error) {
	if f, _ := FormatOf(path); f == XYZ {
		data, _, err := readFile(path)
		if err != nil {
			return nil, err
		}
		l, err := FromXYZMulti(string(data), nil, nil)
		return l, errDecorate(err, "OpenStructures "+path)
	}
	l, err := S.readList(path, RecordStructure)
	if err != nil {
		return nil, err
	}
	ret := make([]*Structure, len(l))
	for i, m := range l {
		if ret[i], err = StructureFromMap(m); err != nil {
			return nil, errDecorate(err, "OpenStructures "+path)
		}
	}
	return ret, nil
}

//OpenSpec reads a Spec, inferring its variant from the fields present.
func (S *Store) OpenSpec(path string) (Spec, error) {
	m, err := S.readMap(path, RecordSpec)
	if err != nil {
		return nil, err
	}
	sp, err := SpecFromMap("", m)
	return sp, errDecorate(err, "OpenSpec "+path)
}

//OpenMultiSpecs reads a sequence of Specs.
func (S *Store) OpenMultiSpecs(path string) ([]Spec, error) {
	l, err := S.readList(path, RecordSpec)
	if err != nil {
		return nil, err
	}
	ret := make([]Spec, len(l))
	for i, m := range l {
		if ret[i], err = SpecFromMap("", m); err != nil {
			return nil, errDecorate(err, "OpenMultiSpecs "+path)
		}
	}
	return ret, nil
}

//OpenData reads a Data, inferring its variant from the fields present.
func (S *Store) OpenData(path string) (Data, error) {
	m, err := S.readMap(path, RecordData)
	if err != nil {
		return nil, err
	}
	d, err := DataFromMap("", m)
	return d, errDecorate(err, "OpenData "+path)
}

//OpenMultiData reads a sequence of Data.
func (S *Store) OpenMultiData(path string) ([]Data, error) {
	l, err := S.readList(path, RecordData)
	if err != nil {
		return nil, err
	}
	ret := make([]Data, len(l))
	for i, m := range l {
		if ret[i], err = DataFromMap("", m); err != nil {
			return nil, errDecorate(err, "OpenMultiData "+path)
		}
	}
	return ret, nil
}

//OpenResults reads a Results of the concrete type matching its content.
//Archives (.qcb) carry the name of their type, which is resolved through
//the Store's registry.
func (S *Store) OpenResults(path string) (Output, error) {
	if f, _ := FormatOf(path); f == Archive {
		data, _, err := readFile(path)
		if err != nil {
			return nil, err
		}
		o, err := Unpack(S.registry(), data)
		return o, errDecorate(err, "OpenResults "+path)
	}
	m, err := S.readMap(path, RecordResults)
	if err != nil {
		return nil, err
	}
	o, _, err := S.registry().ResultsFromMap(m)
	return o, errDecorate(err, "OpenResults "+path)
}

//OpenMultiResults reads a sequence of Results.
func (S *Store) OpenMultiResults(path string) ([]Output, error) {
	l, err := S.readList(path, RecordResults)
	if err != nil {
		return nil, err
	}
	ret := make([]Output, len(l))
	for i, m := range l {
		if ret[i], _, err = S.registry().ResultsFromMap(m); err != nil {
			return nil, errDecorate(err, "OpenMultiResults "+path)
		}
	}
	return ret, nil
}

//OpenResultsAs reads a Results of the given types. A nil store means
//NewStore(nil, nil).
func OpenResultsAs[S Spec, D Data](st *Store, path string) (*Results[S, D], error) {
	if st == nil {
		st = NewStore(nil, nil)
	}
	if f, _ := FormatOf(path); f == Archive {
		o, err := st.OpenResults(path)
		if err != nil {
			return nil, err
		}
		R, ok := o.(*Results[S, D])
		if !ok {
			return nil, invalid("Results", "", "%s holds a %s", path, o.Pairing().Name())
		}
		return R, nil
	}
	m, err := st.readMap(path, RecordResults)
	if err != nil {
		return nil, err
	}
	R, err := ResultsFromMap[S, D](m)
	if err != nil {
		return nil, errDecorate(err, "OpenResultsAs "+path)
	}
	return R, nil
}

//Save writes rec to path with the Store's options.
func (S *Store) Save(path string, rec Dumper) error {
	return S.SaveWith(path, rec, S.Options)
}

//SaveWith writes rec to path. XYZ files take a Structure or an
//OptimizationData, .qcb files take a Results. Any record can be saved in
//the other formats.
func (S *Store) SaveWith(path string, rec Dumper, opts SaveOptions) error {
	var data []byte
	var err error
	switch f, _ := FormatOf(path); f {
	case XYZ:
		x, ok := rec.(XYZer)
		if !ok {
			return unsupported(path, "saving a "+typeName(rec))
		}
		data = []byte(x.ToXYZ(opts.xyzPrecision()))
	case Archive:
		o, ok := rec.(Output)
		if !ok {
			return unsupported(path, "saving a "+typeName(rec))
		}
		if data, err = Pack(o); err != nil {
			return errDecorate(err, "Save "+path)
		}
	default:
		if data, err = encode(f, rec.Dump(opts.dump()), opts.Indent); err != nil {
			return errDecorate(err, "Save "+path)
		}
	}
	return writeFile(path, data)
}

//SaveMulti writes a sequence of records to path, with the options of st
//(NewStore(nil, nil) if st is nil). Only structures can be saved to XYZ.
func SaveMulti[T Dumper](st *Store, path string, recs []T) error {
	if st == nil {
		st = NewStore(nil, nil)
	}
	opts := st.Options
	f, _ := FormatOf(path)
	if f == Archive {
		return unsupported(path, "saving a sequence")
	}
	if f == XYZ {
		var b strings.Builder
		for _, r := range recs {
			s, ok := any(r).(*Structure)
			if !ok {
				return unsupported(path, "saving a sequence of "+typeName(r))
			}
			b.WriteString(s.ToXYZ(opts.xyzPrecision()))
		}
		return writeFile(path, []byte(b.String()))
	}
	l := make([]any, len(recs))
	for i, r := range recs {
		l[i] = r.Dump(opts.dump())
	}
	data, err := encode(f, l, opts.Indent)
	if err != nil {
		return errDecorate(err, "SaveMulti "+path)
	}
	return writeFile(path, data)
}

func typeName(v any) string {
	if o, ok := v.(Output); ok && !isNil(o) {
		return o.Pairing().Name()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*qcio.")
}

//The package-level functions use a Store with the default registry,
//options and logger.

//Save writes rec to path with DefaultSaveOptions.
func Save(path string, rec Dumper) error { return NewStore(nil, nil).Save(path, rec) }

func OpenStructure(path string) (*Structure, error) { return NewStore(nil, nil).OpenStructure(path) }

func OpenStructures(path string) ([]*Structure, error) {
	return NewStore(nil, nil).OpenStructures(path)
}

func OpenSpec(path string) (Spec, error)      { return NewStore(nil, nil).OpenSpec(path) }
func OpenData(path string) (Data, error)      { return NewStore(nil, nil).OpenData(path) }
func OpenResults(path string) (Output, error) { return NewStore(nil, nil).OpenResults(path) }
