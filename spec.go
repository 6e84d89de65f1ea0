/*
 * spec.go, part of qcio.
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

//SpecKind names a Spec variant.
type SpecKind string

const (
	KindFileSpec          SpecKind = "FileSpec"
	KindCalcSpec          SpecKind = "CalcSpec"
	KindCompositeCalcSpec SpecKind = "CompositeCalcSpec"
)

//SpecKinds lists every Spec variant.
var SpecKinds = []SpecKind{KindFileSpec, KindCalcSpec, KindCompositeCalcSpec}

//Spec describes what a calculation has to do. The set of implementations is
//closed: *FileSpec, *CalcSpec and *CompositeCalcSpec.
type Spec interface {
	Filer
	Dumper
	Kind() SpecKind
	Validate() error
	equal(Spec) bool
}

//StructuredSpec is implemented by the specs that run a given calculation
//on a structure.
type StructuredSpec interface {
	Spec
	Requested() CalcType
	Target() *Structure
}

//FileSpec is the input of a program driven only by files and command
//line arguments.
type FileSpec struct {
	Files       Files
	CmdlineArgs []string
	Extras      map[string]any
}

func (F *FileSpec) Kind() SpecKind  { return KindFileSpec }
func (F *FileSpec) FileMap() Files  { return F.Files }
func (F *FileSpec) Validate() error { return nil }

func (F *FileSpec) equal(o Spec) bool {
	O, ok := o.(*FileSpec)
	if !ok || len(F.CmdlineArgs) != len(O.CmdlineArgs) {
		return false
	}
	for i := range F.CmdlineArgs {
		if F.CmdlineArgs[i] != O.CmdlineArgs[i] {
			return false
		}
	}
	return F.Files.Equal(O.Files) && mapsEqual(F.Extras, O.Extras)
}

func (F *FileSpec) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.files(F.Files)
	args := append([]string{}, F.CmdlineArgs...)
	e.def("cmdline_args", args, len(args) == 0)
	e.extras(F.Extras)
	return e.done()
}

//FileSpecFromDirectory returns a FileSpec holding every file in dir
//(subdirectories not included).
func FileSpecFromDirectory(dir string) (*FileSpec, error) {
	F := &FileSpec{Files: Files{}, Extras: map[string]any{}}
	if err := F.Files.AddFiles(dir, false, nil); err != nil {
		return nil, errDecorate(err, "FileSpecFromDirectory")
	}
	return F, nil
}

//FileSpecFromMap builds a FileSpec from its mapping form.
func FileSpecFromMap(m map[string]any) (*FileSpec, error) {
	r := newReader("FileSpec", m)
	F := &FileSpec{
		Files:       r.files(),
		CmdlineArgs: r.strings("cmdline_args"),
		Extras:      r.extras(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return F, nil
}

//CoreSpec is the core of a calculation: the model, the keywords for the
//program and its files. It has no structure nor calctype, it is used for the
//sub-program of a CompositeCalcSpec.
type CoreSpec struct {
	Model    Model
	Keywords map[string]any
	Files    Files
	Extras   map[string]any
}

func (C CoreSpec) Validate() error {
	return fromRules("CoreSpec", validation.ValidateStruct(&C,
		validation.Field(&C.Model),
	))
}

func (C CoreSpec) Equal(o CoreSpec) bool {
	return C.Model.Equal(o.Model) && mapsEqual(C.Keywords, o.Keywords) &&
		C.Files.Equal(o.Files) && mapsEqual(C.Extras, o.Extras)
}

func (C CoreSpec) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("model", C.Model.Dump(opts))
	e.def("keywords", canonical(orEmpty(C.Keywords)), len(C.Keywords) == 0)
	e.files(C.Files)
	e.extras(C.Extras)
	return e.done()
}

//CoreSpecFromMap builds a CoreSpec from its mapping form.
func CoreSpecFromMap(m map[string]any) (CoreSpec, error) {
	r := newReader("CoreSpec", m)
	var C CoreSpec
	if mm, ok := r.sub("model"); ok {
		var err error
		if C.Model, err = ModelFromMap(mm); err != nil {
			return CoreSpec{}, err
		}
	} else {
		r.fail("model", "field required")
	}
	C.Keywords = keywords(r)
	C.Files = r.files()
	C.Extras = r.extras()
	if err := r.finish(); err != nil {
		return CoreSpec{}, err
	}
	return C, C.Validate()
}

//CalcSpec is the input of a single calculation of a given type on a structure.
type CalcSpec struct {
	CalcType  CalcType
	Structure *Structure
	Model     Model
	Keywords  map[string]any //program keywords, excluding the model and the calctype.
	Files     Files
	Extras    map[string]any
}

func (C *CalcSpec) Kind() SpecKind      { return KindCalcSpec }
func (C *CalcSpec) FileMap() Files      { return C.Files }
func (C *CalcSpec) Requested() CalcType { return C.CalcType }
func (C *CalcSpec) Target() *Structure  { return C.Structure }

//Validate checks the calctype, the model, and that there is a structure.
func (C *CalcSpec) Validate() error {
	return fromRules("CalcSpec", validation.ValidateStruct(C,
		validation.Field(&C.CalcType),
		validation.Field(&C.Structure, validation.Required),
		validation.Field(&C.Model),
	))
}

func (C *CalcSpec) equal(o Spec) bool {
	O, ok := o.(*CalcSpec)
	return ok && C.CalcType == O.CalcType &&
		C.Structure.Equal(O.Structure) &&
		C.Model.Equal(O.Model) &&
		mapsEqual(C.Keywords, O.Keywords) &&
		C.Files.Equal(O.Files) &&
		mapsEqual(C.Extras, O.Extras)
}

func (C *CalcSpec) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("calctype", string(C.CalcType))
	e.req("structure", C.Structure.Dump(opts))
	e.req("model", C.Model.Dump(opts))
	e.def("keywords", canonical(orEmpty(C.Keywords)), len(C.Keywords) == 0)
	e.files(C.Files)
	e.extras(C.Extras)
	return e.done()
}

//CalcSpecFromMap builds a CalcSpec from its mapping form.
func CalcSpecFromMap(m map[string]any) (*CalcSpec, error) {
	r := newReader("CalcSpec", m)
	C := new(CalcSpec)
	C.CalcType = CalcType(r.reqString("calctype"))
	var err error
	if sm, ok := r.sub("structure"); ok {
		if C.Structure, err = StructureFromMap(sm); err != nil {
			return nil, err
		}
	}
	if mm, ok := r.sub("model"); ok {
		if C.Model, err = ModelFromMap(mm); err != nil {
			return nil, err
		}
	} else {
		r.fail("model", "field required")
	}
	C.Keywords = keywords(r)
	C.Files = r.files()
	C.Extras = r.extras()
	if err := r.finish(); err != nil {
		return nil, err
	}
	if err := C.Validate(); err != nil {
		return nil, err
	}
	return C, nil
}

//CompositeCalcSpec is the input of a calculation where a program drives
//a sub-program (e.g. an optimizer calling an electronic structure code).
//The calctype and structure apply to both programs. The model is optional,
//as the sub-program may be the only one needing it.
type CompositeCalcSpec struct {
	CalcType       CalcType
	Structure      *Structure
	Model          *Model
	Keywords       map[string]any
	Subprogram     string
	SubprogramSpec CoreSpec
	Files          Files
	Extras         map[string]any
}

func (C *CompositeCalcSpec) Kind() SpecKind      { return KindCompositeCalcSpec }
func (C *CompositeCalcSpec) FileMap() Files      { return C.Files }
func (C *CompositeCalcSpec) Requested() CalcType { return C.CalcType }
func (C *CompositeCalcSpec) Target() *Structure  { return C.Structure }

func (C *CompositeCalcSpec) Validate() error {
	return fromRules("CompositeCalcSpec", validation.ValidateStruct(C,
		validation.Field(&C.CalcType),
		validation.Field(&C.Structure, validation.Required),
		validation.Field(&C.Model),
		validation.Field(&C.Subprogram, validation.Required),
		validation.Field(&C.SubprogramSpec),
	))
}

func (C *CompositeCalcSpec) equal(o Spec) bool {
	O, ok := o.(*CompositeCalcSpec)
	return ok && C.CalcType == O.CalcType &&
		C.Structure.Equal(O.Structure) &&
		modelEqual(C.Model, O.Model) &&
		mapsEqual(C.Keywords, O.Keywords) &&
		C.Subprogram == O.Subprogram &&
		C.SubprogramSpec.Equal(O.SubprogramSpec) &&
		C.Files.Equal(O.Files) &&
		mapsEqual(C.Extras, O.Extras)
}

func (C *CompositeCalcSpec) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("calctype", string(C.CalcType))
	e.req("structure", C.Structure.Dump(opts))
	if C.Model != nil {
		e.opt("model", C.Model.Dump(opts), false)
	} else {
		e.opt("model", nil, true)
	}
	e.def("keywords", canonical(orEmpty(C.Keywords)), len(C.Keywords) == 0)
	e.req("subprogram", C.Subprogram)
	e.req("subprogram_spec", C.SubprogramSpec.Dump(opts))
	e.files(C.Files)
	e.extras(C.Extras)
	return e.done()
}

//CompositeCalcSpecFromMap builds a CompositeCalcSpec from its mapping form.
func CompositeCalcSpecFromMap(m map[string]any) (*CompositeCalcSpec, error) {
	r := newReader("CompositeCalcSpec", m)
	C := new(CompositeCalcSpec)
	C.CalcType = CalcType(r.reqString("calctype"))
	var err error
	if sm, ok := r.sub("structure"); ok {
		if C.Structure, err = StructureFromMap(sm); err != nil {
			return nil, err
		}
	}
	if mm, ok := r.sub("model"); ok {
		model, err := ModelFromMap(mm)
		if err != nil {
			return nil, err
		}
		C.Model = &model
	}
	C.Keywords = keywords(r)
	C.Subprogram = r.reqString("subprogram")
	if sm, ok := r.sub("subprogram_spec"); ok {
		if C.SubprogramSpec, err = CoreSpecFromMap(sm); err != nil {
			return nil, err
		}
	} else {
		r.fail("subprogram_spec", "field required")
	}
	C.Files = r.files()
	C.Extras = r.extras()
	if err := r.finish(); err != nil {
		return nil, err
	}
	if err := C.Validate(); err != nil {
		return nil, err
	}
	return C, nil
}

//SpecFromMap builds the Spec of the given kind from its mapping form.
//If kind is empty, it is inferred from the fields present.
func SpecFromMap(kind SpecKind, m map[string]any) (Spec, error) {
	if kind == "" {
		kind = InferSpecKind(m)
	}
	switch kind {
	case KindFileSpec:
		return asSpec(FileSpecFromMap(m))
	case KindCalcSpec:
		return asSpec(CalcSpecFromMap(m))
	case KindCompositeCalcSpec:
		return asSpec(CompositeCalcSpecFromMap(m))
	}
	return nil, invalid("Spec", "", "unknown spec kind %q", string(kind))
}

//asSpec keeps a nil pointer out of the returned interface.
func asSpec[T Spec](s T, err error) (Spec, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

//InferSpecKind guesses the Spec variant from the fields in the mapping.
func InferSpecKind(m map[string]any) SpecKind {
	if hasAny(m, "subprogram", "subprogram_spec") {
		return KindCompositeCalcSpec
	}
	if hasAny(m, "calctype", "structure", "model", "keywords") {
		return KindCalcSpec
	}
	return KindFileSpec
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func keywords(r *reader) map[string]any {
	k, ok := r.sub("keywords")
	if !ok {
		return map[string]any{}
	}
	return canonical(k).(map[string]any)
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
