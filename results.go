/*
 * results.go, part of qcio.
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
	"reflect"
	"strings"
)

//Pairing names the concrete (Spec, Data) combination held by a Results.
type Pairing struct {
	Spec SpecKind
	Data DataKind
}

//Name returns the name under which the pairing is registered, for
//instance "Results[CalcSpec,SinglePointData]".
func (P Pairing) Name() string {
	return fmt.Sprintf("Results[%s,%s]", P.Spec, P.Data)
}

func (P Pairing) String() string { return P.Name() }

//ParsePairing is the inverse of Pairing.Name. It doesn't check that the
//kinds exist.
func ParsePairing(name string) (Pairing, error) {
	inner, ok := strings.CutPrefix(name, "Results[")
	if ok {
		inner, ok = strings.CutSuffix(inner, "]")
	}
	s, d, found := strings.Cut(inner, ",")
	if !ok || !found || s == "" || d == "" {
		return Pairing{}, &UnregisteredTypeError{Name: name}
	}
	return Pairing{Spec: SpecKind(s), Data: DataKind(d)}, nil
}

//Output is implemented by every instantiation of Results. It lets code
//handle a Results without naming its type parameters. The set of
//implementations is closed.
type Output interface {
	Filer
	Dumper
	Pairing() Pairing
	Input() Spec
	Payload() Data
	Succeeded() bool
	LogText() string       //the logs, or "" if there are none.
	TracebackText() string //the traceback, or "" if there is none.
	Prov() Provenance
	//ReturnResult returns the primary result of the calculation,
	//or nil if there isn't one.
	ReturnResult() any
	//Equal returns true if o has the same pairing and the same values.
	Equal(o Output) bool
	meta() resultMeta
}

//resultMeta holds the optional fields of a Results.
type resultMeta struct {
	logs      *string
	traceback *string
	extras    map[string]any
}

//ResultOption sets an optional field of a Results being built.
type ResultOption func(*resultMeta)

//WithLogs sets the logs of the program.
func WithLogs(logs string) ResultOption {
	return func(m *resultMeta) { m.logs = &logs }
}

//WithTraceback sets the traceback. It is required for failed calculations.
func WithTraceback(tb string) ResultOption {
	return func(m *resultMeta) { m.traceback = &tb }
}

//WithResultExtras sets the extras of the Results. The map is copied.
func WithResultExtras(extras map[string]any) ResultOption {
	return func(m *resultMeta) {
		if c, ok := canonical(extras).(map[string]any); ok {
			m.extras = c
		}
	}
}

func withMeta(src resultMeta) ResultOption {
	return func(m *resultMeta) { *m = src }
}

//Results is the outcome of running a program on the input S, which
//produced the data D. Results are validated at construction and should
//not be modified afterwards.
//
//S and D are normally concrete variants, as in
//Results[*CalcSpec, *SinglePointData]. A Results[Spec, Data] is the
//unspecialized form; Specialize turns it into the concrete one.
type Results[S Spec, D Data] struct {
	InputData  S
	Success    bool
	Data       D
	Logs       *string
	Traceback  *string
	Provenance Provenance
	Extras     map[string]any
}

//NewTyped builds and validates a Results of the given types.
func NewTyped[S Spec, D Data](input S, success bool, data D, prov Provenance, opts ...ResultOption) (*Results[S, D], error) {
	var m resultMeta
	for _, o := range opts {
		o(&m)
	}
	if m.extras == nil {
		m.extras = map[string]any{}
	}
	R := &Results[S, D]{
		InputData:  input,
		Success:    success,
		Data:       data,
		Logs:       m.logs,
		Traceback:  m.traceback,
		Provenance: prov,
		Extras:     m.extras,
	}
	if err := R.validate(); err != nil {
		return nil, errDecorate(err, "NewTyped")
	}
	return R, nil
}

//asOutput avoids returning a nil *Results inside a non-nil Output.
func asOutput[S Spec, D Data](R *Results[S, D], err error) (Output, error) {
	if err != nil {
		return nil, err
	}
	return R, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

//validate checks the nested records first, then the rules that tie the
//input, the data and the success flag together.
func (R *Results[S, D]) validate() error {
	if err := R.Provenance.Validate(); err != nil {
		return err
	}
	if isNil(R.InputData) {
		return invalid("Results", "input_data", "field required")
	}
	if err := R.InputData.Validate(); err != nil {
		return err
	}
	if isNil(R.Data) {
		return invalid("Results", "data", "field required")
	}
	if err := R.Data.prepare(); err != nil {
		return err
	}
	if !R.Success && (R.Traceback == nil || *R.Traceback == "") {
		return invalid("Results", "traceback", "a traceback must be provided for failed calculations")
	}
	if R.Success && R.InputData.Kind() != KindFileSpec && R.Data.Kind() == KindEmptyData {
		return invalid("Results", "data", "structured data must be provided for successful, non FileSpec calculations")
	}
	sp, isSP := any(R.Data).(*SinglePointData)
	st, isStructured := any(R.InputData).(StructuredSpec)
	if isSP && isStructured {
		ct := st.Requested()
		if ct.singlePoint() && sp.ReturnResult(ct) == nil {
			return invalid("Results", "data."+string(ct), "missing the primary result: %s", ct)
		}
	}
	return nil
}

func (R *Results[S, D]) Pairing() Pairing {
	return Pairing{Spec: R.InputData.Kind(), Data: R.Data.Kind()}
}

func (R *Results[S, D]) Input() Spec           { return R.InputData }
func (R *Results[S, D]) Payload() Data         { return R.Data }
func (R *Results[S, D]) Succeeded() bool       { return R.Success }
func (R *Results[S, D]) Prov() Provenance      { return R.Provenance }
func (R *Results[S, D]) LogText() string       { return strOrEmpty(R.Logs) }
func (R *Results[S, D]) TracebackText() string { return strOrEmpty(R.Traceback) }

//FileMap returns the files of the data, where the files produced by the
//program live.
func (R *Results[S, D]) FileMap() Files { return R.Data.FileMap() }

func (R *Results[S, D]) meta() resultMeta {
	return resultMeta{logs: R.Logs, traceback: R.Traceback, extras: R.Extras}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

//ReturnResult returns, for a structured input, the energy, gradient or
//hessian named by the calctype (single points) or the final structure
//(optimizations). It returns nil in any other case.
func (R *Results[S, D]) ReturnResult() any {
	st, ok := any(R.InputData).(StructuredSpec)
	if !ok {
		return nil
	}
	switch d := any(R.Data).(type) {
	case *SinglePointData:
		return d.ReturnResult(st.Requested())
	case *OptimizationData:
		if s := d.FinalStructure(); s != nil {
			return s
		}
	}
	return nil
}

//Equal compares the values held by two Results, whatever their static types.
func (R *Results[S, D]) Equal(o Output) bool {
	if isNil(o) {
		return false
	}
	m := o.meta()
	return R.Pairing() == o.Pairing() &&
		R.Success == o.Succeeded() &&
		R.InputData.equal(o.Input()) &&
		R.Data.equal(o.Payload()) &&
		ptrEqual(R.Logs, m.logs) &&
		ptrEqual(R.Traceback, m.traceback) &&
		R.Provenance.Equal(o.Prov()) &&
		mapsEqual(R.Extras, m.extras)
}

//Dump returns the mapping form of the Results.
func (R *Results[S, D]) Dump(opts DumpOptions) map[string]any {
	e := newEmitter(opts)
	e.req("input_data", R.InputData.Dump(opts))
	e.req("success", R.Success)
	e.req("data", R.Data.Dump(opts))
	e.opt("logs", deref(R.Logs), R.Logs == nil)
	e.opt("traceback", deref(R.Traceback), R.Traceback == nil)
	e.req("provenance", R.Provenance.Dump(opts))
	e.extras(R.Extras)
	return e.done()
}

//specKindOf returns the kind of the Spec type S, and false if S is not
//one of the concrete variants.
func specKindOf[S Spec]() (SpecKind, bool) {
	var s S
	switch any(s).(type) {
	case *FileSpec:
		return KindFileSpec, true
	case *CalcSpec:
		return KindCalcSpec, true
	case *CompositeCalcSpec:
		return KindCompositeCalcSpec, true
	}
	return "", false
}

func dataKindOf[D Data]() (DataKind, bool) {
	var d D
	switch any(d).(type) {
	case *EmptyData:
		return KindEmptyData, true
	case *SinglePointData:
		return KindSinglePointData, true
	case *OptimizationData:
		return KindOptimizationData, true
	case *ConformerSearchData:
		return KindConformerSearchData, true
	}
	return "", false
}

//ResultsFromMap builds a Results of the given types from its mapping form.
//If S or D is an interface type, the kind is inferred from the fields
//present. Legacy fields are not accepted: see Migrate.
func ResultsFromMap[S Spec, D Data](m map[string]any) (*Results[S, D], error) {
	const rec = "Results"
	r := newReader(rec, m)
	in, ok := r.sub("input_data")
	if !ok {
		r.fail("input_data", "field required")
	}
	success, ok := r.boolean("success")
	if !ok {
		r.fail("success", "field required")
	}
	dm, ok := r.sub("data")
	if !ok {
		r.fail("data", "field required")
	}
	var opts []ResultOption
	if logs := r.str("logs"); logs != nil {
		opts = append(opts, WithLogs(*logs))
	}
	if tb := r.str("traceback"); tb != nil {
		opts = append(opts, WithTraceback(*tb))
	}
	pm, ok := r.sub("provenance")
	if !ok {
		r.fail("provenance", "field required")
	}
	opts = append(opts, WithResultExtras(r.extras()))
	if err := r.finish(); err != nil {
		return nil, err
	}

	sk, ok := specKindOf[S]()
	if !ok {
		sk = InferSpecKind(in)
	}
	spec, err := SpecFromMap(sk, in)
	if err != nil {
		return nil, errDecorate(err, "ResultsFromMap")
	}
	dk, ok := dataKindOf[D]()
	if !ok {
		dk = InferDataKind(dm)
	}
	data, err := DataFromMap(dk, dm)
	if err != nil {
		return nil, errDecorate(err, "ResultsFromMap")
	}
	prov, err := ProvenanceFromMap(pm)
	if err != nil {
		return nil, errDecorate(err, "ResultsFromMap")
	}
	s, ok := spec.(S)
	if !ok {
		return nil, invalid(rec, "input_data", "got a %s", sk)
	}
	d, ok := data.(D)
	if !ok {
		return nil, invalid(rec, "data", "got a %s", dk)
	}
	return NewTyped[S, D](s, success, d, prov, opts...)
}

//New builds a Results of the concrete type that matches the kinds of input
//and data, using the default registry.
func New(input Spec, success bool, data Data, prov Provenance, opts ...ResultOption) (Output, error) {
	return DefaultRegistry().New(input, success, data, prov, opts...)
}

//Specialize returns o as its concrete Results type, using the default
//registry. Values that are already concrete are returned unchanged.
func Specialize(o Output) (Output, error) {
	return DefaultRegistry().Specialize(o)
}
