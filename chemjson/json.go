/*
 * json.go, part of qcio.
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

package chemjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/qcgo/qcio"
)

//Record kinds announced in a Header.
const (
	KindStructure = "Structure"
	KindSpec      = "Spec"
	KindData      = "Data"
	KindResults   = "Results"
)

//Header precedes every record in a stream.
type Header struct {
	Record  string //one of the Kind constants.
	Pairing string `json:",omitempty"` //the pairing name, for Results.
	Atoms   int    `json:",omitempty"` //the number of atom lines that follow, for structures.
}

//A ready-to-serialize container for an atom.
type Atom struct {
	Symbol string
	Coords []float64 //in Bohr
}

//The line sent before the atoms of a structure.
type structureInfo struct {
	Charge       int
	Multiplicity int
	Identifiers  map[string]string `json:",omitempty"`
}

//An easily JSON-serializable error type,
type Error struct {
	deco          []string
	IsError       bool //If this is false (no error) all the other fields will be at their zero-values.
	InOptions     bool //If error, was it in parsing the options?
	InRecord      bool //Was it in reading a record?
	InProcess     bool
	InPostProcess bool   //was it in preparing the output?
	Record        string //Which kind of record?
	Line          int    //Which line of the record, 0 if it doesn't apply.
	Function      string //which go function gave the error
	Message       string //the error itself
}

//Error implements the error interface
func (J *Error) Error() string {
	return J.Message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

//Critical is always true, the stream can't be trusted after an error.
func (J *Error) Critical() bool { return true }

//Serializes the error. Panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - "))
	}
	return ret
}

//Takes an error and some additional info to create a json-marshal-ble error
func NewError(where, function string, err error) *Error {
	jerr := new(Error)
	jerr.IsError = true
	switch where {
	case "options":
		jerr.InOptions = true
	case "record":
		jerr.InRecord = true
	case "postprocess":
		jerr.InPostProcess = true
	default:
		jerr.InProcess = true
	}
	jerr.Function = function
	jerr.Message = err.Error()
	return jerr
}

func recordError(function, kind string, line int, err error) *Error {
	jerr := NewError("record", function, err)
	jerr.Record = kind
	jerr.Line = line
	return jerr
}

//Information to be passed back to the calling program once a job is done.
type Info struct {
	Records  int
	Pairings []string   //the pairing of each Results sent.
	Success  []bool     //the success flag of each Results sent.
	Energies []*float64 //the energy of each Results sent, null if there is none.
	Notices  []string   //the legacy fields rewritten while reading the input.
}

//AddResults records o in the Info.
func (J *Info) AddResults(o qcio.Output) {
	J.Records++
	J.Pairings = append(J.Pairings, o.Pairing().Name())
	J.Success = append(J.Success, o.Succeeded())
	var e *float64
	if sp, ok := o.Payload().(*qcio.SinglePointData); ok && sp.Energy != nil {
		v := *sp.Energy
		e = &v
	}
	J.Energies = append(J.Energies, e)
}

//AddNotices records the notices returned by DecodeRecord.
func (J *Info) AddNotices(notices []qcio.Notice) {
	for _, n := range notices {
		J.Notices = append(J.Notices, n.String())
	}
}

//Send Marshals the info and writes to out, returns an error or nil
func (J *Info) Send(out io.Writer) *Error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(J); err != nil {
		return NewError("postprocess", "Info.Send", err)
	}
	return nil
}

//Options passed from the calling external program
type Options struct {
	Records       []string //the kind of each record that will follow.
	Program       string   //the program the records are meant for, if any.
	StringOptions [][]string
	IntOptions    [][]int
	BoolOptions   [][]bool
	FloatOptions  [][]float64
}

//DecodeOptions Decodes or unmarshals json options into an Options structure
func DecodeOptions(stdin *bufio.Reader) (*Options, *Error) {
	line, err := stdin.ReadBytes('\n')
	if err != nil {
		return nil, NewError("options", "DecodeOptions", err)
	}
	ret := new(Options)
	if err = json.Unmarshal(line, ret); err != nil {
		return nil, NewError("options", "DecodeOptions", err)
	}
	return ret, nil
}

//readHeader reads the header line and checks that it announces the
//expected kind. An empty kind accepts anything.
func readHeader(stream *bufio.Reader, kind, funcname string) (*Header, *Error) {
	line, err := stream.ReadBytes('\n')
	if err != nil && len(bytes.TrimSpace(line)) == 0 {
		return nil, recordError(funcname, kind, 1, err)
	}
	h := new(Header)
	if err := json.Unmarshal(line, h); err != nil {
		return nil, recordError(funcname, kind, 1, err)
	}
	if kind != "" && h.Record != kind {
		return nil, recordError(funcname, kind, 1, fmt.Errorf("expected a %s, got a %q header", kind, h.Record))
	}
	return h, nil
}

//DecodeStructure reads a structure sent by SendStructure: a header line,
//a line with the charge, multiplicity and identifiers, and one line per atom.
func DecodeStructure(stream *bufio.Reader) (*qcio.Structure, *Error) {
	const funcname = "DecodeStructure"
	h, jerr := readHeader(stream, KindStructure, funcname)
	if jerr != nil {
		return nil, jerr
	}
	line, err := stream.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, recordError(funcname, KindStructure, 2, err)
	}
	info := &structureInfo{Multiplicity: 1}
	if err = json.Unmarshal(line, info); err != nil {
		return nil, recordError(funcname, KindStructure, 2, err)
	}
	symbols := make([]string, 0, h.Atoms)
	rawcoords := make([]float64, 0, 3*h.Atoms)
	for i := 0; i < h.Atoms; i++ {
		line, err := stream.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, recordError(funcname, KindStructure, i+3, fmt.Errorf("expected %d atoms, got %d: %w", h.Atoms, i, err))
		}
		at := new(Atom)
		if err = json.Unmarshal(line, at); err != nil {
			return nil, recordError(funcname, KindStructure, i+3, err)
		}
		if len(at.Coords) != 3 {
			return nil, recordError(funcname, KindStructure, i+3, fmt.Errorf("expected 3 coordinates, got %d", len(at.Coords)))
		}
		symbols = append(symbols, at.Symbol)
		rawcoords = append(rawcoords, at.Coords...)
	}
	S, err := qcio.NewStructure(symbols, rawcoords, qcio.WithCharge(info.Charge), qcio.WithMultiplicity(info.Multiplicity))
	if err != nil {
		return nil, recordError(funcname, KindStructure, 0, err)
	}
	if len(info.Identifiers) > 0 {
		if S, err = S.AddIdentifiers(info.Identifiers); err != nil {
			return nil, recordError(funcname, KindStructure, 2, err)
		}
	}
	return S, nil
}

//SendStructure encodes S and writes it to out, one atom per line. Only the
//charge, multiplicity, identifiers, symbols and geometry are sent.
func SendStructure(S *qcio.Structure, out io.Writer) *Error {
	const funcname = "SendStructure"
	enc := json.NewEncoder(out)
	if err := enc.Encode(Header{Record: KindStructure, Atoms: S.NAtoms()}); err != nil {
		return NewError("postprocess", funcname, err)
	}
	info := structureInfo{Charge: S.Charge, Multiplicity: S.Multiplicity, Identifiers: S.Identifiers.Map()}
	if err := enc.Encode(info); err != nil {
		return NewError("postprocess", funcname, err)
	}
	at := new(Atom)
	t := make([]float64, 3)
	for i, s := range S.Symbols {
		at.Symbol = s
		at.Coords = append(t[:0], S.Geometry.RawRowView(i)...)
		if err := enc.Encode(at); err != nil {
			return NewError("postprocess", funcname, err)
		}
	}
	return nil
}

//recordKind returns the header kind for rec.
func recordKind(rec qcio.Dumper) (Header, error) {
	switch r := rec.(type) {
	case qcio.Output:
		return Header{Record: KindResults, Pairing: r.Pairing().Name()}, nil
	case qcio.Spec:
		return Header{Record: KindSpec}, nil
	case qcio.Data:
		return Header{Record: KindData}, nil
	case *qcio.Structure:
		return Header{Record: KindStructure}, nil
	}
	return Header{}, fmt.Errorf("can't send a %T", rec)
}

//SendRecord writes a header line and the full mapping form of rec, in a
//single line, to out. Structures sent this way are read back with
//DecodeRecord, not DecodeStructure.
func SendRecord(rec qcio.Dumper, out io.Writer) *Error {
	const funcname = "SendRecord"
	h, err := recordKind(rec)
	if err != nil {
		return NewError("postprocess", funcname, err)
	}
	enc := json.NewEncoder(out)
	if err := enc.Encode(h); err != nil {
		return NewError("postprocess", funcname, err)
	}
	if err := enc.Encode(rec.Dump(qcio.DumpOptions{ExcludeNone: true})); err != nil {
		return NewError("postprocess", funcname, err)
	}
	return nil
}

//DecodeRecord reads a record sent by SendRecord, migrating legacy fields.
//The value returned is a *qcio.Structure, a qcio.Spec, a qcio.Data or a
//qcio.Output. Results are built as the pairing in the header says, through
//R, or through qcio.DefaultRegistry() if R is nil.
func DecodeRecord(stream *bufio.Reader, R *qcio.Registry) (qcio.Dumper, []qcio.Notice, *Error) {
	const funcname = "DecodeRecord"
	if R == nil {
		R = qcio.DefaultRegistry()
	}
	h, jerr := readHeader(stream, "", funcname)
	if jerr != nil {
		return nil, nil, jerr
	}
	line, err := stream.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, nil, recordError(funcname, h.Record, 2, err)
	}
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, nil, recordError(funcname, h.Record, 2, err)
	}
	var ret qcio.Dumper
	var notices []qcio.Notice
	switch h.Record {
	case KindStructure:
		m, notices = qcio.Migrate(qcio.RecordStructure, m)
		ret, err = asDumper(qcio.StructureFromMap(m))
	case KindSpec:
		m, notices = qcio.Migrate(qcio.RecordSpec, m)
		ret, err = asDumper(qcio.SpecFromMap("", m))
	case KindData:
		m, notices = qcio.Migrate(qcio.RecordData, m)
		ret, err = asDumper(qcio.DataFromMap("", m))
	case KindResults:
		m, notices = qcio.Migrate(qcio.RecordResults, m)
		ret, err = asDumper(R.ResultsFromNamedMap(h.Pairing, m))
	default:
		err = fmt.Errorf("unknown record kind %q", h.Record)
	}
	if err != nil {
		return nil, notices, recordError(funcname, h.Record, 2, err)
	}
	return ret, notices, nil
}

func asDumper[T qcio.Dumper](v T, err error) (qcio.Dumper, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
