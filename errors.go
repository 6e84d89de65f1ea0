/*
 * errors.go, part of qcio.
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
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

//ValidationError is returned when a record violates one of its invariants
//at construction. It is always fatal for the construction.
type ValidationError struct {
	Record string //The record being built, e.g. "Structure"
	Field  string //The offending field(s), may be empty for cross-field checks.
	Reason string
	Err    error //the underlying error, if any (e.g. validation.Errors)
	deco   []string
}

func (err *ValidationError) Error() string {
	where := err.Record
	if err.Field != "" {
		where += "." + err.Field
	}
	return fmt.Sprintf("qcio: invalid %s: %s", where, err.Reason)
}

func (err *ValidationError) Unwrap() error { return err.Err }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *ValidationError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical is always true for validation errors.
func (err *ValidationError) Critical() bool { return true }

func invalid(record, field, format string, args ...any) *ValidationError {
	return &ValidationError{Record: record, Field: field, Reason: fmt.Sprintf(format, args...)}
}

//fromRules turns the result of an ozzo-validation check into a *ValidationError.
//It returns nil if err is nil.
func fromRules(record string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return &ValidationError{Record: record, Reason: err.Error(), Err: err}
	}
	fields := make([]string, 0, len(verrs))
	for k := range verrs {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	reasons := make([]string, 0, len(fields))
	for _, f := range fields {
		reasons = append(reasons, fmt.Sprintf("%s %s", f, verrs[f].Error()))
	}
	return &ValidationError{Record: record, Field: strings.Join(fields, ","), Reason: strings.Join(reasons, "; "), Err: err}
}

//MalformedInterchangeError is returned when plain-text interchange data
//is inconsistent, or when an operation gets a file extension it does not support.
type MalformedInterchangeError struct {
	Line   int //1-based line of the offending input, 0 if it does not apply.
	Reason string
	deco   []string
}

func (err *MalformedInterchangeError) Error() string {
	if err.Line > 0 {
		return fmt.Sprintf("qcio: malformed interchange data (line %d): %s", err.Line, err.Reason)
	}
	return fmt.Sprintf("qcio: malformed interchange data: %s", err.Reason)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *MalformedInterchangeError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *MalformedInterchangeError) Critical() bool { return true }

func malformed(line int, format string, args ...any) *MalformedInterchangeError {
	return &MalformedInterchangeError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

//UnregisteredTypeError is returned when a Results pairing name is not
//present in the Registry used to resolve it. It indicates a missing
//registration, not a transient condition.
type UnregisteredTypeError struct {
	Name string
	deco []string
}

func (err *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("qcio: unregistered Results type %q", err.Name)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *UnregisteredTypeError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *UnregisteredTypeError) Critical() bool { return true }

//Notice is an advisory, non-fatal message. It reports that a legacy field
//was rewritten onto its current name while reading a payload.
type Notice struct {
	Record      string
	Field       string //the legacy field
	Replacement string //where its value went
}

func (N Notice) String() string {
	return fmt.Sprintf("%s: '%s' is deprecated, use '%s' instead", N.Record, N.Field, N.Replacement)
}

//errDecorate decorates err with the caller's name if it implements Error
//and returns it. Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
