/*
 * xyz.go, part of qcio.
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
	"strconv"
	"strings"
	"unicode"
)

//DefaultXYZPrecision is the number of decimals written by default. It keeps
//all the precision of a float64.
const DefaultXYZPrecision = 17

//XYZCommentsKey is the key in Structure.Extras holding the comment-line
//tokens that were not recognized when the structure was read from XYZ.
//They are written back, in the same order, by ToXYZ.
const XYZCommentsKey = "xyz_comments"

const (
	xyzPrefix   = "qcio_"
	xyzIDPrefix = "qcio__identifiers_"
)

//ToXYZ returns the structure in XYZ format, with coordinates in Angstrom and
//precision decimals. The comment line carries the charge, the multiplicity,
//the identifiers that are set and any comments read from a previous XYZ file,
//as space-separated key=value tokens. Identifier values with blanks are
//written quoted.
func (S *Structure) ToXYZ(precision int) string {
	if precision < 0 {
		precision = DefaultXYZPrecision
	}
	tokens := []string{
		fmt.Sprintf("%scharge=%d", xyzPrefix, S.Charge),
		fmt.Sprintf("%smultiplicity=%d", xyzPrefix, S.Multiplicity),
	}
	for _, f := range identifierFields {
		if v := *f.field(&S.Identifiers); v != "" {
			tokens = append(tokens, xyzIDPrefix+f.wire+"="+xyzValue(v))
		}
	}
	tokens = append(tokens, S.xyzComments()...)

	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", S.NAtoms())
	b.WriteString(strings.Join(tokens, " "))
	b.WriteString("\n")
	ang := S.GeometryAngstrom()
	for i, sym := range S.Symbols {
		r := ang.RawRowView(i)
		fmt.Fprintf(&b, "%-2s %18.*f %18.*f %18.*f\n", sym, precision, r[0], precision, r[1], precision, r[2])
	}
	return b.String()
}

//xyzValue quotes an identifier value that would not be read back as a
//single token.
func xyzValue(v string) string {
	if strings.ContainsFunc(v, unicode.IsSpace) || strings.Contains(v, `"`) {
		return strconv.Quote(v)
	}
	return v
}

//commentTokens splits an XYZ comment line at blanks. The value of an
//identifier token may be a quoted string, which can hold blanks.
func commentTokens(line string, lineno int) ([]string, error) {
	var ret []string
	for {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if line == "" {
			return ret, nil
		}
		end := strings.IndexFunc(line, unicode.IsSpace)
		if end < 0 {
			end = len(line)
		}
		tok := line[:end]
		if i := strings.IndexByte(tok, '='); i >= 0 && strings.HasPrefix(tok, xyzIDPrefix) && strings.HasPrefix(tok[i+1:], `"`) {
			q, err := strconv.QuotedPrefix(line[i+1:])
			if err != nil {
				return nil, malformed(lineno, "token %q has an unterminated quoted value", tok)
			}
			end = i + 1 + len(q)
			tok = line[:end]
		}
		ret = append(ret, tok)
		line = line[end:]
	}
}

func (S *Structure) xyzComments() []string {
	raw, ok := S.Extras[XYZCommentsKey]
	if !ok || raw == nil {
		return nil
	}
	l, err := toList(raw)
	if err != nil {
		return []string{fmt.Sprint(raw)}
	}
	ret := make([]string, 0, len(l))
	for _, c := range l {
		ret = append(ret, fmt.Sprint(c))
	}
	return ret
}

//ToMultiXYZ concatenates the XYZ form of every structure, with the default precision.
func ToMultiXYZ(structures []*Structure) string {
	var b strings.Builder
	for _, s := range structures {
		b.WriteString(s.ToXYZ(DefaultXYZPrecision))
	}
	return b.String()
}

//FromXYZ reads a structure in XYZ format. The charge and multiplicity are
//taken from the comment line if they are there, from the arguments if they
//are not nil, and from the defaults (0 and 1) otherwise. Giving a value both
//in the text and as an argument is an error.
func FromXYZ(text string, charge, multiplicity *int) (*Structure, error) {
	lines := splitLines(text)
	n, err := xyzCount(lines, 0)
	if err != nil {
		return nil, err
	}
	if len(lines) < n+2 {
		return nil, malformed(len(lines), "the header declares %d atoms but only %d coordinate lines follow", n, max(len(lines)-2, 0))
	}
	for i := n + 2; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return nil, malformed(i+1, "the header declares %d atoms but more coordinate lines follow", n)
		}
	}
	return parseXYZBlock(lines[:n+2], 0, charge, multiplicity)
}

//FromXYZMulti reads several XYZ blocks, one after the other. Blank lines
//between blocks are ignored. Each block is read as FromXYZ would read it.
func FromXYZMulti(text string, charge, multiplicity *int) ([]*Structure, error) {
	lines := splitLines(strings.TrimSpace(text))
	var ret []*Structure
	i := 0
	for i < len(lines) {
		n, err := xyzCount(lines, i)
		if err != nil {
			return nil, err
		}
		if i+n+2 > len(lines) {
			return nil, malformed(len(lines), "the header at line %d declares %d atoms but the input ends before", i+1, n)
		}
		s, err := parseXYZBlock(lines[i:i+n+2], i, charge, multiplicity)
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
		i += n + 2
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}
	return ret, nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

//xyzCount reads the atom count in lines[i].
func xyzCount(lines []string, i int) (int, error) {
	if i >= len(lines) {
		return 0, malformed(i+1, "missing atom count")
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[i]))
	if err != nil || n < 0 {
		return 0, malformed(i+1, "invalid atom count %q", strings.TrimSpace(lines[i]))
	}
	return n, nil
}

//parseXYZBlock reads a block of exactly count+2 lines. offset is the index
//of the first line of the block in the whole input, for error messages.
func parseXYZBlock(block []string, offset int, charge, multiplicity *int) (*Structure, error) {
	var ids Identifiers
	var comments []any
	var fileCharge, fileMult *int
	tokens, err := commentTokens(block[1], offset+2)
	if err != nil {
		return nil, err
	}
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, xyzIDPrefix):
			key, val, ok := strings.Cut(strings.TrimPrefix(tok, xyzIDPrefix), "=")
			if !ok {
				return nil, malformed(offset+2, "token %q has no value", tok)
			}
			if strings.HasPrefix(val, `"`) {
				if val, err = strconv.Unquote(val); err != nil {
					return nil, malformed(offset+2, "token %q: invalid quoted value", tok)
				}
			}
			f, known := identifierField(&ids, key)
			if !known {
				return nil, invalid("Identifiers", key, "invalid identifier")
			}
			*f = val
		case strings.HasPrefix(tok, xyzPrefix):
			key, val, ok := strings.Cut(strings.TrimPrefix(tok, xyzPrefix), "=")
			if !ok {
				return nil, malformed(offset+2, "token %q has no value", tok)
			}
			v, err := strconv.Atoi(val)
			if err != nil {
				return nil, malformed(offset+2, "token %q: %q is not an integer", tok, val)
			}
			switch key {
			case "charge":
				fileCharge = &v
			case "multiplicity":
				fileMult = &v
			default:
				return nil, malformed(offset+2, "unknown token %q", tok)
			}
		default:
			comments = append(comments, tok)
		}
	}
	if charge != nil && fileCharge != nil {
		return nil, malformed(offset+2, "charge given both in the comment line and as an argument")
	}
	if multiplicity != nil && fileMult != nil {
		return nil, malformed(offset+2, "multiplicity given both in the comment line and as an argument")
	}
	if fileCharge != nil {
		charge = fileCharge
	}
	if fileMult != nil {
		multiplicity = fileMult
	}

	n := len(block) - 2
	symbols := make([]string, 0, n)
	geom := make([]float64, 0, 3*n)
	for i, line := range block[2:] {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, malformed(offset+i+3, "expected a symbol and 3 coordinates, got %d fields", len(fields))
		}
		symbols = append(symbols, fields[0])
		for _, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, malformed(offset+i+3, "invalid coordinate %q", f)
			}
			geom = append(geom, x/BohrToAngstrom)
		}
	}

	opts := []StructureOption{WithIdentifiers(ids)}
	if charge != nil {
		opts = append(opts, WithCharge(*charge))
	}
	if multiplicity != nil {
		opts = append(opts, WithMultiplicity(*multiplicity))
	}
	if len(comments) > 0 {
		opts = append(opts, WithStructureExtras(map[string]any{XYZCommentsKey: comments}))
	}
	return NewStructure(symbols, geom, opts...)
}
