/*
 * archive.go, part of qcio.
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
)

//archiveVersion is written in every archive. Unpack refuses newer ones.
const archiveVersion = 1

//archive is the envelope stored, zstd-compressed, in a .qcb file.
type archive struct {
	Version int            `json:"version"`
	Pairing string         `json:"pairing"`
	Results map[string]any `json:"results"`
}

//Pack returns o as a compressed archive that records the name of its
//pairing, so Unpack can rebuild the same concrete Results with no hint
//from the caller.
func Pack(o Output) ([]byte, error) {
	if isNil(o) {
		return nil, invalid("Results", "", "can't pack a nil Results")
	}
	m, _ := canonical(o.Dump(FullDump)).(map[string]any)
	if err := representable(JSON, m, ""); err != nil {
		return nil, errDecorate(err, "Pack")
	}
	js, err := json.Marshal(archive{
		Version: archiveVersion,
		Pairing: o.Pairing().Name(),
		Results: m,
	})
	if err != nil {
		return nil, fmt.Errorf("qcio: packing %s: %w", o.Pairing().Name(), err)
	}
	return compress(Zstd, js)
}

//Unpack rebuilds a Results packed with Pack. The pairing name is resolved
//through R, or through DefaultRegistry() if R is nil. An unknown name gives
//an *UnregisteredTypeError.
func Unpack(R *Registry, data []byte) (Output, error) {
	if R == nil {
		R = DefaultRegistry()
	}
	js, err := decompress(Zstd, data)
	if err != nil {
		return nil, malformed(0, "not a qcio archive: %s", err)
	}
	var a archive
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	if err := dec.Decode(&a); err != nil {
		return nil, malformed(0, "not a qcio archive: %s", err)
	}
	if a.Version > archiveVersion {
		return nil, malformed(0, "archive version %d is newer than %d", a.Version, archiveVersion)
	}
	m, _ := canonical(a.Results).(map[string]any)
	o, err := R.ResultsFromNamedMap(a.Pairing, m)
	return o, errDecorate(err, "Unpack")
}
