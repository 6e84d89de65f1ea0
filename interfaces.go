/*
 * interfaces.go, part of qcio.
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

//Filer is implemented by every record that carries file blobs.
type Filer interface {
	//FileMap returns the files of the record. The map is the record's own,
	//not a copy.
	FileMap() Files
}

//Dumper is implemented by every persistable record. Dump returns a plain
//nested mapping containing only interchange-safe primitives (strings,
//numbers, booleans, slices and maps of those), which is what every
//serialization format encodes.
type Dumper interface {
	Dump(opts DumpOptions) map[string]any
}

//XYZer is implemented by the records that can be written as plain-text
//XYZ (a Structure, or the trajectory of an optimization).
type XYZer interface {
	ToXYZ(precision int) string
}

//Errors

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Adds the name of the function (and optionally extra info, as "Function: info") passing the error along. If passed an empty string, it just returns the current value.
	Critical() bool
}
