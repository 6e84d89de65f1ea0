/*
 * doc.go, part of qcio.
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

/*Package qcio provides the records used to exchange the inputs and outputs of
quantum chemistry calculations, and to store them losslessly in several file formats.
qcio performs no calculation itself.



	**qcio records**


    Structure: the symbols, geometry (in Bohr), charge, multiplicity,
	identifiers and connectivity of a molecular system. Structures are read
	from and written to XYZ files, keeping the charge, the multiplicity and
	the identifiers in the comment line.

    Spec: what a program has to do. A FileSpec holds only files and command
	line arguments, a CalcSpec asks for a calculation (energy, gradient,
	hessian, optimization...) on a structure with a given model, and a
	CompositeCalcSpec drives a second program (the subprogram) with its own
	model and keywords.

    Data: what a program produced. EmptyData (files only), SinglePointData,
	OptimizationData (a trajectory of single points) and ConformerSearchData.

    Results: a Spec, the Data produced from it, the success flag, the logs
	and the provenance of the run. Results is generic on the Spec and
	Data types, and the Output interface covers every instantiation.

    Files: text or binary blobs, kept byte-exact through text-only formats
	with a "base64:" prefix.


Results can be built with their types stated (NewTyped) or from any Spec and
Data (New), in which case the concrete type is taken from a Registry. Files
read back through a Store, or archives unpacked with Unpack, give the same
concrete types they were saved from.

The formats are chosen by file extension: JSON, YAML, TOML, XYZ and the .qcb
Results archive, optionally compressed (gzip or zstd). Records written by
older versions are migrated on read, and the rewritten fields are logged.

Geometries, gradients and normal modes are stored as v3.Matrix values (Nx3,
based on gonum's Dense) and hessians as gonum mat.Dense.*/
package qcio
