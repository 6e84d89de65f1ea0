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

//Package chemjson implements a line-oriented JSON protocol to pass qcio
//records between a Go program and other, independent programs, which can be
//written in any language able to read and write JSON, for instance via UNIX
//pipes.
//Each record is sent as a header line, which says what follows, and the
//record itself. Structures are sent one atom per line, so a reader can
//start working before the whole structure arrives.
//chemjson also implements the transmision of options, so an external
//program can transmit data and options for a job to a qcio program
//and later collect the results.
package chemjson
