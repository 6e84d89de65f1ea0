/*
 * conversion.go, part of qcio.
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

//This provides useful conversion factors and other constants.
//Values from NIST CODATA 2022 <https://physics.nist.gov/cuu/Constants/Table/allascii.txt>

//Conversions
const (
	BohrToAngstrom   = 0.529177210544 //https://physics.nist.gov/cgi-bin/cuu/Value?bohrrada0
	AngstromToBohr   = 1 / BohrToAngstrom
	HartreeToJoule   = 4.3597447222060e-18
	AvogadroNumber   = 6.02214076e23
	KcalToJoule      = 4.184e3
	HartreeToKcalMol = HartreeToJoule * AvogadroNumber / KcalToJoule
)

//LengthUnit is a unit of distance.
type LengthUnit string

const (
	Bohr     LengthUnit = "bohr"
	Angstrom LengthUnit = "angstrom"
)
