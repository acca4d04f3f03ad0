// Package calib loads instrument calibration tables and turns them into
// wavelength-dependent reference curves.
//
// A table is two or three numeric columns (wavelength in nm, one or two
// value columns), optionally preceded by a header row. Tables come from CSV
// files, XLSX sheets, or in-memory records. A [Curve] built from a table
// interpolates piecewise-linearly between control points and extrapolates
// linearly beyond the table's domain using the nearest edge segment's slope;
// it never clamps.
package calib
