// Package dataset loads the daily and hourly rental exports into immutable
// in-memory tables and memoizes them.
//
// A Loader reads one source (delimited text, or the first sheet of an .xlsx
// workbook) into a gota DataFrame and renames the raw export columns to the
// dashboard vocabulary in pkg/contracts/domain. Columns missing from the
// source are simply not renamed; the aggregation that needs them reports the
// absence.
//
// A Cache sits in front of the Loader. It is owned by the application and
// populated once at startup; every later lookup for the same (kind, source)
// returns the same *Table until the entry is invalidated or reloaded.
package dataset
