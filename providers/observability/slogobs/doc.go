// Package slogobs implements observability.Provider with log/slog.
//
// Output is written by [Handler] in one of three formats (compact, pretty,
// json) selected with [WithFormat] or the NBREPAIR_LOG_FORMAT variable. Level
// names are colored with fatih/color when the output is a terminal.
package slogobs
