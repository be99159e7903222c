// Package utils provides small text helpers shared by the command line
// report: rune-safe truncation and windows around a column of a long line.
package utils
