// Package batch applies the recoverer to many notebook files.
//
// [Discover] expands files and directories into a sorted list of notebook
// paths. A [Runner] recovers them in parallel, writes repaired notebooks
// (optionally keeping a backup of the original bytes or a debug dump of a
// failed repair) and aggregates per-file [Result] values into a [Report].
// One bad file never stops the batch. [Check] validates without repairing.
package batch
