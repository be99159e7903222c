// Package notebook models Jupyter notebooks (nbformat 4) and provides the
// write path for recovered documents.
//
// [Marshal] and [Encode] serialize any value, typed or generic, with a
// configurable indent width and optional escaping of non-ASCII characters.
// [FromValue] gives a typed [Notebook] view of a generic value and [Stats]
// counts its cells. [Convert] builds a notebook from a Python script whose
// markdown is written in top-level triple-quoted blocks.
package notebook
