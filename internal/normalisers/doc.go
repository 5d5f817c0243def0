// Package normalisers turns source files into paginated documents.
//
// Each format lives in its own subpackage (pdf, plaintext) and implements
// driven.Normaliser. The Registry picks the highest-priority normaliser for
// a file extension, and LoadFile reads a source path into a RawDocument.
package normalisers
