// Package contrib holds helpers that sit beside cmislib rather than in it.
//
// [github.com/cmislib/cmislib.go/contrib/testenv] connects tests to a real
// CMIS repository described by the CMIS_* environment variables and
// provides a deterministic slog handler for example output.
//
// Nothing under contrib is covered by the compatibility promise of the
// core package.
package contrib
