// Package errs defines the sentinel errors returned by canopy packages.
//
// Errors are returned bare or wrapped with additional context using
// fmt.Errorf("%w: ..."), so callers should match them with errors.Is.
package errs

import "errors"

// Tree decoding and scoring errors.
var (
	// ErrTruncatedRecord indicates a read or skip past the end of a tree buffer.
	ErrTruncatedRecord = errors.New("truncated tree record")
	// ErrUnsupportedSplitEncoding indicates a reserved split kind in a node type byte.
	ErrUnsupportedSplitEncoding = errors.New("unsupported split encoding")
	// ErrInvalidNodeType indicates a node type byte with an undefined child address mode.
	ErrInvalidNodeType = errors.New("invalid node type")
	// ErrColumnOutOfRange indicates a split column that the input row does not have.
	ErrColumnOutOfRange = errors.New("split column out of row range")
	// ErrMalformedPath indicates a packed decision path without a terminal marker.
	ErrMalformedPath = errors.New("malformed decision path")
)

// Ensemble and graph errors.
var (
	ErrInvalidTreeIndex      = errors.New("invalid tree index")
	ErrInvalidEnsembleShape  = errors.New("invalid ensemble shape")
	ErrInvalidOutputSize     = errors.New("invalid output size")
	ErrUnknownColumn         = errors.New("unknown column")
	ErrMissingDomain         = errors.New("categorical split on column without domain")
	ErrEmptyTree             = errors.New("empty tree")
	ErrInvalidNumClasses     = errors.New("invalid number of classes")
	ErrInvalidResponseColumn = errors.New("invalid response column")
)

// Forest container errors.
var (
	ErrInvalidHeaderSize         = errors.New("invalid header size")
	ErrInvalidHeaderFlags        = errors.New("invalid header flags")
	ErrInvalidTreeIndexOffset    = errors.New("invalid tree index offset")
	ErrInvalidTreePayloadOffset  = errors.New("invalid tree payload offset")
	ErrInvalidNamesPayload       = errors.New("invalid names payload")
	ErrInvalidNamesCount         = errors.New("invalid names count")
	ErrInvalidColumnName         = errors.New("invalid column name")
	ErrDuplicateColumn           = errors.New("duplicate column")
	ErrHashCollision             = errors.New("column name hash collision")
	ErrHashMismatch              = errors.New("column name hash mismatch")
	ErrChecksumMismatch          = errors.New("tree payload checksum mismatch")
	ErrMissingTree               = errors.New("missing tree")
	ErrTooManyColumns            = errors.New("too many columns")
	ErrInvalidDomainKind         = errors.New("invalid column domain kind")
	ErrEncoderAlreadyFinished    = errors.New("encoder already finished")
	ErrInvalidCompressionPayload = errors.New("invalid compressed tree payload")
)
