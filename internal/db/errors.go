package db

import "errors"

// Sentinel errors for engine operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants name the engine command for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpHMGet       = "HMGET"
	OpDel         = "DEL"
	OpPing        = "PING"

	OpBleveOpen     = "BLEVE.OPEN"
	OpBleveSearch   = "BLEVE.SEARCH"
	OpBleveBatch    = "BLEVE.BATCH"
	OpBleveDocument = "BLEVE.DOCUMENT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
