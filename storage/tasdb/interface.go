package tasdb

import "github.com/syndtr/goleveldb/leveldb"

const IdealBatchSize = 100 * 1024

// ErrNotFound is returned by Get for a missing key, whatever the backend
var ErrNotFound = leveldb.ErrNotFound

type Putter interface {
	Put(key []byte, value []byte) error
}

type Deleter interface {
	Delete(key []byte) error
}

type Database interface {
	Putter
	Deleter
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Close()
	NewBatch() Batch
}

// Batch collects writes that reach the database atomically on Write
type Batch interface {
	Putter
	Deleter
	ValueSize() int // amount of data in the batch
	Write() error
	// Reset resets the batch for reuse
	Reset()
}
