package storage

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/tokenfee/feemap/pkg/core/storage/dbconfig"
)

// KeyPrefix constants.
const (
	// STFeeMap is used for fee map entries, the rest of the key is a
	// big-endian token ID.
	STFeeMap KeyPrefix = 0x10
	// SYSVersion is used to store the storage schema version.
	SYSVersion KeyPrefix = 0xf0
)

// SeekRange represents options for Store.Seek operation.
type SeekRange struct {
	// Prefix denotes the Seek's lookup key.
	Prefix []byte
	// Start denotes value appended to the Prefix to start Seek from.
	// Seeking starting from some key includes this key to the result;
	// if no matching key was found then next suitable key is picked up.
	// Empty Start means seeking through all keys in the DB with matching
	// Prefix.
	Start []byte
}

// KeyValue represents a key-value pair.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is the underlying KV backend for the node data.
	Store interface {
		Get([]byte) ([]byte, error)
		// PutChangeSet atomically applies the given changes to the Store.
		// A nil value deletes the key.
		PutChangeSet(puts map[string][]byte) error
		// Seek calls f for every key-value pair in the given range in
		// ascending key order until f returns false. Key and value slices
		// are only valid until the next call to f and must not be modified.
		Seek(rng SeekRange, f func(k, v []byte) bool)
		Close() error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

func seekRangeToPrefixes(sr SeekRange) *util.Range {
	var (
		rang  = util.BytesPrefix(sr.Prefix)
		start = make([]byte, len(sr.Prefix)+len(sr.Start))
	)
	copy(start, sr.Prefix)
	copy(start[len(sr.Prefix):], sr.Start)
	rang.Start = start
	return rang
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB:
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
