package galleon

// ReadOnlyKVStore is a simplified interface for read access to a KVStore.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) (bool, error)

	// Iterator over a domain of keys in ascending order. End is exclusive.
	// Start must be less than end, or the Iterator is invalid.
	// CONTRACT: No writes may happen within a domain while an iterator
	// exists over it.
	Iterator(start, end []byte) (Iterator, error)
}

// KVStore is a simple interface to get/set data.
//
// For simplicity, we require all backing stores to implement this
// interface. They may implement other methods as well, but at least these
// are required.
type KVStore interface {
	ReadOnlyKVStore

	// Set sets the key. Panics on nil key.
	Set(key, value []byte) error

	// Delete deletes the key. Panics on nil key.
	Delete(key []byte) error
}

// Iterator allows us to access a set of items within a range of keys.
//
//	var itr Iterator = ...
//	defer itr.Release()
//
//	for k, v, err := itr.Next(); err == nil; k, v, err = itr.Next() {
//	    // ...
//	}
type Iterator interface {
	// Next moves the iterator to the next sequential key in the database,
	// as defined by order of iteration. It returns ErrIteratorDone when
	// the end of the range is reached.
	Next() (key, value []byte, err error)

	// Release frees all resources held by the iterator. It is safe to
	// call multiple times.
	Release()
}

// CacheableKVStore is a KVStore that supports CacheWrap.
//
// CacheWrap groups temporary writes that may be committed or discarded
// together, like a database SAVEPOINT / ROLLBACK TO SAVEPOINT.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a scratch-pad of uncommitted writes over a backing store.
//
// At the end, call Write to apply the cached changes to the backing store,
// or Discard to drop them.
type KVCacheWrap interface {
	// CacheableKVStore allows using this cache recursively.
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}
