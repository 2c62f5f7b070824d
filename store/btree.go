// Package store provides the in-memory KVStore implementation backing all
// buckets. A btree keeps keys ordered for prefix scans and every call runs
// against a cheap cache wrap that can be written or discarded as a whole.
package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

// defaultBTreeDegree is a fine degree for the small working sets that a
// single call touches.
const defaultBTreeDegree = 2

// BTreeCacheWrap places a btree cache over a backing KVStore. All reads
// consult the btree first, all writes land in both the btree and a batch
// that can later be replayed onto the backing store.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	back  galleon.ReadOnlyKVStore
	batch *opsBatch
}

var _ galleon.KVCacheWrap = (*BTreeCacheWrap)(nil)

// MemStore returns a simple implementation useful for tests and for the
// relay daemon. There is no persistence here.
func MemStore() galleon.CacheableKVStore {
	e := emptyKVStore{}
	return newBTreeCacheWrap(e, newOpsBatch(e))
}

func newBTreeCacheWrap(back galleon.ReadOnlyKVStore, batch *opsBatch) *BTreeCacheWrap {
	return &BTreeCacheWrap{
		bt:    btree.New(defaultBTreeDegree),
		back:  back,
		batch: batch,
	}
}

// CacheWrap layers another btree on top of this one.
func (b *BTreeCacheWrap) CacheWrap() galleon.KVCacheWrap {
	return newBTreeCacheWrap(b, newOpsBatch(b))
}

// Write syncs with the underlying store and then cleans up.
func (b *BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard invalidates this CacheWrap and releases all data.
func (b *BTreeCacheWrap) Discard() {
	b.bt.Clear(false)
	b.batch.ops = nil
}

// Set writes to the btree and to the batch.
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	assertValidKey(key)
	b.bt.ReplaceOrInsert(setItem{bkey: bkey{key}, value: value})
	b.batch.Set(key, value)
	return nil
}

// Delete removes from the btree and records in the batch.
func (b *BTreeCacheWrap) Delete(key []byte) error {
	assertValidKey(key)
	b.bt.ReplaceOrInsert(deletedItem{bkey{key}})
	b.batch.Delete(key)
	return nil
}

// Get reads from the btree if there, else the backing store.
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	assertValidKey(key)
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

// Has reads from the btree if there, else the backing store.
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	assertValidKey(key)
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
// Combines results from the btree and the backing store.
func (b *BTreeCacheWrap) Iterator(start, end []byte) (galleon.Iterator, error) {
	parentIter, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return combine(ascendBtree(b.bt, start, end), parentIter), nil
}

func assertValidKey(key []byte) {
	if key == nil {
		panic("nil key is not allowed")
	}
}

//------------------- items to store in the btree -------------------

// bkey implements btree.Item ordering and may be used for queries or
// embedded in data to store.
type bkey struct {
	key []byte
}

var _ btree.Item = bkey{}

// Less returns true if this key is strictly less than the given item.
func (k bkey) Less(item btree.Item) bool {
	cmp := item.(keyer).Key()
	return bytes.Compare(k.key, cmp) < 0
}

// Key returns the raw bytes to compare items by.
func (k bkey) Key() []byte {
	return k.key
}

// we enforce all data in our btree implements keyer so we can compare
// nicely
type keyer interface {
	Key() []byte
}

type setItem struct {
	bkey
	value []byte
}

type deletedItem struct {
	bkey
}

//------------------- batch recording writes -------------------

// Op describes a single write operation on a store.
type Op struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Apply performs the operation on the given store.
func (o Op) Apply(out galleon.KVStore) error {
	if o.Delete {
		return out.Delete(o.Key)
	}
	return out.Set(o.Key, o.Value)
}

// opsBatch records writes in order so they can later be replayed onto the
// store that was shadowed by the cache wrap.
type opsBatch struct {
	out galleon.ReadOnlyKVStore
	ops []Op
}

func newOpsBatch(out galleon.ReadOnlyKVStore) *opsBatch {
	return &opsBatch{out: out}
}

func (b *opsBatch) Set(key, value []byte) {
	b.ops = append(b.ops, Op{Key: key, Value: value})
}

func (b *opsBatch) Delete(key []byte) {
	b.ops = append(b.ops, Op{Key: key, Delete: true})
}

func (b *opsBatch) Write() error {
	w, ok := b.out.(galleon.KVStore)
	if !ok {
		// the bottom of a MemStore stack is a sink, writes stay in
		// the btree that shadows it
		return nil
	}
	for _, op := range b.ops {
		if err := op.Apply(w); err != nil {
			return err
		}
	}
	return nil
}

//------------------- the bottom of a MemStore stack -------------------

// emptyKVStore never holds any data and swallows writes. A MemStore is a
// btree cache wrap that shadows it forever.
type emptyKVStore struct{}

var _ galleon.ReadOnlyKVStore = emptyKVStore{}

func (emptyKVStore) Get([]byte) ([]byte, error)  { return nil, nil }
func (emptyKVStore) Has([]byte) (bool, error)    { return false, nil }

func (emptyKVStore) Iterator(start, end []byte) (galleon.Iterator, error) {
	return doneIterator{}, nil
}

type doneIterator struct{}

func (doneIterator) Next() ([]byte, []byte, error) {
	return nil, nil, errors.ErrIteratorDone
}

func (doneIterator) Release() {}
