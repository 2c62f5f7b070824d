package orm

import (
	"fmt"
	"regexp"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a generic holder that stores data as well as references to
// the sequences scoped to it.
//
// This is a generic building block that should generally be embedded in a
// type-safe wrapper to ensure all data is the same type.
// Bucket is a prefixed subspace of the DB, proto defines the default
// Model, all elements of this bucket are of this type.
type Bucket struct {
	name   string
	prefix []byte
	proto  Cloneable
}

// NewBucket creates a bucket to store data.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix.
// We copy into a new array rather than use append, as we don't want
// consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get one element, nil if not found.
func (b Bucket) Get(db galleon.ReadOnlyKVStore, key []byte) (Object, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return b.Parse(key, bz)
}

// Parse given a key and value data (weakly typed bytes), return a fully
// parsed object.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	obj.SetKey(key)
	return obj, nil
}

// Save will write the object, if it validates.
func (b Bucket) Save(db galleon.KVStore, model Object) error {
	if err := model.Validate(); err != nil {
		return errors.Wrap(err, "invalid object")
	}

	bz, err := model.Value().Marshal()
	if err != nil {
		return err
	}
	return db.Set(b.DBKey(model.Key()), bz)
}

// Delete will remove the value at a key.
func (b Bucket) Delete(db galleon.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// Has checks if there is data at given key.
func (b Bucket) Has(db galleon.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Sequence returns a named sequence scoped to this bucket.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// PrefixIterator returns an iterator over all objects in this bucket, in
// ascending key order. Keys yielded have the bucket prefix stripped off.
func (b Bucket) PrefixIterator(db galleon.ReadOnlyKVStore) (galleon.Iterator, error) {
	start := b.DBKey(nil)
	end := prefixRangeEnd(start)
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return &prefixCutIterator{iter: it, cut: len(start)}, nil
}

// prefixRangeEnd returns the lowest key that is lexicographically greater
// than every key starting with the given prefix, or nil when no such key
// exists (prefix of all 0xff).
func prefixRangeEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type prefixCutIterator struct {
	iter galleon.Iterator
	cut  int
}

func (i *prefixCutIterator) Next() ([]byte, []byte, error) {
	key, value, err := i.iter.Next()
	if err != nil {
		return nil, nil, err
	}
	return key[i.cut:], value, nil
}

func (i *prefixCutIterator) Release() {
	i.iter.Release()
}
