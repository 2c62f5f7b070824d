/*
Package orm provides an easy to use db wrapper.

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of object, addressed by a primary key.
Do not use reflection magic where compile-time static code does the job,
even if it is a bit of boilerplate.
*/
package orm

import (
	"github.com/galleon-dao/galleon"
)

// Model is implemented by any entity that can be stored in a Bucket.
type Model interface {
	galleon.Persistent

	// Validate returns an error if the model is not in a valid state to
	// save to the db (eg. field missing, out of range, ...).
	Validate() error
}

// Object is what is stored in the bucket.
// Key is joined with the bucket prefix to form the full db key.
type Object interface {
	Keyed
	Cloneable

	Validate() error
	Value() galleon.Persistent
}

// Keyed is anything that can identify itself.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable will create a new empty object of the same type that loaded
// data can be parsed into.
type Cloneable interface {
	Clone() Object
}

// Reader defines an interface that allows reading objects from the db.
type Reader interface {
	Get(db galleon.ReadOnlyKVStore, key []byte) (Object, error)
}
