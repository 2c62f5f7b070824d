package store

import (
	"github.com/google/btree"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

// itemIter walks a snapshot of the overlay btree items within a range.
// Taking a snapshot is safe as writes within an iterated domain are
// forbidden by the KVStore contract.
type itemIter struct {
	items []btree.Item
	idx   int
}

func ascendBtree(bt *btree.BTree, start, end []byte) *itemIter {
	var items []btree.Item
	insert := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(bkey{end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}
	return &itemIter{items: items}
}

func (i *itemIter) peek() (btree.Item, bool) {
	if i.idx >= len(i.items) {
		return nil, false
	}
	return i.items[i.idx], true
}

func (i *itemIter) skip() {
	i.idx++
}

// combine merges overlay items with a parent iterator, taking into
// consideration overwrites and deletes recorded in the overlay.
func combine(overlay *itemIter, parent galleon.Iterator) galleon.Iterator {
	return &combinedIterator{overlay: overlay, parent: parent}
}

type combinedIterator struct {
	overlay *itemIter
	parent  galleon.Iterator

	parentKey   []byte
	parentValue []byte
	parentDone  bool
}

var _ galleon.Iterator = (*combinedIterator)(nil)

func (c *combinedIterator) Next() ([]byte, []byte, error) {
	for {
		if err := c.fillParent(); err != nil {
			return nil, nil, err
		}

		item, ok := c.overlay.peek()
		if !ok {
			// only the parent is left
			if c.parentDone {
				return nil, nil, errors.ErrIteratorDone
			}
			k, v := c.parentKey, c.parentValue
			c.parentKey = nil
			return k, v, nil
		}

		key := item.(keyer).Key()
		if !c.parentDone {
			switch cmp := compareKeys(key, c.parentKey); {
			case cmp > 0:
				// parent goes first
				k, v := c.parentKey, c.parentValue
				c.parentKey = nil
				return k, v, nil
			case cmp == 0:
				// overlay shadows the parent entry
				c.parentKey = nil
			}
		}

		c.overlay.skip()
		if set, ok := item.(setItem); ok {
			return key, set.value, nil
		}
		// a deletedItem hides the key, continue with the next one
	}
}

// fillParent buffers one key/value pair from the parent iterator so it can
// be compared against the overlay.
func (c *combinedIterator) fillParent() error {
	if c.parentDone || c.parentKey != nil {
		return nil
	}
	k, v, err := c.parent.Next()
	switch {
	case err == nil:
		c.parentKey, c.parentValue = k, v
	case errors.ErrIteratorDone.Is(err):
		c.parentDone = true
	default:
		return err
	}
	return nil
}

func (c *combinedIterator) Release() {
	c.parent.Release()
	c.overlay.idx = len(c.overlay.items)
}

func compareKeys(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}
