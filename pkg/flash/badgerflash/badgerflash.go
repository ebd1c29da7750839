// Package badgerflash implements a flash partition on top of a Badger
// database. Each programmed page is one key; pages without a key read as
// erased.
package badgerflash

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/dgraph-io/badger/v4"
	pkgerrors "github.com/pkg/errors"

	"github.com/tscal-dev/tscal/pkg/flash"
)

var _ flash.Driver = &Driver{}

// Driver is a flash.Driver over a Badger database.
type Driver struct {
	mu     sync.Mutex
	dir    string
	geo    flash.Geometry
	db     *badger.DB
	prefix []byte
}

// New returns a Driver storing pages under dir. The database is opened by Init.
func New(dir string, geo flash.Geometry) *Driver {
	return &Driver{
		dir: dir,
		geo: geo,
	}
}

// Init opens the database and checks the stored geometry of the region
// matches the configured one.
func (d *Driver) Init(r flash.Region) (flash.Geometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.geo.Validate(); err != nil {
		return flash.Geometry{}, err
	}

	opts := badger.DefaultOptions(d.dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return flash.Geometry{}, pkgerrors.Wrapf(err, "failed to open badger at %s", d.dir)
	}

	d.db = db
	d.prefix = []byte(r.Name + "/p/")

	if err := d.checkGeometry(r.Name); err != nil {
		_ = db.Close()
		d.db = nil
		return flash.Geometry{}, err
	}

	return d.geo, nil
}

func (d *Driver) checkGeometry(region string) error {
	key := []byte(region + "/meta/geometry")

	return d.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			b, err := json.Marshal(d.geo)
			if err != nil {
				return err
			}
			return txn.Set(key, b)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			var stored flash.Geometry
			if err := json.Unmarshal(val, &stored); err != nil {
				return pkgerrors.Wrapf(err, "corrupt geometry for region %q", region)
			}
			if stored != d.geo {
				return pkgerrors.Wrapf(flash.ErrBadGeometry, "region %q was created with %d pages of %d bytes",
					region, stored.PageCount, stored.PageSize)
			}
			return nil
		})
	})
}

// Erase removes every page of the region.
func (d *Driver) Erase() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return flash.ErrNotInitialized
	}

	return d.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = d.prefix

		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Program ANDs buf into page.
func (d *Driver) Program(page int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return flash.ErrNotInitialized
	}
	if page < 0 || page >= d.geo.PageCount {
		return flash.ErrOutOfRange
	}

	key := d.pageKey(page)
	return d.db.Update(func(txn *badger.Txn) error {
		cur, err := d.load(txn, key)
		if err != nil {
			return err
		}
		flash.ProgramBits(cur, buf)
		return txn.Set(key, cur)
	})
}

// Read copies page into buf.
func (d *Driver) Read(page int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return flash.ErrNotInitialized
	}
	if page < 0 || page >= d.geo.PageCount {
		return flash.ErrOutOfRange
	}

	return d.db.View(func(txn *badger.Txn) error {
		cur, err := d.load(txn, d.pageKey(page))
		if err != nil {
			return err
		}
		copy(buf, cur)
		return nil
	})
}

// Close closes the database.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func (d *Driver) load(txn *badger.Txn, key []byte) ([]byte, error) {
	page := make([]byte, d.geo.PageSize)
	flash.Fill(page, flash.ErasedByte)

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return page, nil
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		copy(page, val)
		return nil
	})
	return page, err
}

func (d *Driver) pageKey(page int) []byte {
	key := make([]byte, len(d.prefix)+8)
	copy(key, d.prefix)
	binary.BigEndian.PutUint64(key[len(d.prefix):], uint64(page))
	return key
}
