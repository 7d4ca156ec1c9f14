package storage

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("pushcenter")

// ErrNilDB is returned when bolt store is created without database.
var ErrNilDB = errors.New("bolt database is nil")

// Open opens (creating if needed) a bolt database file.
func Open(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second * 3})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	return db, nil
}

type boltBlobs struct {
	db *bbolt.DB
}

// NewBolt returns a durable Store in a bolt database.
func NewBolt(db *bbolt.DB, logger zerolog.Logger) (Store, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating bucket")
	}

	return newStore(boltBlobs{db: db}, logger), nil
}

func (b boltBlobs) get(key string) (value []byte, err error) {
	err = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}

		// value is only valid inside of transaction.
		if v := bucket.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}

		return nil
	})

	return value, err
}

func (b boltBlobs) put(key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(key), value)
	})
}
