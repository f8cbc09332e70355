package photo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	recordKeyPrefix = "photo:"
	indexKeyPrefix  = "idx:"
	indexSeparator  = 0x00
)

// BadgerRepository stores photo documents in an embedded badger DB.
//
// Each record lives as JSON under photo:<id>. Every indexed field additionally
// writes idx:<field>:<value>\x00<id> carrying a copy of the document, so
// RangeByField is a plain scan over sorted keys with no second lookup. Field
// values are stored as-is; range bounds compare against the raw bytes.
type BadgerRepository struct {
	db *badger.DB
}

// NewBadgerRepository wraps an open badger DB.
func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

// Create assigns the record id and upload timestamp and writes the document
// plus its two index entries in one transaction.
func (r *BadgerRepository) Create(ctx context.Context, p Photo) (Photo, error) {
	p.ID = uuid.New()
	p.UploadDate = time.Now().UTC()

	doc, err := json.Marshal(p)
	if err != nil {
		return Photo{}, fmt.Errorf("marshal photo record: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(p.ID), doc); err != nil {
			return err
		}
		if err := txn.Set(indexKey(FieldAnimalName, p.AnimalName, p.ID), doc); err != nil {
			return err
		}
		return txn.Set(indexKey(FieldSanctuaryName, p.SanctuaryName, p.ID), doc)
	})
	if err != nil {
		return Photo{}, fmt.Errorf("create photo record: %w", err)
	}
	return p, nil
}

// All returns every stored record in key order.
func (r *BadgerRepository) All(ctx context.Context) ([]Photo, error) {
	var photos []Photo
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p Photo
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			photos = append(photos, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan photo records: %w", err)
	}
	return photos, nil
}

// RangeByField returns records whose field value lies in [lower, upper],
// bounds inclusive, by seeking into the field's index keyspace and walking
// forward until the value part exceeds the upper bound.
func (r *BadgerRepository) RangeByField(ctx context.Context, field, lower, upper string) ([]Photo, error) {
	prefix := []byte(indexKeyPrefix + field + ":")
	start := append(append([]byte{}, prefix...), lower...)

	var photos []Photo
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(start); it.Valid(); it.Next() {
			item := it.Item()
			if string(indexedValue(item.Key(), prefix)) > upper {
				break
			}
			var p Photo
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			photos = append(photos, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("range %s records: %w", field, err)
	}
	return photos, nil
}

func recordKey(id uuid.UUID) []byte {
	return []byte(recordKeyPrefix + id.String())
}

func indexKey(field, value string, id uuid.UUID) []byte {
	idStr := id.String()
	key := make([]byte, 0, len(indexKeyPrefix)+len(field)+1+len(value)+1+len(idStr))
	key = append(key, indexKeyPrefix...)
	key = append(key, field...)
	key = append(key, ':')
	key = append(key, value...)
	key = append(key, indexSeparator)
	key = append(key, idStr...)
	return key
}

func indexedValue(key, prefix []byte) []byte {
	rest := key[len(prefix):]
	if i := bytes.IndexByte(rest, indexSeparator); i >= 0 {
		return rest[:i]
	}
	return rest
}
