// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v4"
)

var eventLogKeyPrefix = []byte("event/")

func eventLogKey(seq uint64) []byte {
	key := make([]byte, 0, len(eventLogKeyPrefix)+8)
	key = append(key, eventLogKeyPrefix...)
	key = binary.BigEndian.AppendUint64(key, seq)
	return key
}

// AppendEvent writes an event record to the append-only log in the blob
// store under the next sequence number. The write commits or rolls back
// with the rest of the transaction
func (d *Database) AppendEvent(txn *Txn, payload []byte) (uint64, error) {
	seq, err := d.AllocEventSeq(txn)
	if err != nil {
		return 0, err
	}
	if err := txn.Blob().Set(eventLogKey(seq), payload); err != nil {
		return 0, err
	}
	return seq, nil
}

// IterateEvents replays stored event records in sequence order, starting at
// fromSeq. The callback receives each record's sequence number and payload.
// Returning an error from the callback stops iteration
func (d *Database) IterateEvents(
	fromSeq uint64,
	fn func(seq uint64, payload []byte) error,
) error {
	return d.blob.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventLogKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(eventLogKey(fromSeq)); it.ValidForPrefix(eventLogKeyPrefix); it.Next() {
			item := it.Item()
			key := item.Key()
			seq := binary.BigEndian.Uint64(key[len(eventLogKeyPrefix):])
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(seq, payload); err != nil {
				return err
			}
		}
		return nil
	})
}
