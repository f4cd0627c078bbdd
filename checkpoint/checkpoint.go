// Copyright 2025 Zintix Labs
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

// Package checkpoint 以 badger 保存長時間搜尋中已完成的 shard 與其結果，
// 中斷後以同一個 run（搜尋指紋）重跑時可略過已完成的 shard。
//
// key 配置：
//
//	run/<run>/shard/<shard 十進位補零> -> 該 shard 保留的 seeds（big-endian int64 串接）
package checkpoint

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/zintix-labs/seedlab/errs"
)

// Store 為 checkpoint 存放處，可同時供多個 goroutine 使用。
type Store struct {
	db *badger.DB
}

// Open 開啟（必要時建立）dir 下的 checkpoint 資料庫。
func Open(dir string, log *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errs.Malformedf("checkpoint dir required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errs.Wrap(err, "create checkpoint dir")
	}
	return open(badger.DefaultOptions(dir).WithSyncWrites(true), log)
}

// OpenInMemory 開啟記憶體內的 checkpoint（測試或不需續跑時使用）。
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), nil)
}

func open(opts badger.Options, log *slog.Logger) (*Store, error) {
	if log != nil {
		opts = opts.WithLogger(badgerLogger{log: log})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errs.Wrap(err, "open checkpoint db")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errs.Wrap(err, "close checkpoint db")
	}
	return nil
}

func runPrefix(run string) []byte {
	return []byte("run/" + run + "/shard/")
}

func shardKey(run string, shard int) []byte {
	return fmt.Appendf(runPrefix(run), "%012d", shard)
}

// Done 回報 shard 是否已完成。
func (s *Store) Done(run string, shard int) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(shardKey(run, shard))
		switch {
		case err == nil:
			found = true
			return nil
		case err == badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, errs.Wrap(err, "read checkpoint")
	}
	return found, nil
}

// Mark 記錄 shard 已完成及其結果；重複標記會覆寫。
func (s *Store) Mark(run string, shard int, seeds []int64) error {
	val := make([]byte, 8*len(seeds))
	for i, v := range seeds {
		binary.BigEndian.PutUint64(val[8*i:], uint64(v))
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(shardKey(run, shard), val)
	})
	if err != nil {
		return errs.Wrap(err, "write checkpoint")
	}
	return nil
}

// each 依 shard 順序走訪 run 的所有紀錄。
func (s *Store) each(run string, fn func(shard int, val []byte) error) error {
	prefix := runPrefix(run)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id, err := strconv.Atoi(strings.TrimPrefix(string(item.Key()), string(prefix)))
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(id, val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Wrap(err, "scan checkpoint")
	}
	return nil
}

// Shards 回傳已完成的 shard（升冪）。
func (s *Store) Shards(run string) ([]int, error) {
	var out []int
	err := s.each(run, func(shard int, _ []byte) error {
		out = append(out, shard)
		return nil
	})
	return out, err
}

// Results 合併 run 所有已完成 shard 的結果（升冪、去重）。
func (s *Store) Results(run string) ([]int64, error) {
	var out []int64
	err := s.each(run, func(_ int, val []byte) error {
		if len(val)%8 != 0 {
			return errs.Internalf("corrupt checkpoint value (%d bytes)", len(val))
		}
		for i := 0; i < len(val); i += 8 {
			out = append(out, int64(binary.BigEndian.Uint64(val[i:])))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Clear 刪除 run 的所有紀錄。
func (s *Store) Clear(run string) error {
	if err := s.db.DropPrefix(runPrefix(run)); err != nil {
		return errs.Wrap(err, "clear checkpoint")
	}
	return nil
}

// badgerLogger 把 badger 的內部訊息導向 slog。
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(f string, a ...any)   { l.log.Error(strings.TrimSpace(fmt.Sprintf(f, a...))) }
func (l badgerLogger) Warningf(f string, a ...any) { l.log.Warn(strings.TrimSpace(fmt.Sprintf(f, a...))) }
func (l badgerLogger) Infof(f string, a ...any)    { l.log.Debug(strings.TrimSpace(fmt.Sprintf(f, a...))) }
func (l badgerLogger) Debugf(f string, a ...any)   { l.log.Debug(strings.TrimSpace(fmt.Sprintf(f, a...))) }
