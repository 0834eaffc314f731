package badgerdb

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/timshannon/badgerhold/v4"
)

const maxRetries = 10

type txKey struct{}

func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
					if logger != nil {
						logger.Errorf("%s", err)
					}
				}
			}
		}()
	}

	return db, nil
}

// withTx runs fn with the transaction carried by ctx, if any. Otherwise fn
// runs in a new read-write transaction that is retried on conflicts.
func withTx(
	ctx context.Context, store *badgerhold.Store, fn func(tx *badger.Txn) error,
) error {
	if tx, ok := ctx.Value(txKey{}).(*badger.Txn); ok {
		return fn(tx)
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		err = func() error {
			tx := store.Badger().NewTransaction(true)
			defer tx.Discard()

			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit()
		}()
		if errors.Is(err, badger.ErrConflict) {
			time.Sleep(time.Duration(10+rand.Intn(90)) * time.Millisecond)
			continue
		}
		return err
	}
	return err
}
