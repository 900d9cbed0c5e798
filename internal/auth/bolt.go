package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mmeshcher/receiptly/internal/model"
)

var (
	sessionBucket   = []byte("session")
	onboardedBucket = []byte("onboarded")
	sessionKey      = []byte("current")
)

type storedSession struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// BoltStore хранит сессию в файле BoltDB.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore открывает или создаёт файл сессии.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sessionBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(onboardedBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Load читает сохранённую сессию. Без записи возвращает Anonymous.
func (b *BoltStore) Load() (Session, error) {
	var res Session = Anonymous{}

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get(sessionKey)
		if data == nil {
			return nil
		}

		var stored storedSession
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("unmarshaling session: %w", err)
		}
		if stored.Token == "" || stored.User.ID == "" {
			return nil
		}

		res = Authenticated{
			User:      stored.User,
			Token:     stored.Token,
			Onboarded: string(tx.Bucket(onboardedBucket).Get([]byte(stored.User.ID))) == "true",
		}
		return nil
	})
	if err != nil {
		return Anonymous{}, err
	}

	return res, nil
}

// Save сохраняет сессию и признак онбординга пользователя.
func (b *BoltStore) Save(s Authenticated) error {
	data, err := json.Marshal(storedSession{User: s.User, Token: s.Token})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(sessionBucket).Put(sessionKey, data); err != nil {
			return err
		}
		return tx.Bucket(onboardedBucket).Put([]byte(s.User.ID), []byte(fmt.Sprint(s.Onboarded)))
	})
}

// Clear удаляет сессию. Признак онбординга сохраняется.
func (b *BoltStore) Clear() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(sessionKey)
	})
}

// Onboarded сообщает, проходил ли пользователь онбординг.
func (b *BoltStore) Onboarded(userID string) (bool, error) {
	var res bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		res = string(tx.Bucket(onboardedBucket).Get([]byte(userID))) == "true"
		return nil
	})
	return res, err
}

// Close закрывает файл сессии.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
