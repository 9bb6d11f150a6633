package elector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	electionLogFileName   = "elector.db"
	electionLogBucketName = "election_attempts"
)

// ElectionRecord is one completed coordinator attempt, kept purely for
// operator diagnostics. The Epoch Store itself owns no persisted state and
// is re-learned from peers on restart; this log changes nothing about
// that — it is written after the fact and consulted by nothing in the
// election path.
type ElectionRecord struct {
	RoundID   string       `json:"roundId"`
	Candidate MemberId     `json:"candidate"`
	Success   bool         `json:"success"`
	Epoch     PrimaryEpoch `json:"epoch,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ElectionLog is a bbolt-backed append-only audit trail, grounded on
// logs_persistant.go's BoltStore: one bucket, one JSON blob per round id.
type ElectionLog struct {
	db *bolt.DB
}

// NewElectionLog opens (creating if necessary) an election log database
// under dataDir.
func NewElectionLog(dataDir string) (*ElectionLog, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("elector: data dir required for election log")
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("fail to create directory %s: %w", dataDir, err)
	}

	db, err := bolt.Open(filepath.Join(dataDir, electionLogFileName), 0o600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(electionLogBucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &ElectionLog{db: db}, nil
}

// Record appends rec, keyed by its RoundID.
func (l *ElectionLog) Record(rec ElectionRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(electionLogBucketName))
		return bucket.Put([]byte(rec.RoundID), value)
	})
}

// Get fetches the record for roundID, if one was recorded.
func (l *ElectionLog) Get(roundID string) (ElectionRecord, error) {
	var rec ElectionRecord
	err := l.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(electionLogBucketName))
		value := bucket.Get([]byte(roundID))
		if value == nil {
			return fmt.Errorf("elector: no election record for round %q", roundID)
		}
		return json.Unmarshal(value, &rec)
	})
	return rec, err
}

// Close releases the underlying database file.
func (l *ElectionLog) Close() error {
	return l.db.Close()
}
