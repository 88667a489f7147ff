package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const journalFile = "journal.log"

const (
	opPut        = "put"
	opDelete     = "delete"
	opCheckpoint = "checkpoint"
)

// JournalEntry is one line of the append-only change log. Put entries carry
// the full record value so the journal doubles as an audit trail, delete
// entries carry the version that was removed, and checkpoint entries mark
// durable commit points.
type JournalEntry struct {
	Seq     int64           `json:"seq"`
	At      time.Time       `json:"at"`
	Op      string          `json:"op"`
	Kind    Kind            `json:"kind,omitempty"`
	Key     string          `json:"key,omitempty"`
	Version int64           `json:"version,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
}

func (s *Store) appendChange(op string, kind Kind, key string, env *envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	entry := JournalEntry{
		Seq:     s.seq,
		At:      s.now().UTC(),
		Op:      op,
		Kind:    kind,
		Key:     key,
		Version: env.Version,
		Value:   env.Value,
	}
	return s.appendLocked(&entry)
}

func (s *Store) checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	entry := JournalEntry{
		Seq: s.seq,
		At:  s.now().UTC(),
		Op:  opCheckpoint,
	}
	if err := s.appendLocked(&entry); err != nil {
		return err
	}
	if err := s.journal.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return nil
}

func (s *Store) appendLocked(entry *JournalEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := s.journal.Write(line); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// History returns every journaled change for (kind, key), oldest first.
func (s *Store) History(kind Kind, key string) ([]JournalEntry, error) {
	var history []JournalEntry
	err := scanJournal(s.journalPath(), func(entry *JournalEntry) {
		if entry.Op == opPut && entry.Kind == kind && entry.Key == key {
			history = append(history, *entry)
		}
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) journalPath() string {
	return s.journal.Name()
}

func lastJournalSeq(path string) (int64, error) {
	var seq int64
	err := scanJournal(path, func(entry *JournalEntry) {
		if entry.Seq > seq {
			seq = entry.Seq
		}
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	return seq, err
}

func scanJournal(path string, visit func(*JournalEntry)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		entry := new(JournalEntry)
		if err := json.Unmarshal(raw, entry); err != nil {
			// A torn final line from a crash is expected; anything
			// earlier is real corruption.
			if scanner.Scan() {
				return fmt.Errorf("corrupt journal at line %d: %w", line, err)
			}
			return nil
		}
		visit(entry)
	}
	return scanner.Err()
}
