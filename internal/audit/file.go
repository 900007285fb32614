package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileWriter appends hash-chained JSON events to a log file, one event per
// line. On open it scans the existing log so the chain continues across
// process restarts.
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	lastHash string
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter opens (or creates) an audit log file for appending.
func NewFileWriter(path string) (*FileWriter, error) {
	last, err := lastHashInLog(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &FileWriter{file: f, path: path, lastHash: last}, nil
}

// Path returns the log file path.
func (w *FileWriter) Path() string { return w.path }

func (w *FileWriter) Write(event *Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid audit event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	event.HashPrev = w.lastHash
	hash, err := eventHash(event)
	if err != nil {
		return err
	}
	event.Hash = hash

	line, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}

	w.lastHash = event.Hash
	return nil
}

func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *FileWriter) LastHash() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHash
}

// VerifyChain checks the hash chain of an audit log file. It returns the
// number of valid events before the first broken line, and an error naming
// the line whose HashPrev or Hash does not match.
func VerifyChain(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	prev := GenesisHash
	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return count, fmt.Errorf("line %d: malformed audit event: %w", count+1, err)
		}
		if event.HashPrev != prev {
			return count, fmt.Errorf("line %d: hash chain broken: hash_prev = %s, want %s", count+1, event.HashPrev, prev)
		}
		want, err := eventHash(&event)
		if err != nil {
			return count, fmt.Errorf("line %d: %w", count+1, err)
		}
		if event.Hash != want {
			return count, fmt.Errorf("line %d: event hash mismatch (tampering?)", count+1)
		}
		prev = event.Hash
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read audit log: %w", err)
	}
	return count, nil
}

func eventHash(event *Event) (string, error) {
	canonical, err := event.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to hash audit event: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return HashPrefix + hex.EncodeToString(sum[:]), nil
}

// lastHashInLog returns the Hash of the final event in an existing log, or
// GenesisHash for a missing or empty log.
func lastHashInLog(path string) (string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return GenesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	last := GenesisHash
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return "", fmt.Errorf("corrupt audit log %s: %w", path, err)
		}
		last = event.Hash
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read audit log: %w", err)
	}
	return last, nil
}
