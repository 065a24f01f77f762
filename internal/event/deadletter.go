package event

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// DeadLetterSchemaVersion is bumped whenever DeadLetterEntry changes shape
const DeadLetterSchemaVersion = "2.0"

// DeadLetterWriter appends events that exhausted their retries to a JSONL
// file, one entry per line.
type DeadLetterWriter struct {
	file *os.File
	mu   sync.Mutex
}

// DeadLetterEntry is one line of the dead-letter file
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CharacterID   string    `json:"character_id,omitempty"`
	Event         Event     `json:"event"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
}

// NewDeadLetterWriter opens path for appending, creating its directory
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, DeadLetterDirPermissions); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, err
	}
	return &DeadLetterWriter{file: f}, nil
}

// Write appends a failed event
func (dlw *DeadLetterWriter) Write(event Event, attempts int, lastError error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Timestamp:     time.Now().UTC(),
		Event:         event,
		Attempts:      attempts,
	}
	if id := event.CharacterID(); id != nil {
		entry.CharacterID = *id
	}
	if lastError != nil {
		entry.LastError = lastError.Error()
	}

	logger.FromContext(context.Background()).Warn(LogMsgEventDeadLettered,
		"event_type", event.Type,
		"character_id", entry.CharacterID,
		"attempts", attempts)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	dlw.mu.Lock()
	defer dlw.mu.Unlock()
	_, err = dlw.file.Write(append(data, '\n'))
	return err
}

// Close closes the dead-letter file
func (dlw *DeadLetterWriter) Close() error {
	return dlw.file.Close()
}

// ReadDeadLetters decodes every entry from a dead-letter stream. Blank lines
// are skipped; a malformed line stops the read with its line number.
func ReadDeadLetters(r io.Reader) ([]DeadLetterEntry, error) {
	var entries []DeadLetterEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxDeadLetterLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e DeadLetterEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return entries, fmt.Errorf("dead-letter line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
