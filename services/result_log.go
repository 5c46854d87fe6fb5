package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/mmu-ragent/ragserver/models"
)

// ResultLog appends static-evaluation responses to a JSONL file, one object
// per line.
type ResultLog struct {
	path string
	mu   sync.Mutex
}

// NewResultLog creates a result log writing to path.
func NewResultLog(path string) *ResultLog {
	return &ResultLog{path: path}
}

// Reset removes a leftover log from a previous run. Called once at startup.
func (l *ResultLog) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove old result log %s: %w", l.path, err)
	}
	log.Printf("SERVICE: Removed old '%s' file.", l.path)
	return nil
}

// Append writes one evaluation response as a JSON line.
func (l *ResultLog) Append(resp models.EvaluateResponse) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation response: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open result log %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write to result log %s: %w", l.path, err)
	}
	return nil
}
