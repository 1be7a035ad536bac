// Package analytics records per-repository clone outcomes in a JSON ledger
// so successive runs can be compared.
package analytics

import (
	"encoding/json"
	"fmt"
	"os"
)

// Outcome is the result of one clone attempt sequence. Failed outcomes
// carry only the name, the error text and the descriptor flags; successful
// outcomes carry the full timing and popularity fields.
type Outcome struct {
	Name           string  `json:"name"`
	LastRipped     string  `json:"last_ripped"`
	Stars          int     `json:"stars"`
	Forks          int     `json:"forks"`
	CloneTime      float64 `json:"clone_time"`
	Success        bool    `json:"success"`
	IsFork         bool    `json:"is_fork"`
	OriginalCloned bool    `json:"original_cloned"`
	LFSSupported   bool    `json:"lfs_supported"`
	Error          string  `json:"error,omitempty"`
}

// MarshalJSON writes failed outcomes without the timing and popularity
// fields: a failure record carries only the name, the error text and the
// descriptor flags. Successful outcomes always carry every field, zero
// stars included.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.Success {
		return json.Marshal(struct {
			Name           string `json:"name"`
			Success        bool   `json:"success"`
			IsFork         bool   `json:"is_fork"`
			OriginalCloned bool   `json:"original_cloned"`
			LFSSupported   bool   `json:"lfs_supported"`
			Error          string `json:"error"`
		}{o.Name, o.Success, o.IsFork, o.OriginalCloned, o.LFSSupported, o.Error})
	}

	type record Outcome // drops the method, keeps the tags
	return json.Marshal(record(o))
}

// Key returns the ledger key for this outcome. Upstream-of-a-fork clones
// get an "_original" suffix so a fork and its origin never overwrite each
// other's entry when both run in the same batch.
func (o Outcome) Key() string {
	if o.OriginalCloned {
		return o.Name + "_original"
	}
	return o.Name
}

// Ledger maps repository names to their most recent clone outcome. It is
// loaded once before a run, mutated only by the orchestrator's collecting
// loop, and rewritten in full when the run finishes.
type Ledger struct {
	path    string
	entries map[string]Outcome
}

// FileName returns the deterministic ledger file name for a user.
func FileName(username string) string {
	return fmt.Sprintf("%s_repo_analytics.json", username)
}

// Load reads a ledger from disk. A missing file yields an empty ledger.
func Load(path string) (*Ledger, error) {
	l := &Ledger{
		path:    path,
		entries: make(map[string]Outcome),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read analytics file: %w", err)
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("failed to parse analytics file: %w", err)
	}

	return l, nil
}

// Record merges an outcome into the ledger, overwriting any earlier entry
// for the same key.
func (l *Ledger) Record(o Outcome) {
	l.entries[o.Key()] = o
}

// Get returns the outcome stored under key.
func (l *Ledger) Get(key string) (Outcome, bool) {
	o, ok := l.entries[key]
	return o, ok
}

// Len returns the number of recorded outcomes.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Path returns the file the ledger was loaded from and will be saved to.
func (l *Ledger) Path() string {
	return l.path
}

// Save rewrites the ledger file in full.
func (l *Ledger) Save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analytics: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write analytics file: %w", err)
	}

	return nil
}
