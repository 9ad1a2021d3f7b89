package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Doc is a decoded trace file.
type Doc struct {
	Processes    int      `json:"processes"`
	ProcessNames []string `json:"process_names"`
	Events       []Record `json:"events"`
}

// Record is one raw trace entry before ingestion. On the wire it is a JSON
// array: [name, [processes...], [propositions...]] with an optional fourth
// element holding the vector clock.
type Record struct {
	Name         string
	Processes    []string
	Propositions []string
	VectorClock  []int
	HasClock     bool

	err error
}

// UnmarshalJSON never fails: a malformed record is a per-event problem, not
// a trace-file one, so the shape error is held back until Validate and the
// surrounding records still load.
func (r *Record) UnmarshalJSON(data []byte) error {
	r.err = r.decode(data)
	return nil
}

func (r *Record) decode(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("event record is not an array: %w", err)
	}
	if len(parts) < 3 || len(parts) > 4 {
		return fmt.Errorf("event record has %d elements, want 3 or 4", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Name); err != nil {
		return fmt.Errorf("event name: %w", err)
	}
	if err := json.Unmarshal(parts[1], &r.Processes); err != nil {
		return fmt.Errorf("event %q processes: %w", r.Name, err)
	}
	if err := json.Unmarshal(parts[2], &r.Propositions); err != nil {
		return fmt.Errorf("event %q propositions: %w", r.Name, err)
	}
	if len(parts) == 4 {
		if err := json.Unmarshal(parts[3], &r.VectorClock); err != nil {
			return fmt.Errorf("event %q vector clock: %w", r.Name, err)
		}
		r.HasClock = true
	}
	return nil
}

// Validate checks the shape of a record before ingestion. Failures here are
// per-event recoverable: the monitor logs and skips the record.
func (r *Record) Validate() error {
	if r.err != nil {
		return r.err
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("event has empty name")
	}
	if len(r.Processes) == 0 {
		return fmt.Errorf("event %q involves no processes", r.Name)
	}
	return nil
}

// ReadTrace loads and decodes a JSON trace file.
func ReadTrace(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode trace file %s: %w", path, err)
	}
	if doc.Processes < 1 {
		return nil, fmt.Errorf("trace file %s: processes must be >= 1, got %d", path, doc.Processes)
	}
	return &doc, nil
}

// Alias returns the display name for process slot i, falling back to the
// canonical "P<i+1>" when the trace file declares no alias.
func (d *Doc) Alias(i int) string {
	if i >= 0 && i < len(d.ProcessNames) && d.ProcessNames[i] != "" {
		return d.ProcessNames[i]
	}
	return ProcessKey(i)
}

// ReadProperty loads a property file and returns the formula text with
// comment lines (leading '#') and blank lines stripped.
func ReadProperty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read property file: %w", err)
	}
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("property file %s contains no formula", path)
	}
	return strings.Join(kept, " "), nil
}
