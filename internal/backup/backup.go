// Package backup reads and writes the JSON document used to export and
// import a whole store.
package backup

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

//go:embed schema.cue
var schemaSource string

// ValidationError lists every problem found in a backup document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid backup: " + strings.Join(e.Problems, "; ")
}

// Export converts a snapshot into a backup with every key present.
func Export(snap model.Snapshot) model.Backup {
	snap = snap.Clone()
	settings := snap.Settings
	return model.Backup{
		Settings:  &settings,
		Products:  snap.Products,
		Customers: snap.Customers,
		Invoices:  snap.Invoices,
		StockLogs: snap.StockLogs,
	}
}

// Marshal encodes b as indented JSON with a trailing newline.
func Marshal(b model.Backup) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse validates data against the backup schema and decodes it. Keys that
// are absent or null decode to nil and are left untouched on import. Any
// violation rejects the whole document.
func Parse(data []byte) (model.Backup, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return model.Backup{}, &ValidationError{Problems: []string{"document is empty"}}
	}
	if trimmed[0] != '{' {
		return model.Backup{}, &ValidationError{Problems: []string{"document must be a JSON object"}}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return model.Backup{}, &ValidationError{Problems: []string{err.Error()}}
	}
	for key, raw := range top {
		if string(bytes.TrimSpace(raw)) == "null" {
			delete(top, key)
		}
	}
	clean, err := json.Marshal(top)
	if err != nil {
		return model.Backup{}, fmt.Errorf("re-encode backup: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return model.Backup{}, fmt.Errorf("compile backup schema: %w", err)
	}
	doc := ctx.CompileBytes(clean, cue.Filename("backup.json"))
	if err := doc.Err(); err != nil {
		return model.Backup{}, &ValidationError{Problems: problems(err)}
	}

	v := schema.LookupPath(cue.ParsePath("#Backup")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return model.Backup{}, &ValidationError{Problems: problems(err)}
	}

	var b model.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return model.Backup{}, &ValidationError{Problems: []string{err.Error()}}
	}
	return b, nil
}

func problems(err error) []string {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		out = append(out, msg)
	}
	return out
}

// FileName returns the conventional export file name for t, e.g.
// backup_2024-03-09.json.
func FileName(t time.Time) string {
	return "backup_" + t.Format(time.DateOnly) + ".json"
}
