package warehouse

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidWriteMode = errors.New("invalid write mode")

// Dataset names used by the pipelines.
const (
	DatasetEvents  = "Event_Data"
	DatasetLookups = "Lookup_Tables"
	DatasetStats   = "Stats"
)

type TableRef struct {
	Dataset string
	Name    string
}

func (r TableRef) String() string {
	return r.Dataset + "." + r.Name
}

func (r TableRef) Validate() error {
	if strings.TrimSpace(r.Dataset) == "" || strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("table ref %q: dataset and name are required", r.String())
	}
	return nil
}

type WriteMode string

const (
	WriteAppend   WriteMode = "APPEND"
	WriteTruncate WriteMode = "WRITE_TRUNCATE"
)

func ParseWriteMode(v string) (WriteMode, error) {
	switch mode := WriteMode(strings.ToUpper(strings.TrimSpace(v))); mode {
	case WriteAppend, WriteTruncate:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWriteMode, v)
	}
}

// WriteResult reports what a write did. Skipped is set when an append found
// no new rows.
type WriteResult struct {
	Ref       TableRef
	Mode      WriteMode
	NewRows   int
	TotalRows int
	Skipped   bool
}
