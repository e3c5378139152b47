package instance

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	ColumnID   = "InstanceId"
	ColumnName = "InstanceName"
)

// ErrNotFound is returned when the instance list cannot be opened or lacks a
// required column. It is always fatal at startup.
var ErrNotFound = errors.New("instance list not found")

type Record struct {
	ID   string
	Name string
}

func ReadFile(filename string) ([]Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "open %s", filename)
		}
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return records, nil
}

// Read parses a CSV document whose header names the InstanceId and
// InstanceName columns. Column order is free and extra columns are ignored.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrNotFound, "empty instance list")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	idCol, nameCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColumnID:
			idCol = i
		case ColumnName:
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, errors.Wrapf(ErrNotFound, "header must contain %s and %s columns", ColumnID, ColumnName)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if isBlank(row) {
			continue
		}
		if idCol >= len(row) || nameCol >= len(row) {
			line, _ := cr.FieldPos(0)
			return nil, errors.Errorf("line %d: expected at least %d columns, got %d", line, maxInt(idCol, nameCol)+1, len(row))
		}

		records = append(records, Record{
			ID:   strings.TrimSpace(row[idCol]),
			Name: strings.TrimSpace(row[nameCol]),
		})
	}

	return records, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
