package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/planboard/pkg/errors"
)

// Supported item file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatCSV  = "csv"
)

// FileSource reads items from a JSON, YAML, TOML or CSV file. The file is
// re-read on every Load, so edits are picked up without a restart.
type FileSource struct {
	Path   string
	Format string // empty means detect from the extension
}

// NewFileSource returns a FileSource for path.
func NewFileSource(path string) (*FileSource, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{Path: path, Format: format}, nil
}

// DetectFormat maps a file extension to a format name.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported item file %s (want .json, .yaml, .yml, .toml or .csv)", filepath.Base(path))
}

// Name implements Source.
func (s *FileSource) Name() string { return "file:" + s.Path }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "item file %s not found", s.Path)
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "read %s", s.Path)
	}

	format := s.Format
	if format == "" {
		if format, err = DetectFormat(s.Path); err != nil {
			return Snapshot{}, err
		}
	}
	records, err := Decode(data, format)
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", s.Path)
	}
	return snapshot(records)
}

// Decode parses an item document in the given format.
// JSON accepts either {"items": [...]} or a bare array.
func Decode(data []byte, format string) ([]Record, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			var records []Record
			if err := json.Unmarshal(trimmed, &records); err != nil {
				return nil, err
			}
			return records, nil
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatCSV:
		return decodeCSV(bytes.NewReader(data))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown item format %q", format)
	}
	return doc.Items, nil
}

// Encode writes records as a document in the given format.
func Encode(w io.Writer, records []Record, format string) error {
	doc := Document{Items: records}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatCSV:
		return encodeCSV(w, records)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown item format %q", format)
}

var csvColumns = []string{"id", "start_date", "end_date", "color", "title", "subtitle", "status"}

// decodeCSV reads a CSV file whose header names the columns. Header names
// are matched case-insensitively; unknown columns are ignored.
func decodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"start_date", "end_date"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", required)
		}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		field := func(name string) string {
			if i, ok := index[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		records = append(records, Record{
			ID:        field("id"),
			StartDate: field("start_date"),
			EndDate:   field("end_date"),
			Color:     field("color"),
			Title:     field("title"),
			Subtitle:  field("subtitle"),
			Status:    field("status"),
		})
	}
}

func encodeCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ID, r.StartDate, r.EndDate, r.Color, r.Title, r.Subtitle, r.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
