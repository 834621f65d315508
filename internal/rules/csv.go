package rules

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// Column headers written to rule files.
const (
	HeaderItemName = "物品名称"
	HeaderCategory = "垃圾类型"
	HeaderReason   = "分类依据"
)

var headerAliases = map[string]string{
	HeaderItemName: HeaderItemName,
	"item_name":    HeaderItemName,
	HeaderCategory: HeaderCategory,
	"garbage_type": HeaderCategory,
	"category":     HeaderCategory,
	HeaderReason:   HeaderReason,
	"reason":       HeaderReason,
}

// CSVBackend stores rules in a UTF-8 CSV file with a header row.
type CSVBackend struct {
	Path string
}

// NewCSVBackend returns a backend for the file at path.
func NewCSVBackend(path string) *CSVBackend {
	return &CSVBackend{Path: path}
}

// Name identifies the backend in logs and errors.
func (c *CSVBackend) Name() string { return "csv:" + c.Path }

// Load parses the file. A missing file yields an error wrapping fs.ErrNotExist.
func (c *CSVBackend) Load(ctx context.Context) ([]Rule, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses rule rows from r. The first row is the header; Chinese and
// English column names are both accepted. Rows missing a field are skipped.
func ReadCSV(r io.Reader) ([]Rule, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if canonical, ok := headerAliases[strings.ToLower(h)]; ok {
			cols[canonical] = i
		}
	}
	for _, h := range []string{HeaderItemName, HeaderCategory, HeaderReason} {
		if _, ok := cols[h]; !ok {
			return nil, fmt.Errorf("parsing CSV: missing column %q", h)
		}
	}

	field := func(row []string, h string) string {
		i := cols[h]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Rule
	for i, row := range records[1:] {
		name, cat, reason := field(row, HeaderItemName), field(row, HeaderCategory), field(row, HeaderReason)
		if name == "" || cat == "" || reason == "" {
			slog.Debug("skipping incomplete rule row", "line", i+2)
			continue
		}
		c, ok := waste.ParseCategory(cat)
		if !ok {
			slog.Warn("rule row has unrecognized category", "line", i+2, "item", name, "category", cat)
			c = waste.Category(cat)
		}
		out = append(out, Rule{ItemName: name, Category: c, Reason: reason})
	}
	return out, nil
}

// Save rewrites the whole file. The rows go to a temporary file in the same
// directory that is renamed over the target, so readers of the file never see
// a partial table.
func (c *CSVBackend) Save(ctx context.Context, rules []Rule) error {
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating rule directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, rules); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, c.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.Path, err)
	}
	return nil
}

// WriteCSV writes the header and one row per rule.
func WriteCSV(w io.Writer, rules []Rule) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{HeaderItemName, HeaderCategory, HeaderReason}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rules {
		if err := writer.Write([]string{r.ItemName, string(r.Category), r.Reason}); err != nil {
			return fmt.Errorf("writing rule %q: %w", r.ItemName, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
