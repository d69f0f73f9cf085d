// Package refdata loads the reference tables a caller supplies alongside a
// document: cost-code categories, project vendors and change orders.
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/loader"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
	"github.com/joseph-ayodele/variance-drafts/internal/variance"
)

// Loader reads reference tables from CSV, XLSX or XLS uploads. Every sheet
// carrying the required columns contributes.
type Loader struct {
	loader *loader.Loader
	rules  *rules.Rules
	logger *slog.Logger
}

func New(l *loader.Loader, r *rules.Rules, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = rules.Default()
	}
	if l == nil {
		l = loader.New(loader.Config{}, logger)
	}
	return &Loader{loader: l, rules: r, logger: logger}
}

// ReadFile wraps a file on disk as a RawDocument.
func ReadFile(path string) (entity.RawDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return entity.RawDocument{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return entity.RawDocument{Filename: path, Content: b}, nil
}

// CategoryMap reads (cost_code, category) rows. Later rows override earlier
// ones for the same code.
func (l *Loader) CategoryMap(ctx context.Context, raw entity.RawDocument) (entity.CategoryMap, error) {
	frames, err := l.frames(ctx, raw, constants.FieldCostCode, constants.FieldCategory)
	if err != nil {
		return nil, err
	}
	m := entity.CategoryMap{}
	for _, f := range frames {
		for _, row := range f.Rows {
			code := f.Value(row, constants.FieldCostCode)
			cat := constants.NormalizeCategory(f.Value(row, constants.FieldCategory))
			if code == "" || cat == "" || f.IsTotalRow(row, l.rules) {
				continue
			}
			m[code] = cat
		}
	}
	l.logger.Info("refdata.categories.ok", "file", raw.Filename, "codes", len(m))
	return m, nil
}

// VendorEntries reads (project_id, cost_code, vendor_name) rows with the
// optional trade and contract columns.
func (l *Loader) VendorEntries(ctx context.Context, raw entity.RawDocument) ([]entity.VendorMapEntry, error) {
	frames, err := l.frames(ctx, raw, constants.FieldCostCode, constants.FieldVendorName)
	if err != nil {
		return nil, err
	}
	var out []entity.VendorMapEntry
	for _, f := range frames {
		for _, row := range f.Rows {
			e := entity.VendorMapEntry{
				ProjectID:  f.Value(row, constants.FieldProjectID),
				CostCode:   f.Value(row, constants.FieldCostCode),
				VendorName: f.Value(row, constants.FieldVendorName),
				Trade:      optional(f.Value(row, constants.FieldTrade)),
				ContractID: optional(f.Value(row, constants.FieldContractID)),
			}
			if e.CostCode == "" || e.VendorName == "" {
				continue
			}
			out = append(out, e)
		}
	}
	l.logger.Info("refdata.vendors.ok", "file", raw.Filename, "entries", len(out))
	return out, nil
}

// VendorMap is VendorEntries indexed for lookup.
func (l *Loader) VendorMap(ctx context.Context, raw entity.RawDocument) (*entity.VendorMap, error) {
	entries, err := l.VendorEntries(ctx, raw)
	if err != nil {
		return nil, err
	}
	return entity.NewVendorMap(entries), nil
}

// ChangeOrders reads change-order rows from every sheet with a co_id or
// linked cost code column.
func (l *Loader) ChangeOrders(ctx context.Context, raw entity.RawDocument) ([]entity.ChangeOrderRow, error) {
	frames, err := l.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	var out []entity.ChangeOrderRow
	matched := false
	for _, f := range frames {
		if !f.Has(constants.FieldCoID) && !f.Has(constants.FieldLinkedCostCode) {
			continue
		}
		matched = true
		out = append(out, variance.BuildChangeOrderRows(f, l.rules)...)
	}
	if !matched {
		return nil, missingColumns(raw.Filename, constants.FieldCoID, constants.FieldLinkedCostCode)
	}
	l.logger.Info("refdata.change_orders.ok", "file", raw.Filename, "rows", len(out))
	return out, nil
}

// frames returns the sheets that map every required field.
func (l *Loader) frames(ctx context.Context, raw entity.RawDocument, required ...constants.Field) ([]*tabular.Frame, error) {
	all, err := l.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	var out []*tabular.Frame
	for _, f := range all {
		ok := true
		for _, field := range required {
			if !f.Has(field) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, missingColumns(raw.Filename, required...)
	}
	return out, nil
}

func (l *Loader) load(ctx context.Context, raw entity.RawDocument) ([]*tabular.Frame, error) {
	doc, err := l.loader.Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !doc.Format.IsTabular() {
		return nil, common.NewAppError("REFDATA_FORMAT",
			fmt.Sprintf("%s: reference tables must be CSV or spreadsheets, got %s", filepath.Base(raw.Filename), doc.Format),
			common.ErrUnsupportedFormat)
	}
	var frames []*tabular.Frame
	for _, s := range doc.Sheets {
		if f := tabular.Prepare(s.Name, s.Rows, l.rules); f != nil {
			frames = append(frames, f)
		}
	}
	return frames, nil
}

func missingColumns(filename string, fields ...constants.Field) error {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return common.NewAppError("REFDATA_COLUMNS",
		fmt.Sprintf("%s: no sheet with columns %s", filepath.Base(filename), strings.Join(names, ", ")),
		common.ErrInvalidInput)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
