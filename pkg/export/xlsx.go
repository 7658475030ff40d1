package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/plant-clean/pkg/cleaner"
	"github.com/David-Botos/plant-clean/pkg/model"
	"github.com/David-Botos/plant-clean/pkg/quality"
)

// Sheet names of the workbook
const (
	SheetCleaned  = "cleaned"
	SheetProfile  = "profile"
	SheetFuelTags = "fuel_tags"
)

// WriteXLSX saves the cleaned table, the column profile and the fuel tag
// mapping as one workbook at path. A nil profile or empty mapping list
// leaves its sheet with headers only.
func WriteXLSX(path string, cleaned *model.Table, profile *quality.Profile, mappings []cleaner.FuelMapping) (err error) {
	if cleaned == nil {
		return errors.New("cleaned table cannot be nil")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// NewFile starts with a default sheet, reuse it for the first one
	if err := f.SetSheetName(f.GetSheetName(0), SheetCleaned); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetProfile, SheetFuelTags} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeCleaned(f, cleaned); err != nil {
		return err
	}
	if err := writeProfile(f, profile); err != nil {
		return err
	}
	if err := writeFuelTags(f, mappings); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func writeCleaned(f *excelize.File, table *model.Table) error {
	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := writeRow(f, SheetCleaned, 1, header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		values := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			values[j] = row[col]
		}
		if err := writeRow(f, SheetCleaned, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeProfile(f *excelize.File, profile *quality.Profile) error {
	if err := writeRow(f, SheetProfile, 1, []interface{}{"column", "invalid", "valid", "total", "percent"}); err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	for i, c := range profile.Columns {
		if err := writeRow(f, SheetProfile, i+2, []interface{}{c.Column, c.Invalid, c.Valid, c.Total, c.Percent}); err != nil {
			return err
		}
	}

	inc := profile.Incompleteness
	summary := []interface{}{"rows with missing values", inc.Incomplete, inc.Total - inc.Incomplete, inc.Total, inc.Percent}
	return writeRow(f, SheetProfile, len(profile.Columns)+3, summary)
}

func writeFuelTags(f *excelize.File, mappings []cleaner.FuelMapping) error {
	if err := writeRow(f, SheetFuelTags, 1, []interface{}{"raw", "tags", "count"}); err != nil {
		return err
	}
	for i, m := range mappings {
		if err := writeRow(f, SheetFuelTags, i+2, []interface{}{m.Raw, m.Tag, m.Count}); err != nil {
			return err
		}
	}
	return nil
}
