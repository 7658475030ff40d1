package report

import (
	"fmt"
	"io"

	"github.com/David-Botos/plant-clean/pkg/cleaner"
	"github.com/David-Botos/plant-clean/pkg/quality"
)

// WriteColumnProfile prints one "column: percent%" line per column, in the
// profile's order
func WriteColumnProfile(w io.Writer, columns []quality.ColumnProfile) error {
	for _, c := range columns {
		if _, err := fmt.Fprintf(w, "%s: %.2f%%\n", c.Column, c.Percent); err != nil {
			return err
		}
	}
	return nil
}

// WriteIncompleteness prints the row-level incompleteness summary
func WriteIncompleteness(w io.Writer, inc quality.Incompleteness) error {
	_, err := fmt.Fprintf(w, "rows with at least one missing value: %d of %d (%.2f%%)\n",
		inc.Incomplete, inc.Total, inc.Percent)
	return err
}

// WriteProfile prints the column report followed by the row summary
func WriteProfile(w io.Writer, p *quality.Profile) error {
	if _, err := fmt.Fprintf(w, "%s (%d rows)\n", p.Table, p.Rows); err != nil {
		return err
	}
	if err := WriteColumnProfile(w, p.Columns); err != nil {
		return err
	}
	return WriteIncompleteness(w, p.Incompleteness)
}

// WriteFuelMappings prints each distinct raw fuel value with its tags
func WriteFuelMappings(w io.Writer, mappings []cleaner.FuelMapping) error {
	for _, m := range mappings {
		if _, err := fmt.Fprintf(w, "%q -> %q (%d)\n", m.Raw, m.Tag, m.Count); err != nil {
			return err
		}
	}
	return nil
}
