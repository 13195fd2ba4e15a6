// Package dump renders the generator's human-readable diagnostic dumps described in spec.md §6:
// page tables, register state, and constraint-set snapshots. It never writes an ELF image --
// that's the front end's job (spec.md §1's explicit Non-goal, "ELF read/write") -- only the
// plain-text/JSON/ConstraintSet forms spec.md §6 lists alongside it. Tables render with
// github.com/jedib0t/go-pretty/v6/table, grounded on zeonica's use of that library for CLI
// tabular output.
package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/smoynes/forge/internal/constraint"
	"github.com/smoynes/forge/internal/register"
	"github.com/smoynes/forge/internal/vmem"
)

// WritePagesText renders pages as an aligned table: VA range, PA range, bank, level, attrs.
// Matches the "Pages*.txt" dump spec.md §6 names.
func WritePagesText(w io.Writer, pages []*vmem.Page) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"VA Lo", "VA Hi", "Bank", "PA Lo", "PA Hi", "Level", "Attrs"})

	for _, p := range pages {
		t.AppendRow(table.Row{
			fmt.Sprintf("%#x", p.VaLo), fmt.Sprintf("%#x", p.VaHi),
			p.Bank,
			fmt.Sprintf("%#x", p.PaLo), fmt.Sprintf("%#x", p.PaHi),
			p.Level, p.Attrs,
		})
	}

	t.Render()

	return nil
}

// pageJSON is the on-disk shape of one Page entry in a "Pages*.json" dump.
type pageJSON struct {
	VaLo  uint64    `json:"va_lo"`
	VaHi  uint64    `json:"va_hi"`
	Bank  string    `json:"bank"`
	PaLo  uint64    `json:"pa_lo"`
	PaHi  uint64    `json:"pa_hi"`
	Level int       `json:"level"`
	Attrs vmem.Attr `json:"attrs"`
}

// WritePagesJSON renders pages as the "Pages*.json" dump spec.md §6 names.
func WritePagesJSON(w io.Writer, pages []*vmem.Page) error {
	out := make([]pageJSON, len(pages))
	for i, p := range pages {
		out[i] = pageJSON{VaLo: p.VaLo, VaHi: p.VaHi, Bank: p.Bank, PaLo: p.PaLo, PaHi: p.PaHi, Level: p.Level, Attrs: p.Attrs}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// WriteRegisters renders every defined register in arena as an aligned table: name, kind, size,
// current value (masked to the register's initialized bits), and whether it's fully initialized.
func WriteRegisters(w io.Writer, arena *register.Arena) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Kind", "Size", "Value", "Initialized"})

	for i := 1; i <= arena.Len(); i++ {
		id := register.PhysicalID(i)
		r := arena.Get(id)

		mask := r.Mask()
		t.AppendRow(table.Row{
			r.Name(), r.Kind(), r.Size(),
			fmt.Sprintf("%#x", r.Value(mask)),
			r.IsInitialized(mask),
		})
	}

	t.Render()

	return nil
}

// WriteConstraintSet renders name's set in the "*.ConstraintSet" dump format spec.md §6 describes:
// one line, comma-separated "lo-hi" or "v" terms (constraint.Set.String already produces exactly
// this format -- WriteConstraintSet just attaches the name and trailing newline a dump file needs).
func WriteConstraintSet(w io.Writer, name string, set *constraint.Set) error {
	_, err := fmt.Fprintf(w, "%s: %s\n", name, set.String())
	return err
}

// WriteConstraintSets renders a named collection of sets, one line each, sorted by name for
// reproducible output.
func WriteConstraintSets(w io.Writer, sets map[string]*constraint.Set) error {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := WriteConstraintSet(w, name, sets[name]); err != nil {
			return err
		}
	}

	return nil
}
