package script

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Dump renders every scope of the result's arena with its declarations. The
// scope the script ended in is marked with an asterisk.
func Dump(w io.Writer, res *Result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(res.Name)
	t.AppendHeader(table.Row{"Scope", "Parent", "Depth", "Name", "Symbol", "State", "Value"})

	for _, id := range res.Arena.Scopes() {
		label := id.String()
		if id == res.Scope.ID() {
			label += " *"
		}
		parent, _ := res.Arena.Pop(id)
		depth := res.Arena.Depth(id)

		entries := res.Arena.Entries(id)
		if len(entries) == 0 {
			t.AppendRow(table.Row{label, parent, depth, "", "", "", ""})
			continue
		}
		for _, e := range entries {
			value := ""
			if v, ok := e.Binding.Get(); ok {
				value = v.String()
			}
			t.AppendRow(table.Row{label, parent, depth, e.Name, e.Symbol, e.Binding.State, value})
		}
	}

	t.Render()
	_, err := fmt.Fprintf(w, "(%d scopes)\n", res.Arena.Len())
	return err
}
