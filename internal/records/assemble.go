package records

import (
	"log/slog"
	"sort"

	"trimveo/internal/logging"
)

// Assembly summarises the container resolution pass over one table.
type Assembly struct {
	Roots []*Record
	// Stubs are the placeholders created for undefined containers.
	Stubs []*Record
	// Cycles lists identifier chains whose containers loop back on themselves.
	Cycles [][]string
}

// Assemble resolves container references in table. Each undefined container
// gets exactly one stub carrying every identifier that referenced it. Defined
// containers record their referrers too. The children index is rebuilt.
func Assemble(table *Table, logger *slog.Logger) Assembly {
	logger = logging.NewComponentLogger(logger, "assembler")

	var result Assembly
	for _, rec := range table.Records() {
		if !rec.Defined {
			continue
		}
		if !rec.HasContainer() {
			rec.Root = true
			result.Roots = append(result.Roots, rec)
			continue
		}
		parent, ok := table.Lookup(rec.Container)
		if !ok {
			parent = table.Put(NewStub(rec.Container, table.Source))
			result.Stubs = append(result.Stubs, parent)
			logger.Debug("container not defined in export; stub created",
				logging.String(logging.FieldRecordID, parent.Key()),
				logging.String("referenced_by", rec.Key()),
			)
		}
		parent.Referenced = true
		parent.AddReferencedBy(rec.Key())
	}

	table.BuildIndex()
	result.Cycles = FindCycles(table)
	return result
}

// FindCycles returns every loop formed by container references among the
// defined records of table. Each cycle is reported once, starting at its
// smallest identifier.
func FindCycles(table *Table) [][]string {
	const (
		unseen = iota
		active
		done
	)
	state := make(map[string]int, table.Len())
	var cycles [][]string

	for _, start := range table.Keys() {
		if state[start] != unseen {
			continue
		}
		var path []string
		key := start
		for {
			rec, ok := table.Get(key)
			if !ok || !rec.Defined {
				break
			}
			if state[key] == done {
				break
			}
			if state[key] == active {
				cycles = append(cycles, loopFrom(path, key))
				break
			}
			state[key] = active
			path = append(path, key)
			if !rec.HasContainer() {
				break
			}
			key = rec.ContainerKey()
		}
		for _, k := range path {
			state[k] = done
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func loopFrom(path []string, key string) []string {
	for i, k := range path {
		if k == key {
			loop := append([]string(nil), path[i:]...)
			sort.Strings(loop)
			return loop
		}
	}
	return nil
}
