package memgraph

import (
	"sort"

	"github.com/zero-day-ai/kleegraph/graph"
)

type counted struct {
	keys  []string
	count int
}

// rank orders by count descending, then keys ascending.
func rank(items []counted) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		for k := range items[i].keys {
			if items[i].keys[k] != items[j].keys[k] {
				return items[i].keys[k] < items[j].keys[k]
			}
		}
		return false
	})
}

func (s *Store) failure(id string) graph.Node {
	return s.nodes[graph.LabelFailure][id]
}

func (s *Store) errorTypes() []graph.Row {
	counts := make(map[string]int)
	for _, n := range s.nodes[graph.LabelFailure] {
		counts[n.String(graph.PropSubkind)]++
	}

	items := make([]counted, 0, len(counts))
	for subkind, c := range counts {
		items = append(items, counted{keys: []string{subkind}, count: c})
	}
	rank(items)

	rows := make([]graph.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, graph.Row{graph.ColErrorType: it.keys[0], graph.ColCount: it.count})
	}
	return rows
}

func (s *Store) vulnerableFunctions() []graph.Row {
	triggers := s.out[graph.EdgeTriggers]

	items := make([]counted, 0, len(triggers))
	for name, failures := range triggers {
		if len(failures) == 0 {
			continue
		}
		items = append(items, counted{keys: []string{name}, count: len(failures)})
	}
	rank(items)

	rows := make([]graph.Row, 0, len(items))
	for _, it := range items {
		fn := s.nodes[graph.LabelFunction][it.keys[0]]
		rows = append(rows, graph.Row{
			graph.ColFunction:   it.keys[0],
			graph.ColRole:       fn.String(graph.PropRole),
			graph.ColErrorCount: it.count,
		})
	}
	return rows
}

func (s *Store) problematicTests() []graph.Row {
	finds := s.out[graph.EdgeFinds]

	items := make([]counted, 0, len(finds))
	for id, failures := range finds {
		if len(failures) == 0 {
			continue
		}
		items = append(items, counted{keys: []string{id}, count: len(failures)})
	}
	rank(items)

	rows := make([]graph.Row, 0, len(items))
	for _, it := range items {
		tc := s.nodes[graph.LabelTestCase][it.keys[0]]
		rows = append(rows, graph.Row{
			graph.ColTestCase:   it.keys[0],
			graph.ColStatus:     tc.String(graph.PropStatus),
			graph.ColErrorCount: it.count,
		})
	}
	return rows
}

func (s *Store) memoryErrorPatterns() []graph.Row {
	type pair struct{ function, subkind string }
	counts := make(map[pair]int)

	for name, failures := range s.out[graph.EdgeTriggers] {
		for id := range failures {
			f := s.failure(id)
			if f.String(graph.PropKind) != graph.MemoryErrorKind {
				continue
			}
			counts[pair{name, f.String(graph.PropSubkind)}]++
		}
	}

	items := make([]counted, 0, len(counts))
	for p, c := range counts {
		items = append(items, counted{keys: []string{p.function, p.subkind}, count: c})
	}
	rank(items)

	rows := make([]graph.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, graph.Row{
			graph.ColFunction:     it.keys[0],
			graph.ColErrorSubtype: it.keys[1],
			graph.ColCount:        it.count,
		})
	}
	return rows
}

// errorPaths joins EXECUTES and TRIGGERS through the function adjacency
// index. Output is distinct and ordered by test case, function, subtype.
func (s *Store) errorPaths() []graph.Row {
	executes := s.out[graph.EdgeExecutes]
	triggers := s.out[graph.EdgeTriggers]

	rows := []graph.Row{}
	for _, testID := range sortedKeys(executes) {
		for _, name := range sortedKeys(executes[testID]) {
			subkinds := make(map[string]struct{})
			for id := range triggers[name] {
				f := s.failure(id)
				if f.String(graph.PropKind) == graph.MemoryErrorKind {
					subkinds[f.String(graph.PropSubkind)] = struct{}{}
				}
			}
			for _, subkind := range sortedKeys(subkinds) {
				rows = append(rows, graph.Row{
					graph.ColTestCase:  testID,
					graph.ColFunction:  name,
					graph.ColErrorType: subkind,
				})
			}
		}
	}
	return rows
}
