package ingest

import "matchdata/internal/record"

// accumulator groups records by output target, remembering the order in
// which targets first appeared.
type accumulator struct {
	order   []string
	batches map[string][]record.Record
}

func newAccumulator() *accumulator {
	return &accumulator{batches: make(map[string][]record.Record)}
}

func (a *accumulator) add(target string, records []record.Record) {
	if len(records) == 0 {
		return
	}
	if _, ok := a.batches[target]; !ok {
		a.order = append(a.order, target)
	}
	a.batches[target] = append(a.batches[target], records...)
}

func (a *accumulator) targets() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *accumulator) records(target string) []record.Record {
	return a.batches[target]
}

func (a *accumulator) empty() bool {
	return len(a.order) == 0
}
