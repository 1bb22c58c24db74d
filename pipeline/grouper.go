package pipeline

// Grouper accumulates mapper emissions and groups them by key. It is the
// engine's shuffle barrier: no group is handed to a reducer until every
// emission has been added. Keys group by Go equality of K, so two keys
// built from the same components always share a group.
type Grouper[K comparable, V any] struct {
	groups map[K][]V
	pairs  int
}

func NewGrouper[K comparable, V any]() *Grouper[K, V] {
	return &Grouper[K, V]{groups: make(map[K][]V)}
}

// Add appends v to the group for k, creating the group on first sight.
func (g *Grouper[K, V]) Add(k K, v V) {
	g.groups[k] = append(g.groups[k], v)
	g.pairs++
}

// Merge folds another grouper into g. Value order within each source
// grouper is preserved; order across groupers is not defined.
func (g *Grouper[K, V]) Merge(other *Grouper[K, V]) {
	for k, vs := range other.groups {
		g.groups[k] = append(g.groups[k], vs...)
	}
	g.pairs += other.pairs
}

// Groups exposes the accumulated groups. The map is owned by the grouper
// and must not be mutated by callers.
func (g *Grouper[K, V]) Groups() map[K][]V { return g.groups }

// Len returns the number of distinct keys seen so far.
func (g *Grouper[K, V]) Len() int { return len(g.groups) }

// Pairs returns the number of emissions added so far.
func (g *Grouper[K, V]) Pairs() int { return g.pairs }
