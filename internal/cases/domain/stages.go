package domain

// Vocabulary maps each case category to its ordered list of valid stage
// identifiers. It is built once at wiring time and injected wherever stage
// validation is needed; nothing mutates it after construction.
type Vocabulary struct {
	stages map[Category][]string
}

// NewVocabulary builds a vocabulary from the given table. Lists are copied
// so later mutation of the input cannot leak in. Categories missing from
// the table fall back to the CategoryOther list on lookup; a table without
// a CategoryOther entry gets the default one.
func NewVocabulary(table map[Category][]string) Vocabulary {
	stages := make(map[Category][]string, len(table))
	for category, list := range table {
		copied := make([]string, len(list))
		copy(copied, list)
		stages[category] = copied
	}
	if _, ok := stages[CategoryOther]; !ok {
		stages[CategoryOther] = defaultStages[CategoryOther]
	}
	return Vocabulary{stages: stages}
}

var defaultStages = map[Category][]string{
	CategoryLabor: {
		"filing", "amicable_settlement", "labor_committee",
		"hearing", "judgment", "appeal", "execution",
	},
	CategoryCommercial: {
		"filing", "case_review", "mediation", "hearing",
		"expert_review", "judgment", "appeal", "execution",
	},
	CategoryCivil: {
		"filing", "reconciliation", "hearing", "judgment", "appeal", "execution",
	},
	CategoryFamily: {
		"filing", "reconciliation", "hearing", "judgment", "appeal", "execution",
	},
	CategoryCriminal: {
		"investigation", "filing", "hearing", "judgment", "appeal", "execution",
	},
	CategoryAdministrative: {
		"filing", "administrative_review", "hearing", "judgment", "appeal", "execution",
	},
	CategoryOther: {
		"filing", "in_progress", "hearing", "judgment", "execution",
	},
}

// DefaultVocabulary returns the built-in category-to-stages table.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultStages)
}

// StagesFor returns the ordered stage list for the category, falling back
// to the CategoryOther list for unknown categories. The returned slice is
// a copy.
func (v Vocabulary) StagesFor(category Category) []string {
	list, ok := v.stages[category]
	if !ok {
		list = v.stages[CategoryOther]
	}
	copied := make([]string, len(list))
	copy(copied, list)
	return copied
}

// Contains reports whether stage is valid for the category.
func (v Vocabulary) Contains(category Category, stage string) bool {
	list, ok := v.stages[category]
	if !ok {
		list = v.stages[CategoryOther]
	}
	for _, s := range list {
		if s == stage {
			return true
		}
	}
	return false
}

// First returns the initial stage for the category.
func (v Vocabulary) First(category Category) string {
	list := v.StagesFor(category)
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// All returns the full category-to-stages table for introspection
// (e.g. populating a stage picker). The returned map and slices are copies.
func (v Vocabulary) All() map[Category][]string {
	table := make(map[Category][]string, len(v.stages))
	for category, list := range v.stages {
		copied := make([]string, len(list))
		copy(copied, list)
		table[category] = copied
	}
	return table
}
