package models

// Associations holds the desired association names per kind for a replace-all call.
//
// A kind present in the map is replaced by exactly the listed names, so an empty or nil list clears it.
// A kind absent from the map is not touched.
type Associations map[Kind][]string

// Kinds returns the kinds present in a, in [Kinds] order.
func (a Associations) Kinds() []Kind {
	var kinds []Kind
	for _, k := range Kinds {
		if _, ok := a[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// AssociationSet is the wire form of [Associations]. A nil list leaves that kind untouched and an empty list
// clears it, which matches how JSON and YAML decoders treat a missing key versus [].
type AssociationSet struct {
	Genres    []string `json:"genres,omitempty" yaml:"genres,omitempty"`
	Directors []string `json:"directors,omitempty" yaml:"directors,omitempty"`
	Actors    []string `json:"actors,omitempty" yaml:"actors,omitempty"`
	Studios   []string `json:"studios,omitempty" yaml:"studios,omitempty"`
}

// Map converts the set to [Associations], keeping only the non-nil lists.
func (s AssociationSet) Map() Associations {
	a := Associations{}
	for kind, names := range map[Kind][]string{
		Genre:    s.Genres,
		Director: s.Directors,
		Actor:    s.Actors,
		Studio:   s.Studios,
	} {
		if names != nil {
			a[kind] = names
		}
	}
	return a
}

// Dedupe removes repeated names, keeping the first occurrence. Matching is exact and case-sensitive.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
