package ils

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// HoldingsSorter orders holdings lists and pickup locations by configured
// priority, falling back to locale-aware label comparison.
type HoldingsSorter struct {
	// OrganisationOrder and BranchOrder map an id to its rank; lower ranks
	// sort first and any ranked entry sorts before all unranked ones.
	OrganisationOrder map[string]int
	BranchOrder       map[string]int
	coll              *collate.Collator
}

// NewHoldingsSorter builds a sorter for the given locale ("fi", "sv",
// "en-gb"...). An unparseable locale falls back to English collation.
func NewHoldingsSorter(locale string, orgOrder, branchOrder []string) *HoldingsSorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &HoldingsSorter{
		OrganisationOrder: rankOf(orgOrder),
		BranchOrder:       rankOf(branchOrder),
		coll:              collate.New(tag, collate.IgnoreCase),
	}
}

func rankOf(order []string) map[string]int {
	m := make(map[string]int, len(order))
	for i, id := range order {
		if id != "" {
			m[id] = i
		}
	}
	return m
}

// Sort orders the holdings in place. Journal holdings sort by edition in
// descending natural order first; within an edition, and for non-journal
// holdings, entries order by organisation rank, then branch rank, then by
// location label.
func (s *HoldingsSorter) Sort(holdings []Holding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		return s.less(&holdings[i], &holdings[j])
	})
}

func (s *HoldingsSorter) less(a, b *Holding) bool {
	if a.Journal != nil && b.Journal != nil {
		if a.Journal.Edition != b.Journal.Edition {
			return naturalCompare(b.Journal.Edition, a.Journal.Edition) < 0
		}
		ac, bc := *a, *b
		ac.Location = a.Journal.Location
		bc.Location = b.Journal.Location
		return s.defaultLess(&ac, &bc)
	}
	return s.defaultLess(a, b)
}

func (s *HoldingsSorter) defaultLess(a, b *Holding) bool {
	var rankA, rankB int
	var okA, okB bool
	var labelA, labelB string
	if a.OrganisationID != b.OrganisationID {
		rankA, okA = s.OrganisationOrder[a.OrganisationID]
		rankB, okB = s.OrganisationOrder[b.OrganisationID]
		labelA, labelB = a.Location, b.Location
	} else {
		rankA, okA = s.BranchOrder[a.BranchID]
		rankB, okB = s.BranchOrder[b.BranchID]
		labelA = a.Location + " " + a.Branch + " " + a.Department
		labelB = b.Location + " " + b.Branch + " " + b.Department
	}
	switch {
	case okA && okB:
		if rankA != rankB {
			return rankA < rankB
		}
	case okA:
		return true
	case okB:
		return false
	}
	return s.coll.CompareString(labelA, labelB) < 0
}

// Compare orders two labels with the sorter's collation.
func (s *HoldingsSorter) Compare(a, b string) int {
	return s.coll.CompareString(a, b)
}

// SortPickUpLocations orders pickup locations in place: entries listed in
// order sort first by their rank, the rest follow ordered by display label.
func (s *HoldingsSorter) SortPickUpLocations(locations []Location, order []string) {
	rank := rankOf(order)
	sort.SliceStable(locations, func(i, j int) bool {
		ri, oki := rank[locations[i].ID]
		rj, okj := rank[locations[j].ID]
		switch {
		case oki && okj:
			return ri < rj
		case oki:
			return true
		case okj:
			return false
		}
		return s.coll.CompareString(locations[i].Display, locations[j].Display) < 0
	})
}

// naturalCompare compares strings so that embedded digit runs order
// numerically, ignoring case elsewhere.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		da, ra := leadingDigits(a)
		db, rb := leadingDigits(b)
		if da != "" && db != "" {
			na := strings.TrimLeft(da, "0")
			nb := strings.TrimLeft(db, "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		ca := unicode.ToLower(rune(a[0]))
		cb := unicode.ToLower(rune(b[0]))
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	}
	return 1
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
