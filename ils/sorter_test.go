package ils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByOrganisationOrder(t *testing.T) {
	s := NewHoldingsSorter("fi", []string{"2", "1"}, nil)
	holdings := []Holding{
		{OrganisationID: "1", Location: "Alpha"},
		{OrganisationID: "3", Location: "Zeta"},
		{OrganisationID: "2", Location: "Beta"},
	}
	s.Sort(holdings)
	assert.Equal(t, "Beta", holdings[0].Location)
	assert.Equal(t, "Alpha", holdings[1].Location)
	// Unranked organisations trail the ranked ones.
	assert.Equal(t, "Zeta", holdings[2].Location)
}

func TestSortByBranchOrderWithinOrganisation(t *testing.T) {
	s := NewHoldingsSorter("fi", nil, []string{"20", "10"})
	holdings := []Holding{
		{OrganisationID: "1", BranchID: "10", Branch: "Main"},
		{OrganisationID: "1", BranchID: "30", Branch: "East"},
		{OrganisationID: "1", BranchID: "20", Branch: "West"},
	}
	s.Sort(holdings)
	assert.Equal(t, "West", holdings[0].Branch)
	assert.Equal(t, "Main", holdings[1].Branch)
	assert.Equal(t, "East", holdings[2].Branch)
}

func TestSortByLabelCollation(t *testing.T) {
	s := NewHoldingsSorter("fi", nil, nil)
	holdings := []Holding{
		{OrganisationID: "1", Location: "Övertorneå"},
		{OrganisationID: "2", Location: "Espoo"},
		{OrganisationID: "3", Location: "alphabet city"},
	}
	s.Sort(holdings)
	// Finnish collation puts Ö after the Latin letters; case is ignored.
	assert.Equal(t, "alphabet city", holdings[0].Location)
	assert.Equal(t, "Espoo", holdings[1].Location)
	assert.Equal(t, "Övertorneå", holdings[2].Location)
}

func TestSortJournalEditionsDescending(t *testing.T) {
	s := NewHoldingsSorter("fi", nil, nil)
	holdings := []Holding{
		{Journal: &JournalInfo{Edition: "2018:9", Location: "A"}},
		{Journal: &JournalInfo{Edition: "2018:10", Location: "A"}},
		{Journal: &JournalInfo{Edition: "2019:1", Location: "A"}},
	}
	s.Sort(holdings)
	// Editions compare naturally, newest first.
	assert.Equal(t, "2019:1", holdings[0].Journal.Edition)
	assert.Equal(t, "2018:10", holdings[1].Journal.Edition)
	assert.Equal(t, "2018:9", holdings[2].Journal.Edition)
}

func TestSortJournalSameEditionByLocation(t *testing.T) {
	s := NewHoldingsSorter("fi", nil, nil)
	holdings := []Holding{
		{Journal: &JournalInfo{Edition: "2020:1", Location: "Vallila"}},
		{Journal: &JournalInfo{Edition: "2020:1", Location: "Kallio"}},
	}
	s.Sort(holdings)
	assert.Equal(t, "Kallio", holdings[0].Journal.Location)
	assert.Equal(t, "Vallila", holdings[1].Journal.Location)
}

func TestSortPickUpLocations(t *testing.T) {
	s := NewHoldingsSorter("fi", nil, nil)
	locations := []Location{
		{ID: "1", Display: "Töölö"},
		{ID: "2", Display: "Itäkeskus"},
		{ID: "3", Display: "Kallio"},
	}
	s.SortPickUpLocations(locations, []string{"3", "1"})
	assert.Equal(t, "Kallio", locations[0].Display)
	assert.Equal(t, "Töölö", locations[1].Display)
	assert.Equal(t, "Itäkeskus", locations[2].Display)
}

func TestCompare(t *testing.T) {
	s := NewHoldingsSorter("fi", nil, nil)
	assert.Negative(t, s.Compare("alpha", "Beta"))
	assert.Positive(t, s.Compare("gamma", "BETA"))
	assert.Zero(t, s.Compare("Same", "same"))
}

func TestNaturalCompare(t *testing.T) {
	assert.Negative(t, naturalCompare("2018:9", "2018:10"))
	assert.Positive(t, naturalCompare("2019:1", "2018:12"))
	assert.Zero(t, naturalCompare("2018:07", "2018:7"))
	assert.Negative(t, naturalCompare("vol 2", "vol 10"))
}
