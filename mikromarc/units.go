package mikromarc

import (
	"net/url"
	"strconv"
	"strings"
)

// libraryUnit is one node of the resolved library unit tree.
type libraryUnit struct {
	ID           int
	Name         string
	Parent       int
	Department   bool
	Branch       int
	Organisation string
}

type odataLibraryUnit struct {
	ID           int    `json:"Id"`
	Name         string `json:"Name"`
	ParentUnitID int    `json:"ParentUnitId"`
	IsDepartment bool   `json:"IsDepartment"`
}

type catalogueItemLocation struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
}

// libraryUnits fetches and resolves the unit tree, cached per tenant for an
// hour.
func (d *Driver) libraryUnits() (map[int]*libraryUnit, error) {
	cacheKey := "mikromarc|libraryUnits|" + d.cfg.Base + "|" + d.cfg.Unit
	if cached, ok := d.cache.Get(cacheKey); ok {
		return cached.(map[int]*libraryUnit), nil
	}

	result, err := getList[odataLibraryUnit](d, "LibraryUnits",
		[]string{"odata", "LibraryUnits"}, nil)
	if err != nil {
		return nil, err
	}

	units := make(map[int]*libraryUnit, len(result))
	for _, entry := range result {
		units[entry.ID] = &libraryUnit{
			ID:         entry.ID,
			Name:       entry.Name,
			Parent:     entry.ParentUnitID,
			Department: entry.IsDepartment,
		}
	}

	for _, unit := range units {
		parent := units[unit.Parent]

		unit.Branch = unit.ID
		organisation := "1"
		if d.cfg.Holdings.OrganisationID != "" {
			organisation = d.cfg.Holdings.OrganisationID
		} else if parent != nil && parent.Department {
			organisation = strconv.Itoa(parent.Parent)
		}
		unit.Organisation = organisation

		if !unit.Department || parent == nil {
			continue
		}

		// Prepend the parent name to department names unless the backend
		// already did.
		if strings.HasPrefix(strings.TrimSpace(unit.Name), strings.TrimSpace(parent.Name)) {
			continue
		}
		unit.Name = parent.Name + " - " + unit.Name
	}

	d.cache.Put(cacheKey, units, unitsCacheTTL)
	return units, nil
}

func (d *Driver) libraryUnit(id int) (*libraryUnit, error) {
	units, err := d.libraryUnits()
	if err != nil {
		return nil, err
	}
	return units[id], nil
}

func (d *Driver) libraryUnitName(id int) (string, error) {
	unit, err := d.libraryUnit(id)
	if err != nil {
		return "", err
	}
	if unit == nil {
		return "", nil
	}
	return unit.Name, nil
}

// department resolves the name of the shelf location.
func (d *Driver) department(locationID int) (string, error) {
	cacheKey := "mikromarc|department|" + d.cfg.Base + "|" + d.cfg.Unit + "|" + strconv.Itoa(locationID)
	if cached, ok := d.cache.Get(cacheKey); ok {
		return cached.(string), nil
	}
	query := url.Values{"$filter": {"Id eq " + strconv.Itoa(locationID)}}
	result, err := getList[catalogueItemLocation](d, "CatalogueItemLocations",
		[]string{"odata", "CatalogueItemLocations"}, query)
	if err != nil {
		return "", err
	}
	name := ""
	if len(result) > 0 {
		name = result[0].Name
	}
	d.cache.Put(cacheKey, name, unitsCacheTTL)
	return name, nil
}
