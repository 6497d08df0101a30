package domain

import "fmt"

// Dataset is the static landmark bundle shipped with a release.
type Dataset struct {
	Version    string          `json:"version"`
	Structures []Structure     `json:"structures"`
	Points     []LandmarkPoint `json:"points"`
}

// Validate checks structure ids are unique and returns the points whose
// structure reference does not resolve.
func (d *Dataset) Validate() (orphans []int, err error) {
	if d.Version == "" {
		return nil, fmt.Errorf("dataset version is empty")
	}

	ids := make(map[int]struct{}, len(d.Structures))
	for _, s := range d.Structures {
		if s.ID == NotALandmark {
			return nil, fmt.Errorf("structure id %d is reserved", s.ID)
		}
		if _, dup := ids[s.ID]; dup {
			return nil, fmt.Errorf("duplicate structure id %d", s.ID)
		}
		ids[s.ID] = struct{}{}
	}

	for i, p := range d.Points {
		if !p.IsLandmark() {
			continue
		}
		if _, ok := ids[p.StructureID]; !ok {
			orphans = append(orphans, i)
		}
	}
	return orphans, nil
}
