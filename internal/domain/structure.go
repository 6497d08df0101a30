package domain

// NoVisitOrder marks a structure that has never been visited.
const NoVisitOrder = -1

// Structure is a landmark. The static fields come from the bundled dataset;
// Visited, Opened, Liked and VisitOrder are the dynamic state owned by the
// visit ledger.
type Structure struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Year        string   `json:"year,omitempty"`
	Builders    []string `json:"builders,omitempty"`
	Advisors    []string `json:"advisors,omitempty"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`

	Visited    bool `json:"visited"`
	Opened     bool `json:"opened"`
	Liked      bool `json:"liked"`
	VisitOrder int  `json:"visit_order"`
}

// ResetDynamic restores the first-install defaults of every dynamic field.
func (s *Structure) ResetDynamic() {
	s.Visited = false
	s.Opened = false
	s.Liked = false
	s.VisitOrder = NoVisitOrder
}

// CopyDynamic takes the dynamic fields of other, keeping the static fields of s.
func (s *Structure) CopyDynamic(other Structure) {
	s.Visited = other.Visited
	s.Opened = other.Opened
	s.Liked = other.Liked
	s.VisitOrder = other.VisitOrder
}

// Clone returns a deep copy safe to hand to observers.
func (s Structure) Clone() Structure {
	c := s
	c.Builders = append([]string(nil), s.Builders...)
	c.Advisors = append([]string(nil), s.Advisors...)
	c.Images = append([]string(nil), s.Images...)
	return c
}
