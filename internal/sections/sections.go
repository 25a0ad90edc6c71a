// Package sections defines the page's anchorable sections and tracks which one
// is currently most visible.
package sections

// ID identifies a page section. It is both the anchor target of nav links
// and the element id observed by the Tracker.
type ID string

const (
	Hero       ID = "hero"
	About      ID = "about"
	Stack      ID = "stack"
	Skills     ID = "skills"
	Experience ID = "experience"
	Certs      ID = "certs"
	Contact    ID = "contact"
)

// Section is a nav entry.
type Section struct {
	ID    ID
	Label string
}

// Href is the in-page link to the section.
func (s Section) Href() string {
	return "#" + string(s.ID)
}

var all = []Section{
	{Hero, "Home"},
	{About, "About"},
	{Stack, "Tech"},
	{Skills, "Skills"},
	{Experience, "Experience"},
	{Certs, "Certifications"},
	{Contact, "Contact"},
}

// All returns the sections in document order.
func All() []Section {
	out := make([]Section, len(all))
	copy(out, all)
	return out
}

// IDs returns the section ids in document order.
func IDs() []ID {
	ids := make([]ID, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	return ids
}

// Valid reports whether id names a known section.
func Valid(id ID) bool {
	for _, s := range all {
		if s.ID == id {
			return true
		}
	}
	return false
}
