package controller

// Relation describes a release compared with the installed version.
type Relation int

// Relations returned by Compare.
const (
	RelationUnknown Relation = iota
	RelationInstalled
	RelationNewer
	RelationOlder
)

// String implements fmt.Stringer.
func (r Relation) String() string {
	switch r {
	case RelationInstalled:
		return "installed"
	case RelationNewer:
		return "newer"
	case RelationOlder:
		return "older"
	default:
		return "unknown"
	}
}
