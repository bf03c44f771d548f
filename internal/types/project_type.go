package types

// ProjectType is the closed set of project categories the estimator supports.
// The value doubles as the catalog category token: a catalog item is relevant
// to a request when its category contains this token (substring match).
type ProjectType string

const (
	ProjectTypeGarage     ProjectType = "garage"
	ProjectTypeCloset     ProjectType = "closet"
	ProjectTypePantry     ProjectType = "pantry"
	ProjectTypeMudroom    ProjectType = "mudroom"
	ProjectTypeHomeOffice ProjectType = "home_office"
)

func (p ProjectType) Valid() bool {
	switch p {
	case ProjectTypeGarage, ProjectTypeCloset, ProjectTypePantry, ProjectTypeMudroom, ProjectTypeHomeOffice:
		return true
	}
	return false
}

func (p ProjectType) String() string { return string(p) }
