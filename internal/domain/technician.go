package domain

// Specialization enumerates technician skill tags.
type Specialization string

const (
	SpecializationHardware Specialization = "hardware"
	SpecializationSoftware Specialization = "software"
	SpecializationNetwork  Specialization = "network"
)

// Valid reports whether s is a known specialization.
func (s Specialization) Valid() bool {
	switch s {
	case SpecializationHardware, SpecializationSoftware, SpecializationNetwork:
		return true
	}
	return false
}

// Technician models a support agent from the registry.
type Technician struct {
	ID             string
	Name           string
	Extension      string
	Email          string
	Specialization Specialization
	PasswordHash   string
}

// DisplayName returns the technician's name, or the raw id for a dangling reference.
func DisplayName(tech *Technician, id string) string {
	if tech == nil || tech.Name == "" {
		return id
	}
	return tech.Name
}
