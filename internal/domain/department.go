package domain

// Department is one of the fixed organizational units a ticket is filed under.
type Department string

const (
	DepartmentFinance        Department = "Finance"
	DepartmentProcurement    Department = "Procurement"
	DepartmentRiskAssessment Department = "Risk Assessment"
	DepartmentITSupport      Department = "IT Support"
	DepartmentHumanResources Department = "Human Resources"
	DepartmentOperations     Department = "Operations"
)

// Departments lists the closed set in display order.
var Departments = []Department{
	DepartmentFinance,
	DepartmentProcurement,
	DepartmentRiskAssessment,
	DepartmentITSupport,
	DepartmentHumanResources,
	DepartmentOperations,
}

// Valid reports whether d belongs to the closed set.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}
