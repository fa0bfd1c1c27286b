package reservationstatus

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	return s.Name
}

type Enum struct {
	Pending   Status
	Confirmed Status
	Cancelled Status
}

var Statuses = Enum{
	Pending:   Status{Name: "Pending"},
	Confirmed: Status{Name: "Confirmed"},
	Cancelled: Status{Name: "Cancelled"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Confirmed,
	Statuses.Cancelled,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
