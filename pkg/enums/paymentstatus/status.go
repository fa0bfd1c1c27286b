package paymentstatus

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
	Pending Status
	Paid    Status
	Failed  Status
}

var Statuses = Enum{
	Pending: Status{Name: "Pending"},
	Paid:    Status{Name: "Paid"},
	Failed:  Status{Name: "Failed"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Paid,
	Statuses.Failed,
}

// next lists the allowed moves. Paid is terminal; Failed may be retried.
var next = map[string]map[string]bool{
	"Pending": {"Paid": true, "Failed": true},
	"Failed":  {"Paid": true},
	"Paid":    {},
}

// CanTransition reports whether a payment may move from one status to another.
func CanTransition(from, to string) bool {
	if from == "" {
		from = Statuses.Pending.Name
	}
	return next[from][to]
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
