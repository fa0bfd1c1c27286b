package reservationtype

type Type struct {
	Name string
}

func (t Type) Code() string {
	return t.Name
}

func (t Type) Label() string {
	return t.Name
}

type Enum struct {
	DineIn   Type
	Takeaway Type
	Delivery Type
}

var Types = Enum{
	DineIn:   Type{Name: "Dine-in"},
	Takeaway: Type{Name: "Takeaway"},
	Delivery: Type{Name: "Delivery"},
}

var All = []Type{
	Types.DineIn,
	Types.Takeaway,
	Types.Delivery,
}

// ByName returns the type for a given name, or nil if not found
func ByName(name string) *Type {
	for _, t := range All {
		if t.Name == name {
			return &t
		}
	}
	return nil
}
