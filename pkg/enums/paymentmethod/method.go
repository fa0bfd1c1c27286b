package paymentmethod

type Method struct {
	Name string
	// RequiresCard is set for methods that collect card details in the payment dialog.
	RequiresCard bool
}

func (m Method) Code() string {
	return m.Name
}

func (m Method) Label() string {
	return m.Name
}

type Enum struct {
	Card   Method
	Cash   Method
	Online Method
}

var Methods = Enum{
	Card:   Method{Name: "Card Payment", RequiresCard: true},
	Cash:   Method{Name: "Cash on Delivery"},
	Online: Method{Name: "Online Banking"},
}

var All = []Method{
	Methods.Card,
	Methods.Cash,
	Methods.Online,
}

// ByName returns the method for a given name, or nil if not found
func ByName(name string) *Method {
	for _, m := range All {
		if m.Name == name {
			return &m
		}
	}
	return nil
}
