package tx

// Type represents a request type code
type Type uint16

const (
	TypeInvalid Type = 0xFFFF

	TypeSetPrices Type = 1
)

var typeNames = map[Type]string{
	TypeSetPrices: "set_prices",
}

var typeNameMap = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TypeFromName returns the request type for a given name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}
