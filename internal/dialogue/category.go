package dialogue

// Category is the closed set of entity labels the language model emits.
type Category string

const (
	CategoryProduct       Category = "Producto"
	CategoryQuantity      Category = "Cantidad"
	CategoryPaymentMethod Category = "MetodoPago"
	CategoryOrderID       Category = "IdPedido"
	CategoryFAQTopic      Category = "TemaPregunta"

	// CategoryUnrecognized marks a label outside the known schema.
	CategoryUnrecognized Category = ""
)

// ParseCategory maps a wire label to its Category.
func ParseCategory(label string) Category {
	switch c := Category(label); c {
	case CategoryProduct, CategoryQuantity, CategoryPaymentMethod, CategoryOrderID, CategoryFAQTopic:
		return c
	default:
		return CategoryUnrecognized
	}
}

// Entity is one span extracted from the current message.
type Entity struct {
	Category Category
	Label    string
	Text     string
}

// NewEntity builds an Entity from a raw label, keeping the label for logs.
func NewEntity(label, text string) Entity {
	return Entity{Category: ParseCategory(label), Label: label, Text: text}
}

// Known reports whether the entity's label belongs to the schema.
func (e Entity) Known() bool {
	return e.Category != CategoryUnrecognized
}

// FirstText returns the text of the first entity in category c.
func FirstText(entities []Entity, c Category) (string, bool) {
	for _, e := range entities {
		if e.Category == c {
			return e.Text, true
		}
	}
	return "", false
}

// HasCategory reports whether any entity is in category c.
func HasCategory(entities []Entity, c Category) bool {
	_, ok := FirstText(entities, c)
	return ok
}
