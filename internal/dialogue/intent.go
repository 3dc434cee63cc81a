package dialogue

// Intent is the action a turn is routed to.
type Intent string

const (
	IntentCreateOrder  Intent = "CreateOrder"
	IntentQueryOrder   Intent = "QueryOrder"
	IntentPayOrder     Intent = "PayOrder"
	IntentAnswerFAQ    Intent = "AnswerFAQ"
	IntentUnrecognized Intent = "Unrecognized"
)

var intentLabels = map[string]Intent{
	"CrearPedido":         IntentCreateOrder,
	"ConsultarPedido":     IntentQueryOrder,
	"PagarPedido":         IntentPayOrder,
	"PreguntasFrecuentes": IntentAnswerFAQ,
}

// ParseIntent maps a language-model intent label into the enum.
func ParseIntent(label string) Intent {
	if i, ok := intentLabels[label]; ok {
		return i
	}
	return IntentUnrecognized
}

// Terminal intents answer in one turn and leave no slots behind.
func (i Intent) Terminal() bool {
	return i != IntentCreateOrder
}
