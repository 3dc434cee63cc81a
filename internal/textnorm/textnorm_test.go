package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"un", 1, true},
		{"uno", 1, true},
		{"una", 1, true},
		{"dos", 2, true},
		{"tres", 3, true},
		{"cuatro", 4, true},
		{"cinco", 5, true},
		{"seis", 6, true},
		{"siete", 7, true},
		{"ocho", 8, true},
		{"nueve", 9, true},
		{"diez", 10, true},
		{"Dos", 2, true},
		{" tres ", 3, true},
		{"7", 7, true},
		{"12", 12, true},
		{"siete mil", 0, false},
		{"muchas", 0, false},
		{"", 0, false},
		{"2.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuantity(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTopicKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"horarios", "horario"},
		{"Horarios", "horario"},
		{"garantías", "garantía"},
		{"garantias", "garantia"},
		{"devoluciones", "devolucion"},
		{"envíos", "envío"},
		{"envios", "envio"},
		{"horario", "horario"},
		{"hola", "hola"},
		{"pagos", "pagos"},
		{"métodos de pago", "métodos de pago"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTopicKeyword(tt.in))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "envio", Fold("Envío"))
	assert.Equal(t, "garantia", Fold("GARANTÍA"))
	assert.Equal(t, "devolucion", Fold("devolución"))
	assert.Equal(t, "pinguino", Fold("pingüino"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "123", DigitsOnly("pedido #abc123"))
	assert.Equal(t, "42", DigitsOnly("#42"))
	assert.Equal(t, "", DigitsOnly("ninguno"))
	assert.Equal(t, "", DigitsOnly("٣"))
}

func TestContainsAny(t *testing.T) {
	phrases := []string{"estado", "está", "cómo va"}
	assert.True(t, ContainsAny("¿Cómo va mi pedido?", phrases))
	assert.True(t, ContainsAny("¿Dónde ESTÁ mi pedido?", phrases))
	assert.False(t, ContainsAny("quiero una camisa", phrases))
}
