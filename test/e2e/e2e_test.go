// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	createorder "order-chatbot/internal/actions/create-order"
	payorder "order-chatbot/internal/actions/pay-order"
	queryorder "order-chatbot/internal/actions/query-order"
	"order-chatbot/internal/api"
	"order-chatbot/internal/chat"
	"order-chatbot/internal/common/clu"
	"order-chatbot/internal/common/config"
	"order-chatbot/internal/common/database"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/session"
	"order-chatbot/internal/store"
)

type cluEntity struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type cluReply struct {
	Intent   string
	Entities []cluEntity
}

// newCLUServer answers analyze-conversations calls from a canned table
// keyed by message text. Unknown messages get topIntent "None".
func newCLUServer(t *testing.T, replies map[string]cluReply) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AnalysisInput struct {
				ConversationItem struct {
					Text string `json:"text"`
				} `json:"conversationItem"`
			} `json:"analysisInput"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		reply, ok := replies[req.AnalysisInput.ConversationItem.Text]
		if !ok {
			reply = cluReply{Intent: "None"}
		}
		if reply.Entities == nil {
			reply.Entities = []cluEntity{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"kind": "ConversationResult",
			"result": map[string]interface{}{
				"query": req.AnalysisInput.ConversationItem.Text,
				"prediction": map[string]interface{}{
					"topIntent":   reply.Intent,
					"projectKind": "Conversation",
					"entities":    reply.Entities,
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	server *httptest.Server
	db     sqlmock.Sqlmock
	redis  *miniredis.Miniredis
}

func newHarness(t *testing.T, replies map[string]cluReply) *harness {
	t.Helper()
	log := logger.NewTestLogger(t)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	pg := database.NewPostgresFromDB(sqlDB, false, log)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	cluSrv := newCLUServer(t, replies)
	nlu := clu.NewClient(config.CLUConfig{
		Endpoint:       cluSrv.URL,
		APIVersion:     "2024-11-15-preview",
		APIKey:         "e2e-key",
		ProjectName:    "chatbot-final",
		DeploymentName: "ChatbotEcomerce",
		Language:       "es",
		Timeout:        2000,
	}, log)

	svc := chat.NewService(chat.Dependencies{
		NLU:      nlu,
		Sessions: session.NewRedisStore(rdb.Client, 30*time.Minute, "chat:session:"),
		Orders:   store.NewOrderStore(pg, log),
		FAQ:      store.NewFAQStore(pg, log),
	}, log)

	router := api.NewRouter(api.NewChatHandler(svc, 5*time.Second, log), map[string]api.ReadinessCheck{
		"postgres": pg.Ping,
		"redis":    rdb.Ping,
	}, log)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &harness{server: srv, db: mock, redis: mr}
}

func (h *harness) say(t *testing.T, conversationID, message string) string {
	t.Helper()
	body, err := json.Marshal(api.ChatRequest{Message: message, ConversationID: conversationID})
	require.NoError(t, err)

	resp, err := http.Post(h.server.URL+"/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, conversationID, out.ConversationID)
	return out.Reply
}

func TestFullConversation(t *testing.T) {
	h := newHarness(t, map[string]cluReply{
		"quiero 2 camisas": {
			Intent:   "CrearPedido",
			Entities: []cluEntity{{"Producto", "camisas"}, {"Cantidad", "2"}},
		},
		"cuál es el estado de mi pedido 15": {
			Intent:   "ConsultarPedido",
			Entities: []cluEntity{{"IdPedido", "15"}},
		},
		"quiero pagar el pedido 15": {
			Intent:   "PagarPedido",
			Entities: []cluEntity{{"IdPedido", "15"}},
		},
		"cuál es su horario de atención": {
			Intent:   "ConsultarPedido",
			Entities: []cluEntity{{"TemaPregunta", "horario"}},
		},
	})
	const conv = "e2e-1"

	// Turn 1: product and quantity, payment still missing.
	reply := h.say(t, conv, "quiero 2 camisas")
	assert.Equal(t, createorder.ReplyMissingPayment, reply)
	assert.True(t, h.redis.Exists("chat:session:"+conv))

	// Turn 2: the payment keyword completes the order.
	h.db.ExpectQuery(`INSERT INTO pedidos`).
		WithArgs("camisas", 2, "yape").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(15)))
	reply = h.say(t, conv, "yape")
	assert.Equal(t, fmt.Sprintf(createorder.ReplyCreated, 2, "camisas", "yape", 15), reply)
	assert.False(t, h.redis.Exists("chat:session:"+conv))

	// Turn 3: status query.
	h.db.ExpectQuery(`SELECT estado, producto FROM pedidos WHERE id = \$1`).
		WithArgs(int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"estado", "producto"}).AddRow(store.StatusPending, "camisas"))
	reply = h.say(t, conv, "cuál es el estado de mi pedido 15")
	assert.Equal(t, fmt.Sprintf(queryorder.ReplyStatus, "15", "camisas", store.StatusPending), reply)

	// Turn 4: payment.
	h.db.ExpectQuery(`SELECT estado, producto FROM pedidos WHERE id = \$1`).
		WithArgs(int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"estado", "producto"}).AddRow(store.StatusPending, "camisas"))
	h.db.ExpectExec(`UPDATE pedidos SET estado = \$1 WHERE id = \$2`).
		WithArgs(store.StatusPaid, int64(15)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	reply = h.say(t, conv, "quiero pagar el pedido 15")
	assert.Equal(t, fmt.Sprintf(payorder.ReplyPaid, "15"), reply)

	// Turn 5: FAQ phrasing overrides the status label.
	h.db.ExpectQuery(`SELECT respuesta FROM preguntas_frecuentes`).
		WithArgs("horario").
		WillReturnRows(sqlmock.NewRows([]string{"respuesta"}).AddRow("Atendemos de lunes a sábado de 9:00 a 18:00."))
	reply = h.say(t, conv, "cuál es su horario de atención")
	assert.Equal(t, "Atendemos de lunes a sábado de 9:00 a 18:00.", reply)

	assert.NoError(t, h.db.ExpectationsWereMet())
}

func TestStoreOutageFallsBack(t *testing.T) {
	h := newHarness(t, map[string]cluReply{
		"2 gorras con tarjeta": {
			Intent:   "CrearPedido",
			Entities: []cluEntity{{"Producto", "gorras"}, {"Cantidad", "2"}, {"MetodoPago", "tarjeta"}},
		},
	})

	h.db.ExpectQuery(`INSERT INTO pedidos`).
		WithArgs("gorras", 2, "tarjeta").
		WillReturnError(fmt.Errorf("connection reset by peer"))

	reply := h.say(t, "e2e-2", "2 gorras con tarjeta")
	assert.Equal(t, apperrors.ReplyOrderCreateError, reply)
	assert.False(t, h.redis.Exists("chat:session:e2e-2"))
	assert.NoError(t, h.db.ExpectationsWereMet())
}

func TestReadiness(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := http.Get(h.server.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
