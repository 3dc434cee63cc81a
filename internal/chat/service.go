// Package chat runs one conversational turn end to end.
package chat

import (
	"context"
	"errors"
	"time"

	answerfaq "order-chatbot/internal/actions/answer-faq"
	createorder "order-chatbot/internal/actions/create-order"
	payorder "order-chatbot/internal/actions/pay-order"
	queryorder "order-chatbot/internal/actions/query-order"
	"order-chatbot/internal/common/clu"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/common/metrics"
	"order-chatbot/internal/common/observability"
	"order-chatbot/internal/dialogue"
	"order-chatbot/internal/events"
	"order-chatbot/internal/session"
	"order-chatbot/internal/store"
)

const ReplyUnrecognized = "No entendí tu solicitud. ¿Puedes intentar de otra forma?"

var ErrMissingConversationID = errors.New("MISSING_CONVERSATION_ID")

// Analyzer classifies a message. *clu.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*clu.Prediction, error)
}

// OrderStore is everything the order actions need from persistence.
type OrderStore interface {
	createorder.OrderCreator
	payorder.OrderPayer
}

type Dependencies struct {
	NLU      Analyzer
	Sessions session.Store
	Orders   OrderStore
	FAQ      store.FAQFinder
	Events   events.Publisher
	Recorder observability.Recorder
	Resolver *dialogue.Resolver
}

// Reply is the outcome of one turn.
type Reply struct {
	ConversationID string
	Text           string
	Intent         dialogue.Intent
	Rule           string
	Outcome        dialogue.Outcome
}

type Service struct {
	nlu      Analyzer
	sessions session.Store
	resolver *dialogue.Resolver
	recorder observability.Recorder

	createOrder *createorder.Handler
	queryOrder  *queryorder.Handler
	payOrder    *payorder.Handler
	answerFAQ   *answerfaq.Handler

	replies *apperrors.ReplyHandler
	locks   *keyLock
	logger  logger.Logger
}

func NewService(deps Dependencies, log logger.Logger) *Service {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Recorder == nil {
		deps.Recorder = observability.Nop{}
	}
	if deps.Resolver == nil {
		deps.Resolver = dialogue.NewResolver()
	}

	return &Service{
		nlu:         deps.NLU,
		sessions:    deps.Sessions,
		resolver:    deps.Resolver,
		recorder:    deps.Recorder,
		createOrder: createorder.NewHandler(deps.Orders, deps.Events, log),
		queryOrder:  queryorder.NewHandler(deps.Orders, log),
		payOrder:    payorder.NewHandler(deps.Orders, deps.Events, log),
		answerFAQ:   answerfaq.NewHandler(deps.FAQ, log),
		replies:     apperrors.NewReplyHandler(log),
		locks:       newKeyLock(),
		logger:      log.WithFields(map[string]interface{}{"component": "chat"}),
	}
}

// HandleMessage processes one user message. Turns of the same
// conversation run one at a time. Every failure past argument checking
// is turned into a reply; the error is reserved for a missing id.
func (s *Service) HandleMessage(ctx context.Context, conversationID, message string) (*Reply, error) {
	if conversationID == "" {
		return nil, ErrMissingConversationID
	}

	unlock := s.locks.Lock(conversationID)
	defer unlock()

	start := time.Now()
	log := logger.ForConversation(s.logger, conversationID)

	reply := s.turn(ctx, log, conversationID, message)

	intent := string(reply.Intent)
	metrics.ChatTurnsTotal.WithLabelValues(intent, string(reply.Outcome)).Inc()
	metrics.ChatTurnDuration.WithLabelValues(intent).Observe(time.Since(start).Seconds())
	s.recorder.RecordTurn(ctx, intent, string(reply.Outcome))
	s.recorder.RecordTurnDuration(ctx, time.Since(start), intent)

	log.Info("turn handled", map[string]interface{}{
		"intent":     intent,
		"rule":       reply.Rule,
		"outcome":    string(reply.Outcome),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return reply, nil
}

func (s *Service) turn(ctx context.Context, log logger.Logger, conversationID, message string) *Reply {
	reply := &Reply{ConversationID: conversationID, Intent: dialogue.IntentUnrecognized}

	prior, err := s.sessions.Load(ctx, conversationID)
	if err != nil {
		reply.Text = s.replies.Handle(err, map[string]interface{}{"conversationId": conversationID, "stage": "load_session"})
		reply.Outcome = dialogue.OutcomeFailed
		return reply
	}

	pred, err := s.nlu.Analyze(ctx, message)
	if err != nil {
		// Slots survive an NLU outage so the user can simply retry.
		reply.Text = s.replies.Handle(err, map[string]interface{}{"conversationId": conversationID, "stage": "nlu"})
		reply.Outcome = dialogue.OutcomeNotUnderstood
		return reply
	}

	entities := s.toEntities(log, pred.Entities)
	intent, rule := s.resolver.Resolve(dialogue.Turn{
		NLUIntent: pred.TopIntent,
		Message:   message,
		Entities:  entities,
		Prior:     prior,
	})
	if rule != dialogue.RuleNLU {
		metrics.IntentCorrectionsTotal.WithLabelValues(rule).Inc()
		log.Debug("intent corrected", map[string]interface{}{
			"nluIntent": pred.TopIntent,
			"intent":    string(intent),
			"rule":      rule,
		})
	}
	reply.Intent = intent
	reply.Rule = rule

	next := dialogue.Slots{}
	switch intent {
	case dialogue.IntentCreateOrder:
		out, err := s.createOrder.Execute(ctx, &createorder.Input{
			ConversationID: conversationID,
			Slots:          prior,
			Entities:       entities,
			Message:        message,
		})
		if err == nil {
			reply.Text, reply.Outcome, next = out.Reply, out.Outcome, out.Slots
		}
		s.fail(reply, err, conversationID)

	case dialogue.IntentQueryOrder:
		out, err := s.queryOrder.Execute(ctx, &queryorder.Input{Entities: entities})
		if err == nil {
			reply.Text, reply.Outcome = out.Reply, out.Outcome
		}
		s.fail(reply, err, conversationID)

	case dialogue.IntentPayOrder:
		out, err := s.payOrder.Execute(ctx, &payorder.Input{ConversationID: conversationID, Entities: entities})
		if err == nil {
			reply.Text, reply.Outcome = out.Reply, out.Outcome
		}
		s.fail(reply, err, conversationID)

	case dialogue.IntentAnswerFAQ:
		out, err := s.answerFAQ.Execute(ctx, &answerfaq.Input{Entities: entities})
		if err == nil {
			reply.Text, reply.Outcome = out.Reply, out.Outcome
		}
		s.fail(reply, err, conversationID)

	default:
		reply.Text = ReplyUnrecognized
		reply.Outcome = dialogue.OutcomeNotUnderstood
	}

	if err := s.sessions.Save(ctx, conversationID, next); err != nil {
		s.replies.Handle(err, map[string]interface{}{"conversationId": conversationID, "stage": "save_session"})
	}
	return reply
}

// fail replaces the reply with the fallback for err, if any.
func (s *Service) fail(reply *Reply, err error, conversationID string) {
	if err == nil {
		return
	}
	reply.Text = s.replies.Handle(err, map[string]interface{}{
		"conversationId": conversationID,
		"intent":         string(reply.Intent),
	})
	reply.Outcome = dialogue.OutcomeFailed
}

func (s *Service) toEntities(log logger.Logger, in []clu.Entity) []dialogue.Entity {
	out := make([]dialogue.Entity, 0, len(in))
	for _, e := range in {
		ent := dialogue.NewEntity(e.Category, e.Text)
		if !ent.Known() {
			log.Warn("unrecognized entity category", map[string]interface{}{
				"category": e.Category,
				"text":     e.Text,
			})
		}
		out = append(out, ent)
	}
	return out
}
