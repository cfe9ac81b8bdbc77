package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/logger"
	"github.com/armory-market/armory-backend/pkg/metrics"
)

const (
	// apologyMessage replaces the reply when the model round trip fails.
	// The turn still ends normally; model outages are never fatal.
	apologyMessage = "요청 처리 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."
	// emptyModelMessage covers a successful round trip with no text.
	emptyModelMessage = "죄송합니다. 답변을 생성하지 못했습니다."
	// sentinelHeader prefixes the deterministic catalog dump.
	sentinelHeader = "상품 목록:\n"
)

const personaPrompt = `You are the shopkeeper of 암시장 무기고, a fantasy weapon storefront. Reply in Korean, warm and concise, as a seasoned arms dealer speaking to an adventurer.

Rules:
- Use the provided tools for every catalog lookup, order, and history request. Never invent products, prices, or stock.
- Never guess or fabricate a customer's email or name. If a tool reports EMAIL_REQUIRED or NAME_REQUIRED, ask the customer for exactly that and nothing else.
- When the customer refers to a product by position ("2번째", "the 2nd one"), pass that ordinal reference to the tool unchanged.
- Relay tool failure messages to the customer faithfully; do not promise an order went through when it did not.`

// ChatRequest is one user turn. Identity fields come from the
// authenticated request, when there is one, and seed the session on
// first contact only; identity already learned in-conversation wins.
type ChatRequest struct {
	SessionID string
	Message   string
	UserID    uuid.UUID
	Email     string
	Name      string
}

// ChatResponse is the assistant's turn. Products carries the bounded
// card-rendering list when a search or recommendation ran this turn.
type ChatResponse struct {
	SessionID string           `json:"session_id"`
	Reply     string           `json:"reply"`
	Products  []models.Product `json:"products,omitempty"`
}

// Service runs conversational turns.
type Service interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type service struct {
	store   *Store
	ops     *Ops
	model   ModelClient
	tools   []ai.ToolRef
	cfg     config.AssistantConfig
	logg    *logger.Logger
	metrics *metrics.AssistantMetrics
	now     func() time.Time
}

// ServiceParams bundles orchestrator dependencies. Tools must already be
// registered with the model runtime backing Model.
type ServiceParams struct {
	Store   *Store
	Ops     *Ops
	Model   ModelClient
	Tools   []ai.ToolRef
	Config  config.AssistantConfig
	Logger  *logger.Logger
	Metrics *metrics.AssistantMetrics
	Now     func() time.Time
}

// NewService constructs the conversation orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.Ops == nil {
		return nil, fmt.Errorf("tool operations are required")
	}
	if params.Model == nil {
		return nil, fmt.Errorf("model client is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:   params.Store,
		ops:     params.Ops,
		model:   params.Model,
		tools:   params.Tools,
		cfg:     params.Config,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Chat runs one turn: claim the session, classify locally, short-circuit
// searches and the sentinel, otherwise hand the transcript to the model
// with the tool registry. Every path out of here appends exactly one
// assistant message and releases the session.
func (s *service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	sess, err := s.store.BeginTurn(req.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.store.EndTurn(sess.ID)

	if s.logg != nil {
		ctx = s.logg.WithChatSession(ctx, sess.ID)
	}

	if sess.Email == "" && req.Email != "" {
		sess.Email = strings.ToLower(strings.TrimSpace(req.Email))
		sess.Name = req.Name
		sess.UserID = req.UserID
	}

	started := s.now()
	sess.Append(enums.ChatRoleUser, text, started)
	sess.takeResultsShown()

	// Bound local store work so a slow database cannot hold the session
	// claim indefinitely. The model call carries its own timeout.
	localCtx := ctx
	if s.cfg.StoreCallBudget > 0 {
		var cancel context.CancelFunc
		localCtx, cancel = context.WithTimeout(ctx, s.cfg.StoreCallBudget)
		defer cancel()
	}

	catalogProducts, catalogErr := s.ops.catalog.List(localCtx)

	intent := ClassifyIntent(text, catalogTerms(catalogProducts))
	switch intent.Kind {
	case IntentSentinel:
		s.observeTurn(metrics.TurnSentinel, started)
		if catalogErr != nil {
			return s.reply(sess, apologyMessage, nil), nil
		}
		return s.reply(sess, sentinelHeader+formatCatalogNames(catalogProducts), nil), nil

	case IntentSearch:
		result := s.ops.SearchProducts(localCtx, sess, intent.Query)
		if result.Success && len(result.Products) > 0 {
			s.observeTurn(metrics.TurnSearch, started)
			return s.reply(sess, result.Message, s.capDisplay(result.Products)), nil
		}
		// empty catalog or store failure; let the model talk it through
	}

	answer, err := s.model.Generate(withSession(ctx, sess), s.systemPrompt(sess), s.historyMessages(sess), s.tools, s.maxToolRounds())
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "assistant.model_failed", err)
		}
		s.observeTurn(metrics.TurnModelError, started)
		return s.reply(sess, apologyMessage, nil), nil
	}
	s.observeTurn(metrics.TurnModel, started)
	if strings.TrimSpace(answer) == "" {
		answer = emptyModelMessage
	}

	var attached []models.Product
	if sess.takeResultsShown() {
		attached = s.capDisplay(sess.LastResults)
	}
	return s.reply(sess, answer, attached), nil
}

func (s *service) observeTurn(outcome string, started time.Time) {
	s.metrics.ObserveTurn(outcome, s.now().Sub(started))
}

func (s *service) reply(sess *Session, text string, products []models.Product) *ChatResponse {
	sess.Append(enums.ChatRoleAssistant, text, s.now())
	return &ChatResponse{SessionID: sess.ID, Reply: text, Products: products}
}

// systemPrompt injects the resolved identity and a numbered rendering of
// the last shown products, so the model maps ordinal references to
// concrete ids instead of guessing.
func (s *service) systemPrompt(sess *Session) string {
	var b strings.Builder
	b.WriteString(personaPrompt)

	if sess.Email != "" {
		b.WriteString("\n\nCurrent customer: ")
		if sess.Name != "" {
			b.WriteString(sess.Name)
			b.WriteString(" <")
			b.WriteString(sess.Email)
			b.WriteString(">")
		} else {
			b.WriteString(sess.Email)
		}
	} else {
		b.WriteString("\n\nCurrent customer: anonymous (no email known yet).")
	}

	if len(sess.LastResults) > 0 {
		b.WriteString("\n\nProducts last shown to the customer, in order:")
		for i, p := range sess.LastResults {
			fmt.Fprintf(&b, "\n%d. [id=%s] %s - %s", i+1, p.ID, p.DisplayName(), formatPrice(p.PriceUnits))
		}
	}
	return b.String()
}

// historyMessages converts the bounded recent transcript, including the
// just-appended user message, into model messages.
func (s *service) historyMessages(sess *Session) []*ai.Message {
	limit := s.cfg.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	recent := sess.Recent(limit)
	messages := make([]*ai.Message, 0, len(recent))
	for _, m := range recent {
		if m.Role == enums.ChatRoleAssistant {
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		} else {
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	return messages
}

func (s *service) maxToolRounds() int {
	if s.cfg.MaxToolRounds > 0 {
		return s.cfg.MaxToolRounds
	}
	return 3
}

func (s *service) capDisplay(products []models.Product) []models.Product {
	limit := s.cfg.DisplayLimit
	if limit <= 0 {
		limit = 6
	}
	if len(products) <= limit {
		return products
	}
	return products[:limit]
}

// catalogTerms derives intent keywords from the live catalog: product
// names, localized names, and categories, lowercased. Single-rune terms
// are dropped; they match everything.
func catalogTerms(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products)*3)
	terms := make([]string, 0, len(products)*3)
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if utf8.RuneCountInString(term) < 2 {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	for _, p := range products {
		add(p.Name)
		add(p.NameLocal)
		add(string(p.Category))
	}
	return terms
}
