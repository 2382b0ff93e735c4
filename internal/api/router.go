package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blackjack-engine/internal/game"
	"blackjack-engine/internal/probability"
	"blackjack-engine/internal/strategy"
)

const maxBodyBytes = 64 << 10

type Server struct {
	rules   game.Rules
	advisor *strategy.Advisor
}

func NewServer(rules game.Rules) *Server {
	return &Server{
		rules:   rules,
		advisor: strategy.NewAdvisor(rules),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/rules", s.handleRules)
		r.Get("/chart", s.handleChart)
		r.Get("/house-edge", s.handleHouseEdge)
		r.Post("/strategy", s.handleStrategy)
		r.Post("/probability", s.handleProbability)
		r.Post("/resolve", s.handleResolve)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// rulesFor правила запроса поверх правил сервера.
func (s *Server) rulesFor(override *game.Rules) (game.Rules, error) {
	if override == nil {
		return s.rules, nil
	}
	if err := override.Validate(); err != nil {
		return game.Rules{}, err
	}
	return *override, nil
}

func parseUp(up string) (game.Card, error) {
	if up == "" {
		return game.Card{}, errors.New("dealerUp is required")
	}
	return game.ParseCard(up)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rules)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": s.rules,
		"chart": s.advisor.Chart().Rows(),
	})
}

func (s *Server) handleHouseEdge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probability.NewEngine(s.rules).HouseEdge())
}

type strategyRequest struct {
	Player       []string    `json:"player"`
	DealerUp     string      `json:"dealerUp"`
	CanDouble    bool        `json:"canDouble"`
	CanSplit     bool        `json:"canSplit"`
	CanSurrender bool        `json:"canSurrender"`
	Rules        *game.Rules `json:"rules,omitempty"`
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cards, err := game.ParseCards(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	up, err := parseUp(req.DealerUp)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := strategy.Options{
		CanDouble:    req.CanDouble,
		CanSplit:     req.CanSplit,
		CanSurrender: req.CanSurrender,
	}

	chart := s.advisor.Chart()
	if req.Rules != nil {
		rules, err := s.rulesFor(req.Rules)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		chart = strategy.BuildChart(rules)
	}
	writeJSON(w, http.StatusOK, chart.Recommend(cards, up, opts))
}

type probabilityRequest struct {
	Player   []string    `json:"player"`
	DealerUp string      `json:"dealerUp"`
	Dealt    []string    `json:"dealt"`
	Rules    *game.Rules `json:"rules,omitempty"`
}

type probabilityResponse struct {
	probability.Snapshot
	// Accepted сколько карт из dealt учтено счетчиком
	Accepted int `json:"accepted"`
}

func (s *Server) handleProbability(w http.ResponseWriter, r *http.Request) {
	var req probabilityRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rules, err := s.rulesFor(req.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	player, err := game.ParseCards(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dealt, err := game.ParseCards(req.Dealt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var up game.Card
	if req.DealerUp != "" {
		if up, err = game.ParseCard(req.DealerUp); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	e := probability.NewEngine(rules)
	accepted := e.UpdateDealtCards(dealt...)
	// карты на столе тоже вышли из шуза
	e.UpdateDealtCards(player...)
	if !up.IsZero() {
		e.UpdateDealtCards(up)
	}
	writeJSON(w, http.StatusOK, probabilityResponse{
		Snapshot: e.Snapshot(player, up),
		Accepted: accepted,
	})
}

type resolveRequest struct {
	Player []string    `json:"player"`
	Dealer []string    `json:"dealer"`
	Bet    int         `json:"bet"`
	Rules  *game.Rules `json:"rules,omitempty"`
}

type resolveResponse struct {
	Result game.Result    `json:"result"`
	Payout int            `json:"payout"`
	Player game.HandState `json:"player"`
	Dealer game.HandState `json:"dealer"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rules, err := s.rulesFor(req.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Bet < 0 {
		writeError(w, http.StatusBadRequest, game.ReasonInvalidBet)
		return
	}

	playerCards, err := game.ParseCards(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dealerCards, err := game.ParseCards(req.Dealer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(playerCards) == 0 || len(dealerCards) == 0 {
		writeError(w, http.StatusBadRequest, game.ReasonNoCards)
		return
	}

	player := game.NewHand(playerCards...)
	dealer := game.NewHand(dealerCards...)
	result := game.DetermineRoundResult(player, dealer)

	writeJSON(w, http.StatusOK, resolveResponse{
		Result: result,
		Payout: game.Payout(result, req.Bet, rules),
		Player: player.State(),
		Dealer: dealer.State(),
	})
}
