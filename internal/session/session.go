package session

import (
	"errors"
	"log"
	"math/rand"
	"sync"

	"blackjack-engine/internal/game"
	"blackjack-engine/internal/probability"
	"blackjack-engine/internal/strategy"
)

// DefaultPenetration после 75% шуза перед раздачей идет перетасовка.
const DefaultPenetration = 0.75

type shoe interface {
	game.CardSource
	Reset()
	Penetration() float64
}

type Options struct {
	Rules       game.Rules
	Penetration float64
	Rand        *rand.Rand
}

// Session один стол: шуз, текущий раунд, подсказчик и счетчик карт.
// Все методы потокобезопасны, действия внутри сессии выполняются по очереди.
type Session struct {
	mu          sync.Mutex
	rules       game.Rules
	penetration float64
	rng         *rand.Rand
	shoe        shoe
	phase       game.Phase
	advisor     *strategy.Advisor
	engine      *probability.Engine
	// counted открытые карты текущего раунда, уже переданные счетчику
	counted  map[game.Card]int
	shuffles int
}

func New(opts Options) (*Session, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Penetration <= 0 || opts.Penetration > 1 {
		opts.Penetration = DefaultPenetration
	}

	return &Session{
		rules:       opts.Rules,
		penetration: opts.Penetration,
		rng:         opts.Rand,
		shoe:        game.NewShoe(opts.Rules.Decks, opts.Rand),
		advisor:     strategy.NewAdvisor(opts.Rules),
		engine:      probability.NewEngine(opts.Rules),
		counted:     make(map[game.Card]int),
	}, nil
}

func (s *Session) Rules() game.Rules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules
}

// SetRules меняет правила стола между раундами. Шуз, таблица стратегии
// и счетчик строятся заново.
func (s *Session) SetRules(rules game.Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inRound() {
		return game.ReasonRoundInProgress
	}
	s.rules = rules
	s.shoe = game.NewShoe(rules.Decks, s.rng)
	s.advisor.SetRules(rules)
	s.engine.SetRules(rules)
	s.phase = nil
	clear(s.counted)
	return nil
}

func (s *Session) Phase() game.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) InRound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inRound()
}

func (s *Session) inRound() bool {
	switch s.phase.(type) {
	case game.PlayerTurn, game.DealerTurn:
		return true
	}
	return false
}

// Shuffles сколько раз шуз перетасовывался.
func (s *Session) Shuffles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffles
}

// Deal начинает новый раунд.
func (s *Session) Deal(bet int) (game.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inRound() {
		return s.phase, game.ReasonRoundInProgress
	}
	if bet <= 0 {
		return s.phase, game.ReasonInvalidBet
	}

	if s.shoe.Penetration() >= s.penetration {
		s.reshuffle()
	}
	clear(s.counted)

	phase, err := game.Deal(s.shoe, bet, s.rules)
	if errors.Is(err, game.ReasonShoeEmpty) {
		s.reshuffle()
		phase, err = game.Deal(s.shoe, bet, s.rules)
	}
	if err != nil {
		return s.phase, err
	}

	s.phase = phase
	s.count()
	return s.phase, nil
}

// Act применяет действие игрока. Когда все руки завершены, дилер
// доигрывает сразу и возвращается Settled.
func (s *Session) Act(action game.Action) (game.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == nil {
		return nil, game.ReasonNotPlayerTurn
	}

	next, err := game.Act(s.phase, action, s.shoe)
	if errors.Is(err, game.ReasonShoeEmpty) {
		s.reshuffle()
		next, err = game.Act(s.phase, action, s.shoe)
	}
	if err != nil {
		return s.phase, err
	}
	s.phase = next
	s.count()

	if dt, ok := s.phase.(game.DealerTurn); ok {
		if err := s.playDealer(dt); err != nil {
			return s.phase, err
		}
	}
	return s.phase, nil
}

func (s *Session) playDealer(dt game.DealerTurn) error {
	next, err := dt.Play(s.shoe)
	if errors.Is(err, game.ReasonShoeEmpty) {
		s.reshuffle()
		next, err = dt.Play(s.shoe)
	}
	if err != nil {
		return err
	}
	s.phase = next
	s.count()
	return nil
}

// reshuffle новый шуз обнуляет счет. Карты, лежащие на столе, снова
// передаются счетчику.
func (s *Session) reshuffle() {
	s.shoe.Reset()
	s.engine.ResetShoe()
	clear(s.counted)
	s.shuffles++
	log.Printf("Shoe reshuffled (%d decks)", s.rules.Decks)
	if s.inRound() {
		s.count()
	}
}

// count передает счетчику открытые карты, которых он еще не видел.
func (s *Session) count() {
	seen := make(map[game.Card]int)
	var fresh []game.Card
	for _, c := range game.VisibleCards(s.phase) {
		c.FaceUp = true
		seen[c]++
		if seen[c] > s.counted[c] {
			fresh = append(fresh, c)
			s.counted[c]++
		}
	}
	s.engine.UpdateDealtCards(fresh...)
}

// Hint подсказка базовой стратегии для текущей руки.
func (s *Session) Hint() (strategy.Advice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.phase.(game.PlayerTurn)
	if !ok {
		return strategy.Advice{}, game.ReasonNotPlayerTurn
	}
	return s.advisor.Recommend(pt.Current().Hand.Cards, pt.UpCard(), strategy.Options{
		CanDouble:    pt.CanDouble(),
		CanSplit:     pt.CanSplit(),
		CanSurrender: pt.CanSurrender(),
	}), nil
}

// Odds вероятности для текущей руки. Вне хода игрока только состав шуза
// и преимущество казино.
func (s *Session) Odds() probability.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pt, ok := s.phase.(game.PlayerTurn); ok {
		return s.engine.Snapshot(pt.Current().Hand.Cards, pt.UpCard())
	}
	return s.engine.Snapshot(nil, game.Card{})
}

func (s *Session) Count() probability.Composition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Composition()
}

func (s *Session) HouseEdge() probability.HouseEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.HouseEdge()
}

// Manager хранит сессии по chat id.
type Manager struct {
	sessions map[int64]*Session
	mu       sync.RWMutex
	opts     Options
}

func NewManager(opts Options) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		opts:     opts,
	}
}

func (m *Manager) Get(chatID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[chatID]
}

// GetOrCreate возвращает сессию чата, при первом обращении создает ее
// с правилами по умолчанию для менеджера.
func (m *Manager) GetOrCreate(chatID int64) (*Session, error) {
	if s := m.Get(chatID); s != nil {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[chatID]; ok {
		return s, nil
	}
	opts := m.opts
	// rand.Rand не потокобезопасен, каждой сессии свой источник
	if opts.Rand != nil {
		opts.Rand = rand.New(rand.NewSource(opts.Rand.Int63()))
	}
	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	m.sessions[chatID] = s
	return s, nil
}

func (m *Manager) Delete(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
