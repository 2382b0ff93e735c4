package game

// Phase одна из фаз раунда: PlayerTurn, DealerTurn или Settled. Каждая
// фаза хранит только свои поля, переходы возвращают новое значение.
type Phase interface {
	Name() string
	isPhase()
}

// Seat рука игрока со своей ставкой, после сплита их несколько.
type Seat struct {
	Hand        Hand `json:"hand"`
	Bet         int  `json:"bet"`
	Doubled     bool `json:"doubled,omitempty"`
	Stood       bool `json:"stood,omitempty"`
	Surrendered bool `json:"surrendered,omitempty"`
	SplitAces   bool `json:"splitAces,omitempty"`
}

func (s Seat) Done() bool {
	return s.Stood || s.Surrendered || s.Hand.IsBusted()
}

func cloneSeats(seats []Seat) []Seat {
	out := make([]Seat, len(seats))
	copy(out, seats)
	return out
}

type PlayerTurn struct {
	Rules     Rules  `json:"rules"`
	Seats     []Seat `json:"seats"`
	Active    int    `json:"active"`
	Dealer    Hand   `json:"dealer"`
	Insurance int    `json:"insurance,omitempty"`
	// InsuranceOpen дилер показывает туза и еще не заглядывал под карту.
	InsuranceOpen bool `json:"insuranceOpen,omitempty"`
	acted         bool
}

type DealerTurn struct {
	Rules     Rules  `json:"rules"`
	Seats     []Seat `json:"seats"`
	Dealer    Hand   `json:"dealer"`
	Insurance int    `json:"insurance,omitempty"`
}

type SettledSeat struct {
	Seat
	Result Result `json:"result"`
	Payout int    `json:"payout"`
}

type Settled struct {
	Rules           Rules         `json:"rules"`
	Seats           []SettledSeat `json:"seats"`
	Dealer          Hand          `json:"dealer"`
	Insurance       int           `json:"insurance,omitempty"`
	InsurancePayout int           `json:"insurancePayout,omitempty"`
}

func (PlayerTurn) Name() string { return "player_turn" }
func (DealerTurn) Name() string { return "dealer_turn" }
func (Settled) Name() string    { return "settled" }

func (PlayerTurn) isPhase() {}
func (DealerTurn) isPhase() {}
func (Settled) isPhase()    {}

// Deal раздает две карты игроку и дилеру, вторая карта дилера закрыта.
func Deal(src CardSource, bet int, rules Rules) (Phase, error) {
	if bet <= 0 {
		return nil, ReasonInvalidBet
	}

	var drawn [4]Card
	for i := range drawn {
		c, err := src.Draw()
		if err != nil {
			return nil, err
		}
		drawn[i] = c
	}

	hole := drawn[3]
	hole.FaceUp = false

	player := NewHand(drawn[0], drawn[2])
	dealer := NewHand(drawn[1], hole)

	pt := PlayerTurn{
		Rules:  rules,
		Seats:  []Seat{{Hand: player, Bet: bet}},
		Dealer: dealer,
	}

	up := drawn[1]
	switch {
	case player.IsBlackjack():
		return pt.toDealer().settle(), nil
	case up.Rank.IsTen() && dealer.IsBlackjack():
		return pt.toDealer().settle(), nil
	case up.Rank == Ace:
		pt.InsuranceOpen = true
	}
	return pt, nil
}

func (p PlayerTurn) UpCard() Card {
	return p.Dealer.Cards[0]
}

func (p PlayerTurn) Current() Seat {
	return p.Seats[p.Active]
}

func (p PlayerTurn) clone() PlayerTurn {
	q := p
	q.Seats = cloneSeats(p.Seats)
	return q
}

func (p PlayerTurn) CanDouble() bool {
	s := p.Current()
	if s.Hand.Len() != 2 || s.Doubled || s.SplitAces {
		return false
	}
	return !s.Hand.FromSplit || p.Rules.DoubleAfterSplit
}

func (p PlayerTurn) CanSplit() bool {
	s := p.Current()
	if !s.Hand.CanSplit() || s.SplitAces {
		return false
	}
	return len(p.Seats) < p.Rules.MaxSplitHands
}

func (p PlayerTurn) CanSurrender() bool {
	return p.Rules.Surrender && !p.acted && len(p.Seats) == 1 && p.Current().Hand.Len() == 2
}

// CanInsure страховка это половина ставки, на ставку в 1 фишку ее нет.
func (p PlayerTurn) CanInsure() bool {
	return p.InsuranceOpen && p.Cost(ActionInsurance) > 0
}

// Cost сколько фишек нужно доплатить за действие.
func (p PlayerTurn) Cost(a Action) int {
	switch a {
	case ActionDouble, ActionSplit:
		return p.Current().Bet
	case ActionInsurance:
		return p.Seats[0].Bet / 2
	}
	return 0
}

// Legal доступные сейчас действия.
func (p PlayerTurn) Legal() []Action {
	actions := []Action{ActionHit, ActionStand}
	if p.CanDouble() {
		actions = append(actions, ActionDouble)
	}
	if p.CanSplit() {
		actions = append(actions, ActionSplit)
	}
	if p.CanSurrender() {
		actions = append(actions, ActionSurrender)
	}
	if p.CanInsure() {
		actions = append(actions, ActionInsurance)
	}
	return actions
}

func (p PlayerTurn) Apply(a Action, src CardSource) (Phase, error) {
	switch a {
	case ActionHit:
		return p.Hit(src)
	case ActionStand:
		return p.Stand()
	case ActionDouble:
		return p.Double(src)
	case ActionSplit:
		return p.Split(src)
	case ActionSurrender:
		return p.Surrender()
	case ActionInsurance:
		return p.TakeInsurance()
	}
	return p, ReasonUnknownAction
}

// peek отказ от страховки: дилер смотрит закрытую карту.
func (p PlayerTurn) peek() (PlayerTurn, Phase) {
	if !p.InsuranceOpen {
		return p, nil
	}
	if p.Dealer.IsBlackjack() {
		return p, p.toDealer().settle()
	}
	q := p.clone()
	q.InsuranceOpen = false
	return q, nil
}

func (p PlayerTurn) TakeInsurance() (Phase, error) {
	if !p.CanInsure() {
		return p, ReasonInsuranceUnavailable
	}
	q := p.clone()
	q.Insurance = q.Seats[0].Bet / 2
	q.InsuranceOpen = false
	if q.Dealer.IsBlackjack() {
		return q.toDealer().settle(), nil
	}
	return q, nil
}

func (p PlayerTurn) Hit(src CardSource) (Phase, error) {
	p, settled := p.peek()
	if settled != nil {
		return settled, nil
	}

	card, err := src.Draw()
	if err != nil {
		return p, err
	}

	q := p.clone()
	q.acted = true
	seat := &q.Seats[q.Active]
	seat.Hand = seat.Hand.Add(card)
	if seat.Hand.Best() >= 21 {
		seat.Stood = true
	}
	return q.advance(), nil
}

func (p PlayerTurn) Stand() (Phase, error) {
	p, settled := p.peek()
	if settled != nil {
		return settled, nil
	}

	q := p.clone()
	q.acted = true
	q.Seats[q.Active].Stood = true
	return q.advance(), nil
}

func (p PlayerTurn) Double(src CardSource) (Phase, error) {
	if !p.CanDouble() {
		return p, ReasonCannotDouble
	}
	p, settled := p.peek()
	if settled != nil {
		return settled, nil
	}

	card, err := src.Draw()
	if err != nil {
		return p, err
	}

	q := p.clone()
	q.acted = true
	seat := &q.Seats[q.Active]
	seat.Bet *= 2
	seat.Doubled = true
	seat.Hand = seat.Hand.Add(card)
	seat.Stood = true
	return q.advance(), nil
}

func (p PlayerTurn) Split(src CardSource) (Phase, error) {
	if !p.CanSplit() {
		return p, ReasonCannotSplit
	}
	p, settled := p.peek()
	if settled != nil {
		return settled, nil
	}

	first, err := src.Draw()
	if err != nil {
		return p, err
	}
	second, err := src.Draw()
	if err != nil {
		return p, err
	}

	q := p.clone()
	q.acted = true
	orig := q.Seats[q.Active]
	isAces := orig.Hand.Cards[0].Rank == Ace

	left := Seat{
		Hand:      Hand{Cards: []Card{orig.Hand.Cards[0], first}, FromSplit: true},
		Bet:       orig.Bet,
		SplitAces: isAces,
	}
	right := Seat{
		Hand:      Hand{Cards: []Card{orig.Hand.Cards[1], second}, FromSplit: true},
		Bet:       orig.Bet,
		SplitAces: isAces,
	}
	// на тузы только по одной карте
	for _, s := range []*Seat{&left, &right} {
		if isAces || s.Hand.Best() == 21 {
			s.Stood = true
		}
	}

	seats := make([]Seat, 0, len(q.Seats)+1)
	seats = append(seats, q.Seats[:q.Active]...)
	seats = append(seats, left, right)
	seats = append(seats, q.Seats[q.Active+1:]...)
	q.Seats = seats

	if q.Seats[q.Active].Done() {
		return q.advance(), nil
	}
	return q, nil
}

func (p PlayerTurn) Surrender() (Phase, error) {
	if !p.CanSurrender() {
		return p, ReasonCannotSurrender
	}
	p, settled := p.peek()
	if settled != nil {
		return settled, nil
	}

	q := p.clone()
	q.acted = true
	q.Seats[q.Active].Surrendered = true
	return q.advance(), nil
}

// advance переход на следующую незавершенную руку или к дилеру.
func (p PlayerTurn) advance() Phase {
	for p.Active < len(p.Seats) && p.Seats[p.Active].Done() {
		p.Active++
	}
	if p.Active < len(p.Seats) {
		return p
	}
	return p.toDealer()
}

func (p PlayerTurn) toDealer() DealerTurn {
	return DealerTurn{
		Rules:     p.Rules,
		Seats:     cloneSeats(p.Seats),
		Dealer:    p.Dealer,
		Insurance: p.Insurance,
	}
}

// Play дилер открывает карту и добирает по правилам стола.
// Если все руки игрока сгорели или сданы, дилер не добирает.
func (d DealerTurn) Play(src CardSource) (Phase, error) {
	dealer := NewHand()
	for _, c := range d.Dealer.Cards {
		c.FaceUp = true
		dealer = dealer.Add(c)
	}

	live := false
	for _, s := range d.Seats {
		if !s.Surrendered && !s.Hand.IsBusted() {
			live = true
			break
		}
	}

	if live && !dealer.IsBlackjack() {
		for DealerShouldHit(dealer, d.Rules) {
			c, err := src.Draw()
			if err != nil {
				return d, err
			}
			dealer = dealer.Add(c)
		}
	}

	next := d
	next.Dealer = dealer
	return next.settle(), nil
}

func (d DealerTurn) settle() Settled {
	dealer := NewHand()
	for _, c := range d.Dealer.Cards {
		c.FaceUp = true
		dealer = dealer.Add(c)
	}

	s := Settled{
		Rules:     d.Rules,
		Seats:     make([]SettledSeat, 0, len(d.Seats)),
		Dealer:    dealer,
		Insurance: d.Insurance,
	}
	for _, seat := range d.Seats {
		result := ResultSurrender
		if !seat.Surrendered {
			result = DetermineRoundResult(seat.Hand, dealer)
		}
		s.Seats = append(s.Seats, SettledSeat{
			Seat:   seat,
			Result: result,
			Payout: Payout(result, seat.Bet, d.Rules),
		})
	}
	if d.Insurance > 0 && dealer.IsBlackjack() {
		s.InsurancePayout = d.Insurance * 3
	}
	return s
}

func (s Settled) TotalBet() int {
	total := s.Insurance
	for _, seat := range s.Seats {
		total += seat.Bet
	}
	return total
}

func (s Settled) TotalPayout() int {
	total := s.InsurancePayout
	for _, seat := range s.Seats {
		total += seat.Payout
	}
	return total
}

func (s Settled) Net() int {
	return s.TotalPayout() - s.TotalBet()
}

func seatBets(seats []Seat) int {
	total := 0
	for _, s := range seats {
		total += s.Bet
	}
	return total
}

// Staked сколько фишек на столе: ставки всех рук и страховка. Если дилер
// открыл блэкджек до удвоения или сплита, доплата сюда не попадает.
func Staked(phase Phase) int {
	switch p := phase.(type) {
	case PlayerTurn:
		return seatBets(p.Seats) + p.Insurance
	case DealerTurn:
		return seatBets(p.Seats) + p.Insurance
	case Settled:
		return p.TotalBet()
	}
	return 0
}

// Act общий вход для запросов действий из UI.
func Act(phase Phase, a Action, src CardSource) (Phase, error) {
	pt, ok := phase.(PlayerTurn)
	if !ok {
		return phase, ReasonNotPlayerTurn
	}
	return pt.Apply(a, src)
}

// VisibleCards все открытые карты раунда: руки игрока и открытые карты дилера.
func VisibleCards(phase Phase) []Card {
	var seats []Seat
	var dealer Hand

	switch p := phase.(type) {
	case PlayerTurn:
		seats, dealer = p.Seats, p.Dealer
	case DealerTurn:
		seats, dealer = p.Seats, p.Dealer
	case Settled:
		for _, s := range p.Seats {
			seats = append(seats, s.Seat)
		}
		dealer = p.Dealer
	default:
		return nil
	}

	var cards []Card
	for _, s := range seats {
		cards = append(cards, s.Hand.Cards...)
	}
	for _, c := range dealer.Cards {
		if c.FaceUp {
			cards = append(cards, c)
		}
	}
	return cards
}
