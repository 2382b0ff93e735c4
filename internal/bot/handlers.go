package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"blackjack-engine/internal/config"
	"blackjack-engine/internal/game"
	"blackjack-engine/internal/player"
	"blackjack-engine/internal/session"
)

const (
	requestTimeout = 5 * time.Second
	historyLimit   = 10
	topLimit       = 10
)

type Handler struct {
	bot     *tgbotapi.BotAPI
	cfg     *config.Config
	players player.Repository
	tables  *session.Manager
	// chats сериализует обработку апдейтов одного чата
	chats sync.Map
}

func NewHandler(bot *tgbotapi.BotAPI, cfg *config.Config, repo player.Repository) *Handler {
	return &Handler{
		bot:     bot,
		cfg:     cfg,
		players: repo,
		tables: session.NewManager(session.Options{
			Rules:       cfg.Rules(),
			Penetration: cfg.Penetration,
		}),
	}
}

// ============== ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ ==============

func (h *Handler) lock(chatID int64) func() {
	mu, _ := h.chats.LoadOrStore(chatID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handler) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

func (h *Handler) getPlayer(ctx context.Context, chatID int64) (*player.Player, error) {
	return h.players.GetOrCreate(ctx, chatID, h.cfg.StartBalance, h.cfg.DefaultBet)
}

func (h *Handler) savePlayer(ctx context.Context, p *player.Player) {
	if err := h.players.Save(ctx, p); err != nil {
		log.Printf("Failed to save player: %v", err)
	}
}

func (h *Handler) table(chatID int64) (*session.Session, error) {
	return h.tables.GetOrCreate(chatID)
}

// userError текст ошибки для игрока: причины из game показываются как есть.
func userError(err error) string {
	var reason game.Reason
	if errors.As(err, &reason) {
		return "❌ " + reason.Error()
	}
	return "❌ Ошибка. Попробуйте позже."
}

// ============== ОТРИСОВКА РАУНДА ==============

// showPhase отправляет стол или, если раунд закончен, рассчитывает игрока.
func (h *Handler) showPhase(ctx context.Context, chatID int64, sess *session.Session, p *player.Player, phase game.Phase, header string) {
	switch ph := phase.(type) {
	case game.Settled:
		h.finishRound(ctx, chatID, sess, p, ph, header)
	case game.PlayerTurn:
		text := formatTable(ph)
		if header != "" {
			text = header + "\n\n" + text
		}
		h.sendWithKeyboard(chatID, text, GameKeyboard(keyboardOptions(ph, p.Balance)))
	}
}

func (h *Handler) finishRound(ctx context.Context, chatID int64, sess *session.Session, p *player.Player, s game.Settled, header string) {
	p.ApplyRound(s)
	h.savePlayer(ctx, p)

	record := player.NewHandRecord(chatID, s, sess.Count().TrueCount)
	if err := h.players.RecordHand(ctx, record); err != nil {
		log.Printf("Failed to record hand: %v", err)
	}

	text := formatSettled(s, p.Balance)
	if header != "" {
		text = header + "\n\n" + text
	}
	h.sendWithKeyboard(chatID, text, EndGameKeyboard(p.LastBet))
}

// ============== ОБРАБОТЧИКИ КОМАНД ==============

func (h *Handler) HandleStart(ctx context.Context, chatID int64) {
	p, err := h.getPlayer(ctx, chatID)
	if err != nil {
		log.Printf("Failed to get player %d: %v", chatID, err)
		h.send(chatID, "❌ Ошибка. Попробуйте позже.")
		return
	}

	h.send(chatID, fmt.Sprintf(
		"🎰 Добро пожаловать в Blackjack!\n\n"+
			"💵 Баланс: %d\n\n"+
			"/play <ставка> — играть\n"+
			"/hint — подсказка базовой стратегии\n"+
			"/odds — шансы текущей руки\n"+
			"/count — счет карт Hi-Lo\n"+
			"/edge — преимущество казино\n"+
			"/rules — правила стола\n"+
			"/balance — статистика\n"+
			"/history — последние раунды\n"+
			"/top — топ игроков\n"+
			"/help — правила игры",
		p.Balance))
}

func (h *Handler) HandleHelp(chatID int64) {
	rules := h.cfg.Rules()
	if sess, err := h.table(chatID); err == nil {
		rules = sess.Rules()
	}

	h.send(chatID,
		"📖 Правила Blackjack:\n\n"+
			"🎯 Цель: набрать 21 очко или больше дилера, не перебрав\n\n"+
			"📊 Очки:\n"+
			"• 2-10 — номинал\n"+
			"• J, Q, K — 10\n"+
			"• A — 11 или 1\n\n"+
			"🎮 Действия:\n"+
			"• Hit — взять карту\n"+
			"• Stand — остановиться\n"+
			"• Double — удвоить ставку и взять одну карту\n"+
			"• Split — разделить пару на две руки\n"+
			"• Сдаться — вернуть половину ставки (первым ходом)\n"+
			"• Страховка — половина ставки против блэкджека дилера с тузом\n\n"+
			fmt.Sprintf("🎰 Blackjack платит %s", rules.PayoutLabel()))
}

func (h *Handler) HandleBalance(ctx context.Context, chatID int64) {
	p, err := h.getPlayer(ctx, chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}

	h.send(chatID, fmt.Sprintf(
		"💰 Баланс: %d\n\n"+
			"📊 Статистика:\n"+
			"🎮 Игр: %d\n"+
			"✅ Побед: %d (%.1f%%)\n"+
			"❌ Поражений: %d\n"+
			"🤝 Ничьих: %d\n"+
			"🎰 Блэкджеков: %d\n"+
			"🏳 Сдач: %d",
		p.Balance, p.Games, p.Wins, p.WinRate(), p.Losses, p.Draws, p.Blackjacks, p.Surrenders))
}

func (h *Handler) HandleTop(ctx context.Context, chatID int64) {
	stats, err := h.players.GetTopByBalance(ctx, topLimit)
	if err != nil {
		log.Printf("Failed to get top: %v", err)
		h.send(chatID, "❌ Ошибка")
		return
	}

	if len(stats) == 0 {
		h.send(chatID, "🏆 Пока никто не играл!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Топ игроков:\n\n")

	medals := []string{"🥇", "🥈", "🥉"}
	for i, s := range stats {
		medal := fmt.Sprintf("%d.", i+1)
		if i < 3 {
			medal = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s %d 💰 | %d игр (%.0f%%)\n",
			medal, s.Balance, s.Games, s.WinRate))
	}

	h.send(chatID, sb.String())
}

func (h *Handler) HandleHistory(ctx context.Context, chatID int64) {
	hands, err := h.players.History(ctx, chatID, historyLimit)
	if err != nil {
		log.Printf("Failed to get history: %v", err)
		h.send(chatID, "❌ Ошибка")
		return
	}
	h.send(chatID, formatHistory(hands))
}

func (h *Handler) HandlePlay(ctx context.Context, chatID int64, args []string) {
	p, err := h.getPlayer(ctx, chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}

	bet := p.LastBet
	if bet <= 0 {
		bet = h.cfg.DefaultBet
	}
	if len(args) > 0 {
		if b, err := strconv.Atoi(args[0]); err == nil && b > 0 {
			bet = b
		} else {
			h.send(chatID, fmt.Sprintf("❌ Неверная ставка. Пример: /play %d", h.cfg.DefaultBet))
			return
		}
	}

	if bet < h.cfg.MinBet || bet > h.cfg.MaxBet {
		h.send(chatID, fmt.Sprintf("❌ Ставка от %d до %d", h.cfg.MinBet, h.cfg.MaxBet))
		return
	}

	sess, err := h.table(chatID)
	if err != nil {
		log.Printf("Failed to create session %d: %v", chatID, err)
		h.send(chatID, "❌ Ошибка")
		return
	}
	if sess.InRound() {
		h.send(chatID, userError(game.ReasonRoundInProgress))
		return
	}

	if !p.PlaceBet(bet) {
		h.send(chatID, fmt.Sprintf("❌ Недостаточно средств! Баланс: %d", p.Balance))
		return
	}

	phase, err := sess.Deal(bet)
	if err != nil {
		p.Balance += bet
		log.Printf("Failed to deal for %d: %v", chatID, err)
		h.send(chatID, userError(err))
		return
	}
	h.savePlayer(ctx, p)

	h.showPhase(ctx, chatID, sess, p, phase, fmt.Sprintf("💰 Ставка: %d | Баланс: %d", bet, p.Balance))
}

func (h *Handler) HandleHint(chatID int64) {
	sess, err := h.table(chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}

	advice, err := sess.Hint()
	if err != nil {
		h.send(chatID, userError(err))
		return
	}
	h.send(chatID, formatAdvice(advice))
}

func (h *Handler) HandleOdds(chatID int64) {
	sess, err := h.table(chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}
	h.send(chatID, formatOdds(sess.Odds()))
}

func (h *Handler) HandleCount(chatID int64) {
	sess, err := h.table(chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}
	h.send(chatID, formatCount(sess.Count()))
}

func (h *Handler) HandleEdge(chatID int64) {
	sess, err := h.table(chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}
	h.send(chatID, formatEdge(sess.HouseEdge()))
}

func (h *Handler) HandleRules(chatID int64, args []string) {
	sess, err := h.table(chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}

	if len(args) < 2 {
		h.send(chatID, formatRules(sess.Rules()))
		return
	}

	rules, err := parseRuleChange(sess.Rules(), args[0], args[1])
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	if err := sess.SetRules(rules); err != nil {
		h.send(chatID, userError(err))
		return
	}
	h.send(chatID, "✅ Правила обновлены, шуз перетасован\n\n"+formatRules(rules))
}

// ============== ОБРАБОТЧИКИ CALLBACK ==============

func (h *Handler) HandleCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	defer h.lock(chatID)()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch data {
	case CallbackPlayAgain:
		h.answerCallback(callback.ID, "")
		h.HandlePlay(ctx, chatID, nil)
		return
	case CallbackBalance:
		p, err := h.getPlayer(ctx, chatID)
		if err != nil {
			h.answerCallback(callback.ID, "Ошибка")
			return
		}
		h.answerCallback(callback.ID, fmt.Sprintf("💵 %d", p.Balance))
		return
	case CallbackHint:
		h.answerCallback(callback.ID, "")
		h.HandleHint(chatID)
		return
	case CallbackOdds:
		h.answerCallback(callback.ID, "")
		h.HandleOdds(chatID)
		return
	}

	action, ok := callbackActions[data]
	if !ok {
		h.answerCallback(callback.ID, "Неизвестное действие")
		return
	}

	sess := h.tables.Get(chatID)
	if sess == nil || !sess.InRound() {
		h.answerCallback(callback.ID, "Игра не активна")
		return
	}

	p, err := h.getPlayer(ctx, chatID)
	if err != nil {
		h.answerCallback(callback.ID, "Ошибка")
		return
	}

	if msg := h.handleAction(ctx, chatID, sess, p, action); msg != "" {
		h.answerCallback(callback.ID, msg)
		return
	}
	h.answerCallback(callback.ID, "")
}

// handleAction списывает доплату, применяет действие и показывает стол.
// Возвращает текст ошибки для всплывающего ответа.
func (h *Handler) handleAction(ctx context.Context, chatID int64, sess *session.Session, p *player.Player, action game.Action) string {
	pt, ok := sess.Phase().(game.PlayerTurn)
	if !ok {
		return game.ReasonNotPlayerTurn.Error()
	}

	cost := pt.Cost(action)
	if cost > 0 {
		if err := p.Charge(cost); err != nil {
			return err.Error()
		}
	}

	phase, err := sess.Act(action)
	if err != nil {
		p.Balance += cost
		var reason game.Reason
		if errors.As(err, &reason) {
			return reason.Error()
		}
		log.Printf("Action %s failed for %d: %v", action, chatID, err)
		return "Ошибка"
	}
	refund := unusedStake(cost, pt, phase)
	p.Balance += refund
	h.savePlayer(ctx, p)

	header := ""
	switch {
	case refund > 0:
		header = fmt.Sprintf("🃏 У дилера блэкджек, доплата %d возвращена", refund)
	case action == game.ActionDouble:
		header = fmt.Sprintf("💰 Удвоено: +%d", cost)
	case action == game.ActionSplit:
		header = fmt.Sprintf("✂️ Сплит: +%d", cost)
	case action == game.ActionInsurance:
		header = fmt.Sprintf("🛡 Страховка: %d", cost)
	}
	h.showPhase(ctx, chatID, sess, p, phase, header)
	return ""
}

// unusedStake часть доплаты, которая не легла на стол. Так бывает, когда
// дилер с тузом открыл блэкджек раньше, чем применилось удвоение или сплит.
func unusedStake(cost int, before, after game.Phase) int {
	placed := game.Staked(after) - game.Staked(before)
	if placed >= cost {
		return 0
	}
	return cost - max(placed, 0)
}

// ============== ОБРАБОТЧИК СООБЩЕНИЙ ==============

func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := msg.Text
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return
	}

	defer h.lock(chatID)()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cmd := strings.ToLower(parts[0])
	// в группах команды приходят как /play@botname
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	args := parts[1:]

	switch cmd {
	case "/start":
		h.HandleStart(ctx, chatID)
	case "/help":
		h.HandleHelp(chatID)
	case "/play":
		h.HandlePlay(ctx, chatID, args)
	case "/balance":
		h.HandleBalance(ctx, chatID)
	case "/top":
		h.HandleTop(ctx, chatID)
	case "/history":
		h.HandleHistory(ctx, chatID)
	case "/hint":
		h.HandleHint(chatID)
	case "/odds":
		h.HandleOdds(chatID)
	case "/count":
		h.HandleCount(chatID)
	case "/edge":
		h.HandleEdge(chatID)
	case "/rules":
		h.HandleRules(chatID, args)
	}
}
