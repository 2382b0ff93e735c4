package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"blackjack-engine/internal/game"
)

const (
	CallbackHit       = "hit"
	CallbackStand     = "stand"
	CallbackDouble    = "double"
	CallbackSplit     = "split"
	CallbackSurrender = "surrender"
	CallbackInsurance = "insurance"
	CallbackHint      = "hint"
	CallbackOdds      = "odds"
	CallbackPlayAgain = "play_again"
	CallbackBalance   = "balance"
)

var callbackActions = map[string]game.Action{
	CallbackHit:       game.ActionHit,
	CallbackStand:     game.ActionStand,
	CallbackDouble:    game.ActionDouble,
	CallbackSplit:     game.ActionSplit,
	CallbackSurrender: game.ActionSurrender,
	CallbackInsurance: game.ActionInsurance,
}

type GameKeyboardOptions struct {
	CanDouble    bool
	CanSplit     bool
	CanSurrender bool
	CanInsure    bool
}

// keyboardOptions кнопки, доступные по правилам и по балансу игрока.
func keyboardOptions(pt game.PlayerTurn, balance int) GameKeyboardOptions {
	return GameKeyboardOptions{
		CanDouble:    pt.CanDouble() && balance >= pt.Cost(game.ActionDouble),
		CanSplit:     pt.CanSplit() && balance >= pt.Cost(game.ActionSplit),
		CanSurrender: pt.CanSurrender(),
		CanInsure:    pt.CanInsure() && balance >= pt.Cost(game.ActionInsurance),
	}
}

func GameKeyboard(opts GameKeyboardOptions) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("👊 Hit", CallbackHit),
		tgbotapi.NewInlineKeyboardButtonData("✋ Stand", CallbackStand),
	}

	if opts.CanDouble {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("💰 Double", CallbackDouble))
	}
	if opts.CanSplit {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✂️ Split", CallbackSplit))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{row}

	var extra []tgbotapi.InlineKeyboardButton
	if opts.CanSurrender {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("🏳 Сдаться", CallbackSurrender))
	}
	if opts.CanInsure {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("🛡 Страховка", CallbackInsurance))
	}
	extra = append(extra,
		tgbotapi.NewInlineKeyboardButtonData("💡 Подсказка", CallbackHint),
		tgbotapi.NewInlineKeyboardButtonData("📈 Шансы", CallbackOdds),
	)
	rows = append(rows, extra)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func EndGameKeyboard(lastBet int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🔄 Ещё (%d)", lastBet),
				CallbackPlayAgain,
			),
			tgbotapi.NewInlineKeyboardButtonData("💵 Баланс", CallbackBalance),
		),
	)
}
