package intake

import (
	"context"

	tg "github.com/homeservice/hsbot/core/telegram"
	"github.com/homeservice/hsbot/core/telegram/commands"
	tghelpers "github.com/homeservice/hsbot/core/telegram/helpers"
	"github.com/homeservice/hsbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyColumn(MenuServices, MenuAbout, MenuReview)
}

func servicesMenu() *tele.ReplyMarkup {
	return keyboard.ReplyColumn(MenuIndividual, MenuCompany, MenuBack)
}

// Handlers binds the dialogue engine to telebot endpoints.
type Handlers struct {
	engine *Engine
}

// NewHandlers wraps the engine with transport glue.
func NewHandlers(e *Engine) *Handlers {
	return &Handlers{engine: e}
}

// Register wires commands, menu items, and dialogue state handlers.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Description: "Главное меню",
		Handler:     h.menuReply(h.engine.Welcome),
	})

	reg.RegisterMenuItem(MenuServices, h.menuReply(h.engine.Services))
	reg.RegisterMenuItem(MenuAbout, h.menuReply(h.engine.About))
	reg.RegisterMenuItem(MenuReview, h.menuReply(h.engine.StartReview))
	reg.RegisterMenuItem(MenuIndividual, h.menuReply(func(userID int64) Reply {
		return h.engine.BeginIntake(userID, false)
	}))
	reg.RegisterMenuItem(MenuCompany, h.menuReply(func(userID int64) Reply {
		return h.engine.BeginIntake(userID, true)
	}))
	reg.RegisterMenuItem(MenuBack, h.menuReply(h.engine.Back))

	s := h.engine.Sessions()
	s.RegisterHandler(StateAwaitingDescription, h.stateReply(h.engine.HandleDescription))
	s.RegisterHandler(StateAwaitingTaxID, h.stateReply(h.engine.HandleTaxID))
	s.RegisterHandler(StateAwaitingName, h.stateReply(h.engine.HandleName))
	s.RegisterHandler(StateAwaitingPhone, h.stateReply(h.engine.HandlePhone))
	s.RegisterHandler(StateAwaitingReview, h.stateReply(h.engine.HandleReview))
}

func (h *Handlers) menuReply(fn func(userID int64) Reply) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.send(c, fn(c.Sender().ID))
	}
}

func (h *Handlers) stateReply(fn func(ctx context.Context, userID int64, text string) Reply) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		return h.send(c, fn(ctx, c.Sender().ID, c.Text()))
	}
}

func (h *Handlers) send(c tele.Context, r Reply) error {
	switch r.Keyboard {
	case KeyboardMain:
		return tghelpers.SendMenu(c, r.Text, mainMenu())
	case KeyboardServices:
		return tghelpers.SendMenu(c, r.Text, servicesMenu())
	default:
		return tghelpers.SendText(c, r.Text)
	}
}
