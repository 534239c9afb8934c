package bot

import (
	"log/slog"

	"trainbot/internal/logger"
	"trainbot/internal/session"
	"trainbot/internal/telegram"

	tele "gopkg.in/telebot.v4"
)

// Handler binds incoming Telegram updates to the conversation machine.
type Handler struct {
	machine *session.Machine
}

// New returns a handler serving the given conversation machine.
func New(machine *session.Machine) *Handler {
	return &Handler{machine: machine}
}

// Routes returns the bot endpoints. /start always shows the menu without
// touching conversation state; every other text goes through the machine.
func (h *Handler) Routes() []telegram.Route {
	return []telegram.Route{
		{Endpoint: "/start", Handler: h.onStart},
		{Endpoint: tele.OnText, Handler: h.onText},
	}
}

func (h *Handler) onStart(c tele.Context) error {
	telegram.WithHandler(c, "start")
	return telegram.SendText(c, session.Menu)
}

func (h *Handler) onText(c tele.Context) (err error) {
	ctx := telegram.WithHandler(c, "text")
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "bot", "panic.recovered",
				slog.Any("err", r),
			)
			err = telegram.SendText(c, session.MsgInternal)
		}
	}()

	reply := h.machine.Handle(ctx, chat.ID, c.Text())
	return telegram.SendText(c, reply)
}
