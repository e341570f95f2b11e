package middleware

import (
	"strconv"

	"recite/internal/widget"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// WidgetKey is the context key holding the sender's widget
const WidgetKey = "widget"

// WidgetProvider returns the widget of an owner, creating it on first use
type WidgetProvider func(owner string) *widget.Widget

// Session attaches the sender's widget to the context
func Session(provide WidgetProvider, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				logger.Warn("Update without sender ignored")
				return nil
			}

			c.Set(WidgetKey, provide(strconv.FormatInt(sender.ID, 10)))
			return next(c)
		}
	}
}

// WidgetFrom returns the widget attached by Session
func WidgetFrom(c tele.Context) (*widget.Widget, bool) {
	w, ok := c.Get(WidgetKey).(*widget.Widget)
	return w, ok && w != nil
}
