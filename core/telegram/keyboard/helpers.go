// Package keyboard builds inline keyboards whose callback data is sent verbatim.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is either a callback button (Data) or a link button (URL).
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

func (b InlineBtn) inline() tele.InlineButton {
	if b.URL != "" {
		return tele.InlineButton{Text: b.Text, URL: b.URL}
	}
	return tele.InlineButton{Text: b.Text, Data: b.Data}
}

// InlineRows builds an inline keyboard from rows of buttons. Empty rows are dropped;
// nil is returned when nothing remains.
func InlineRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for i, b := range row {
			r[i] = b.inline()
		}
		inline = append(inline, r)
	}
	if len(inline) == 0 {
		return nil
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// Column places every button on its own row.
func Column(buttons ...InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return InlineRows(rows...)
}

// RemoveKeyboard returns a markup that hides a reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
