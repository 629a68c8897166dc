package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/capitanshop/shopbot/core/telegram/keyboard"
	"github.com/capitanshop/shopbot/internal/chat"
	"github.com/capitanshop/shopbot/internal/media"
)

var errNotAttached = errors.New("app: bot not started")

// Gateway reaches Telegram outside of an update: broadcasts and file downloads.
type Gateway struct {
	bot atomic.Pointer[tele.Bot]
}

// Attach makes b the bot used for sends; called once the bot is built.
func (g *Gateway) Attach(b *tele.Bot) {
	g.bot.Store(b)
}

func (g *Gateway) SendTo(_ context.Context, userID int64, r chat.Reply) error {
	b := g.bot.Load()
	if b == nil {
		return errNotAttached
	}
	what, opts, err := render(r)
	if err != nil {
		return err
	}
	_, err = b.Send(tele.ChatID(userID), what, opts)
	return err
}

func (g *Gateway) Fetch(_ context.Context, fileID string) (io.ReadCloser, error) {
	b := g.bot.Load()
	if b == nil {
		return nil, errNotAttached
	}
	return b.File(&tele.File{FileID: fileID})
}

// responder answers within the update that c belongs to.
type responder struct {
	c tele.Context
}

func (r responder) Send(_ context.Context, reply chat.Reply) error {
	what, opts, err := render(reply)
	if err != nil {
		return err
	}
	return r.c.Send(what, opts)
}

func (r responder) Notify(_ context.Context, text string) error {
	if r.c.Callback() != nil {
		return r.c.Respond(&tele.CallbackResponse{Text: text})
	}
	return r.c.Send(text)
}

// render turns a reply into a telebot payload: plain text, or a photo with caption.
func render(r chat.Reply) (any, *tele.SendOptions, error) {
	opts := &tele.SendOptions{ReplyMarkup: markup(r.Buttons)}
	if r.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	if r.Photo == "" {
		return r.Text, opts, nil
	}
	ref, err := media.Parse(r.Photo)
	if err != nil {
		return nil, nil, err
	}
	var file tele.File
	switch ref.Kind {
	case media.KindTelegram:
		file = tele.File{FileID: ref.Value}
	case media.KindURL:
		file = tele.FromURL(ref.Value)
	case media.KindFile:
		file = tele.FromDisk(ref.Value)
	default:
		return nil, nil, fmt.Errorf("%w: %s", media.ErrUnsupported, ref.Kind)
	}
	return &tele.Photo{File: file, Caption: r.Text}, opts, nil
}

func markup(rows [][]chat.Button) *tele.ReplyMarkup {
	btnRows := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		btnRows = append(btnRows, btns)
	}
	return keyboard.InlineRows(btnRows...)
}

// eventFrom extracts the sender, chat, text and any image from an update.
// Image documents count as photos.
func eventFrom(c tele.Context) chat.Event {
	ev := chat.Event{Text: c.Text()}
	if u := c.Sender(); u != nil {
		ev.UserID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		ev.ChatID = ch.ID
	}
	m := c.Message()
	if m == nil || c.Callback() != nil {
		return ev
	}
	switch {
	case m.Photo != nil:
		ev.Photo = &chat.Attachment{FileID: m.Photo.FileID, UniqueID: m.Photo.UniqueID}
	case m.Document != nil && strings.HasPrefix(m.Document.MIME, "image/"):
		ev.Photo = &chat.Attachment{FileID: m.Document.FileID, UniqueID: m.Document.UniqueID}
	}
	return ev
}
