// Package chat is the transport-neutral vocabulary shared by the controller and the bot shell.
package chat

import "context"

// Attachment identifies an inbound photo on the chat platform.
type Attachment struct {
	FileID   string
	UniqueID string
}

// Event is one inbound message from a user.
type Event struct {
	UserID int64
	ChatID int64
	Text   string
	Photo  *Attachment
}

// HasPhoto reports whether the event carries an image.
func (e Event) HasPhoto() bool {
	return e.Photo != nil && e.Photo.FileID != ""
}

// Button is an inline button. URL buttons open a link; the rest send Data back.
type Button struct {
	Text string
	Data string
	URL  string
}

// Reply describes one outbound message. Photo is a media reference; when set,
// Text becomes the caption.
type Reply struct {
	Text    string
	Photo   string
	HTML    bool
	Buttons [][]Button
}

// Column places each button on its own row.
func Column(buttons ...Button) [][]Button {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return rows
}

// Responder answers the user who triggered the current event.
type Responder interface {
	Send(ctx context.Context, r Reply) error
	// Notify shows a short notice; for button presses it answers the callback query.
	Notify(ctx context.Context, text string) error
}

// Sender delivers replies to arbitrary users.
type Sender interface {
	SendTo(ctx context.Context, userID int64, r Reply) error
}
