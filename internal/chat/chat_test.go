package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumn(t *testing.T) {
	rows := Column(Button{Text: "a", Data: "x"}, Button{Text: "b", URL: "https://t.me/b"})
	assert.Len(t, rows, 2)
	assert.Equal(t, "x", rows[0][0].Data)
	assert.Empty(t, Column())
}

func TestHasPhoto(t *testing.T) {
	assert.False(t, Event{}.HasPhoto())
	assert.False(t, Event{Photo: &Attachment{}}.HasPhoto())
	assert.True(t, Event{Photo: &Attachment{FileID: "f"}}.HasPhoto())
}
