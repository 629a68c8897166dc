// Package teletest runs telebot against an in-memory Bot API for tests.
package teletest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"
)

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]any
	Raw    string
}

// API records requests and answers each with a canned success.
type API struct {
	mu    sync.Mutex
	calls []Call
	fail  map[string]string
}

// FailMethod makes every subsequent call to method return a Bot API error.
func (a *API) FailMethod(method, description string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail == nil {
		a.fail = make(map[string]string)
	}
	a.fail[method] = description
}

// Calls returns a snapshot of recorded calls, optionally filtered by method.
func (a *API) Calls(methods ...string) []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(methods) == 0 {
		return append([]Call(nil), a.calls...)
	}
	var out []Call
	for _, c := range a.calls {
		for _, m := range methods {
			if c.Method == m {
				out = append(out, c)
			}
		}
	}
	return out
}

// Texts returns the "text" or "caption" parameter of every send call in order.
func (a *API) Texts() []string {
	var out []string
	for _, c := range a.Calls("sendMessage", "sendPhoto") {
		if s, ok := c.Params["text"].(string); ok {
			out = append(out, s)
		} else if s, ok := c.Params["caption"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RoundTrip implements http.RoundTripper.
func (a *API) RoundTrip(req *http.Request) (*http.Response, error) {
	method := path.Base(req.URL.Path)
	var raw []byte
	if req.Body != nil {
		raw, _ = io.ReadAll(req.Body)
	}
	params := map[string]any{}
	if strings.HasPrefix(req.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(raw, &params)
	}

	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: method, Params: params, Raw: string(raw)})
	desc, failing := a.fail[method]
	a.mu.Unlock()

	body := `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`
	if method == "getFile" {
		body = `{"ok":true,"result":{"file_id":"f","file_unique_id":"u","file_path":"photos/f.jpg"}}`
	}
	if failing {
		b, _ := json.Marshal(map[string]any{"ok": false, "error_code": 400, "description": desc})
		body = string(b)
	}
	if strings.Contains(req.URL.Path, "/file/bot") {
		body = "image-bytes"
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    req,
	}, nil
}

// NewBot returns an offline bot whose API calls land in the returned recorder.
func NewBot(t testing.TB) (*tele.Bot, *API) {
	t.Helper()
	api := &API{}
	bot, err := tele.NewBot(tele.Settings{
		Token:       "1:test",
		Offline:     true,
		Synchronous: true,
		Client:      &http.Client{Transport: api},
	})
	if err != nil {
		t.Fatalf("teletest: new bot: %v", err)
	}
	return bot, api
}

// Message builds a private-chat text update from userID.
func Message(userID int64, text string) tele.Update {
	return tele.Update{
		ID: int(userID),
		Message: &tele.Message{
			ID:     1,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		},
	}
}

// Photo builds a private-chat photo update from userID.
func Photo(userID int64, fileID string) tele.Update {
	u := Message(userID, "")
	u.Message.Photo = &tele.Photo{File: tele.File{FileID: fileID, UniqueID: fileID + "-u"}}
	return u
}

// Callback builds an inline-button press with raw data from userID.
func Callback(userID int64, data string) tele.Update {
	return tele.Update{
		ID: int(userID) + 1,
		Callback: &tele.Callback{
			ID:      "cb",
			Sender:  &tele.User{ID: userID},
			Data:    data,
			Message: &tele.Message{ID: 1, Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate}},
		},
	}
}
