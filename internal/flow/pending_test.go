package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecKeepsStageNames(t *testing.T) {
	var codec Codec
	cases := []Pending{
		AwaitingImage{},
		AwaitingTitle{Image: "tg:a"},
		AwaitingDescription{Image: "tg:a", Name: "Hat"},
		AwaitingPrice{Image: "tg:a", Name: "Hat", Description: "Warm hat"},
		AwaitingDeleteID{},
	}
	for _, p := range cases {
		data, err := codec.Encode(p)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"stage":"`+string(p.Stage())+`"`)
		got, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestCodecUnknownStage(t *testing.T) {
	var codec Codec
	got, err := codec.Decode([]byte(`{"stage":"waiting_for_color"}`))
	require.NoError(t, err)
	assert.Equal(t, Unrecognized{Raw: "waiting_for_color"}, got)

	_, err = codec.Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = codec.Encode(Unrecognized{Raw: "x"})
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	for in, want := range map[string]int64{"0": 0, " 1500 ": 1500, "007": 7, "۱۵۰۰": 1500, "١٥٠٠": 1500, "۱5٠0": 1500} {
		got, ok := parsePrice(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "12.5", "-1", "+3", "+15", "1e3", "۱۲.۵", "-۱", "٣٫٥", "9223372036854775808"} {
		_, ok := parsePrice(in)
		assert.False(t, ok, in)
	}
}

func TestShopNormalize(t *testing.T) {
	s := Shop{StoreURL: "https://t.me/a", TelegramSupportURL: "https://t.me/b", WhatsAppSupportURL: "https://wa.me/1"}
	require.NoError(t, s.Normalize())
	assert.Equal(t, "Toman", s.Currency)

	s.WhatsAppSupportURL = "wa.me/1"
	assert.Error(t, s.Normalize())
}
