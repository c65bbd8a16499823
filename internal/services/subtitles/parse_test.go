package subtitles

import (
	"strings"
	"testing"
)

func TestParseVTT(t *testing.T) {
	data := `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.500
Welcome to the show.

00:00:02.500 --> 00:00:05.000 align:start position:0%
Welcome to the show.

00:00:05.000 --> 00:00:08.000
Today we talk about <b>Go</b>.

NOTE internal comment

00:00:08.000 --> 00:00:10.000
[Music]
And that's a wrap.
`

	got := ParseVTT(data)
	expected := "Welcome to the show.\nToday we talk about Go.\nAnd that's a wrap."
	if got != expected {
		t.Errorf("ParseVTT() = %q, want %q", got, expected)
	}
}

func TestParseVTTDropsHeaderMetadata(t *testing.T) {
	data := "WEBVTT\nKind: captions\n\n00:00:00.000 --> 00:00:01.000\nhello\n"
	got := ParseVTT(data)
	if strings.Contains(got, "Kind") {
		t.Errorf("header metadata leaked: %q", got)
	}
	if got != "hello" {
		t.Errorf("ParseVTT() = %q", got)
	}
}

func TestParseSRT(t *testing.T) {
	data := `1
00:00:00,000 --> 00:00:02,500
First line of speech.

2
00:00:02,500 --> 00:00:05,000
(applause)
Second line.

3
00:00:05,000 --> 00:00:07,000
Second line.
`

	got := ParseSRT(data)
	expected := "First line of speech.\nSecond line."
	if got != expected {
		t.Errorf("ParseSRT() = %q, want %q", got, expected)
	}
}

func TestAttemptOrderPrefersNativeTracks(t *testing.T) {
	svc := &Service{
		languages:    []string{"en", "es"},
		preferNative: true,
	}

	attempts := svc.attemptOrder()
	expected := []attempt{
		{lang: "en", auto: false},
		{lang: "es", auto: false},
		{lang: "en", auto: true},
		{lang: "es", auto: true},
	}
	if len(attempts) != len(expected) {
		t.Fatalf("got %d attempts, want %d", len(attempts), len(expected))
	}
	for i := range expected {
		if attempts[i] != expected[i] {
			t.Errorf("attempt %d = %+v, want %+v", i, attempts[i], expected[i])
		}
	}
}

func TestAttemptOrderInterleavedWithoutNativePreference(t *testing.T) {
	svc := &Service{
		languages:    []string{"en", "es"},
		preferNative: false,
	}

	attempts := svc.attemptOrder()
	expected := []attempt{
		{lang: "en", auto: false},
		{lang: "en", auto: true},
		{lang: "es", auto: false},
		{lang: "es", auto: true},
	}
	for i := range expected {
		if attempts[i] != expected[i] {
			t.Errorf("attempt %d = %+v, want %+v", i, attempts[i], expected[i])
		}
	}
}
