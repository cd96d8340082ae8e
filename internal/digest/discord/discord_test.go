package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/agiletrack/internal/digest"
)

type mockSession struct {
	mu        sync.Mutex
	sent      []*discordgo.MessageSend
	channels  []string
	sendErr   error
	rateLimit int
	calls     int
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.rateLimit {
		return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	}
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, data)
	m.channels = append(m.channels, channelID)
	return &discordgo.Message{ID: "msg-1", ChannelID: channelID}, nil
}

var testMsg = digest.Message{
	Title:  "Agiletrack Digest",
	Body:   "**Projects**: 3 total",
	Color:  digest.ColorCritical,
	Fields: []digest.Field{{Name: "Active Sprints", Value: "1", Short: true}},
}

func newTestNotifier(t *testing.T, sess *mockSession) *Notifier {
	t.Helper()
	n, err := New(Opts{ChannelID: "998877", Session: sess})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n.baseBackoff = time.Millisecond
	n.maxBackoff = 5 * time.Millisecond
	return n
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "1"}); err == nil || !strings.Contains(err.Error(), "bot token is required") {
		t.Errorf("err = %v, want bot token error", err)
	}
	if _, err := New(Opts{BotToken: "tok"}); err == nil || !strings.Contains(err.Error(), "channel id is required") {
		t.Errorf("err = %v, want channel error", err)
	}
	n, err := New(Opts{BotToken: "tok", ChannelID: "1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Name() != "discord" {
		t.Errorf("Name() = %q", n.Name())
	}
}

func TestSend_Embed(t *testing.T) {
	sess := &mockSession{}
	n := newTestNotifier(t, sess)

	if err := n.Send(context.Background(), testMsg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sess.sent) != 1 || sess.channels[0] != "998877" {
		t.Fatalf("sent = %d to %v", len(sess.sent), sess.channels)
	}
	embed := sess.sent[0].Embeds[0]
	if embed.Title != testMsg.Title || embed.Description != testMsg.Body {
		t.Errorf("embed = %+v", embed)
	}
	if embed.Color != 0xcc0000 {
		t.Errorf("Color = %#x, want 0xcc0000", embed.Color)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline {
		t.Errorf("fields = %+v", embed.Fields)
	}
}

func TestSend_RetriesRateLimit(t *testing.T) {
	sess := &mockSession{rateLimit: 2}
	n := newTestNotifier(t, sess)

	if err := n.Send(context.Background(), testMsg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sess.calls != 3 {
		t.Errorf("calls = %d, want 3", sess.calls)
	}
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	sess := &mockSession{rateLimit: 100}
	n := newTestNotifier(t, sess)

	if err := n.Send(context.Background(), testMsg); err == nil {
		t.Fatal("expected error")
	}
	if sess.calls != maxRetries+1 {
		t.Errorf("calls = %d, want %d", sess.calls, maxRetries+1)
	}
}

func TestSend_OtherErrorNotRetried(t *testing.T) {
	sess := &mockSession{sendErr: errors.New("missing access")}
	n := newTestNotifier(t, sess)

	err := n.Send(context.Background(), testMsg)
	if err == nil || !strings.Contains(err.Error(), "discord: send message: missing access") {
		t.Errorf("err = %v", err)
	}
	if sess.calls != 1 {
		t.Errorf("calls = %d, want 1", sess.calls)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"439FE0", 0x439fe0},
		{"", 0},
		{"#zzz", 0},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.in); got != tt.want {
			t.Errorf("parseHexColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
