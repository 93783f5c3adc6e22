package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestUidTextCodec(t *testing.T) {
	uids := []Uid{0x01, 0xFFFFFFFFFFFFFFFF, 0x8000000000000000, 9375853238}
	for _, uid := range uids {
		if parsed := ParseUid(uid.String()); parsed != uid {
			t.Errorf("parse(%s) = %d, want %d", uid.String(), parsed, uid)
		}
	}
	if !ParseUid("*not-a-uid*").IsZero() {
		t.Error("garbage must parse to ZeroUid")
	}
	if ParseUid("").Compare(ZeroUid) != 0 {
		t.Error("empty string must parse to ZeroUid")
	}
}

func TestUidJSON(t *testing.T) {
	uid := Uid(9375853238)
	raw, err := json.Marshal(uid)
	if err != nil {
		t.Fatal("marshal:", err)
	}
	var back Uid
	if err = json.Unmarshal(raw, &back); err != nil {
		t.Fatal("unmarshal:", err)
	}
	if back != uid {
		t.Errorf("round trip %d -> %s -> %d", uid, raw, back)
	}
}

func TestMessageEditableBoundary(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := &Message{}
	msg.CreatedAt = created

	if !msg.Editable(created) {
		t.Error("message must be editable immediately after creation")
	}
	// The window is inclusive: exactly EditWindow old is still editable.
	if !msg.Editable(created.Add(EditWindow)) {
		t.Error("message must be editable at exactly the window boundary")
	}
	if msg.Editable(created.Add(EditWindow + time.Nanosecond)) {
		t.Error("message must not be editable past the window")
	}
}

func TestMessageSummary(t *testing.T) {
	text := &Message{Kind: KindText, Content: "morning prayer at six"}
	if got := text.Summary(); got != "morning prayer at six" {
		t.Errorf("short text summary = %q", got)
	}

	long := &Message{Kind: KindText, Content: strings.Repeat("a", 100)}
	if got := long.Summary(); len(got) != 64 {
		t.Errorf("long text summary length = %d, want 64", len(got))
	}

	// Ge'ez text: 3 bytes per rune, so a byte-offset cut would land mid-rune.
	amharic := &Message{Kind: KindText, Content: strings.Repeat("ሰላም", 30)}
	if got := amharic.Summary(); !utf8.ValidString(got) {
		t.Errorf("truncated summary %q is not valid UTF-8", got)
	} else if len(got) != 63 {
		t.Errorf("truncated summary length = %d, want 63 (rune boundary below 64)", len(got))
	}

	voice := &Message{Kind: KindVoice, FileRef: "blob/123"}
	if got := voice.Summary(); got != "[voice]" {
		t.Errorf("media summary = %q, want [voice]", got)
	}
}

func TestUserCommunity(t *testing.T) {
	abune := &User{Type: UserAbune}
	abune.SetUid(Uid(10))
	if abune.Community() != Uid(10) {
		t.Error("abune's community must be their own id")
	}

	member := &User{Type: UserRegular, OwnerAbune: Uid(10)}
	member.SetUid(Uid(21))
	if member.Community() != Uid(10) {
		t.Error("member's community must be the owner abune")
	}
}
