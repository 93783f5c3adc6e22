// Package types provides data types shared between the chat core and database adapters.
package types

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"
	"unicode/utf8"
)

// StoreError satisfies the error interface but allows constant values for
// direct comparison.
type StoreError string

// Error is required by the error interface.
func (s StoreError) Error() string {
	return string(s)
}

const (
	// ErrInternal means DB or other internal failure.
	ErrInternal = StoreError("internal")
	// ErrMalformed means the request cannot be parsed or otherwise wrong.
	ErrMalformed = StoreError("malformed")
	// ErrFailed means the operation failed for some other reason.
	ErrFailed = StoreError("failed")
	// ErrDuplicate means duplicate unique value, i.e. the conversation pair already exists.
	ErrDuplicate = StoreError("duplicate value")
	// ErrPermissionDenied means the caller is not allowed to perform the operation.
	ErrPermissionDenied = StoreError("denied")
	// ErrNotFound means the object is not found.
	ErrNotFound = StoreError("not found")
	// ErrMessageTooOld means the edit window on the message has expired.
	ErrMessageTooOld = StoreError("too old")
	// ErrCrossCommunity means the referenced message belongs to another community.
	ErrCrossCommunity = StoreError("cross community")
	// ErrUnsupported means an operation is not supported.
	ErrUnsupported = StoreError("unsupported")
)

// Uid is a database-specific record id, suitable to be used as a primary key.
type Uid uint64

// ZeroUid is a constant representing an uninitialized Uid.
const ZeroUid Uid = 0

const (
	uidBase64Unpadded = 11
	uidBase64Padded   = 12
)

// IsZero checks if Uid is uninitialized.
func (uid Uid) IsZero() bool {
	return uid == 0
}

// Compare returns 0 if uid is equal to u2, -1 if uid is smaller, 1 if greater.
func (uid Uid) Compare(u2 Uid) int {
	if uid < u2 {
		return -1
	} else if uid > u2 {
		return 1
	}
	return 0
}

// MarshalBinary converts Uid to a byte slice.
func (uid Uid) MarshalBinary() ([]byte, error) {
	dst := make([]byte, 8)
	binary.LittleEndian.PutUint64(dst, uint64(uid))
	return dst, nil
}

// UnmarshalBinary reads Uid from a byte slice.
func (uid *Uid) UnmarshalBinary(b []byte) error {
	if len(b) < 8 {
		return errors.New("Uid.UnmarshalBinary: invalid length")
	}
	*uid = Uid(binary.LittleEndian.Uint64(b))
	return nil
}

// UnmarshalText reads Uid from its base64 representation.
func (uid *Uid) UnmarshalText(src []byte) error {
	if len(src) != uidBase64Unpadded {
		return errors.New("Uid.UnmarshalText: invalid length")
	}
	dec := make([]byte, base64.URLEncoding.DecodedLen(uidBase64Padded))
	for len(src) < uidBase64Padded {
		src = append(src, '=')
	}
	count, err := base64.URLEncoding.Decode(dec, src)
	if count < 8 {
		if err != nil {
			return errors.New("Uid.UnmarshalText: failed to decode " + err.Error())
		}
		return errors.New("Uid.UnmarshalText: failed to decode")
	}
	*uid = Uid(binary.LittleEndian.Uint64(dec))
	return nil
}

// MarshalText converts Uid to its base64 representation.
func (uid Uid) MarshalText() ([]byte, error) {
	if uid == 0 {
		return []byte{}, nil
	}
	src := make([]byte, 8)
	dst := make([]byte, base64.URLEncoding.EncodedLen(8))
	binary.LittleEndian.PutUint64(src, uint64(uid))
	base64.URLEncoding.Encode(dst, src)
	return dst[0:uidBase64Unpadded], nil
}

// MarshalJSON converts Uid to a double-quoted string.
func (uid Uid) MarshalJSON() ([]byte, error) {
	dst, _ := uid.MarshalText()
	return append(append([]byte{'"'}, dst...), '"'), nil
}

// UnmarshalJSON reads Uid from a double-quoted string.
func (uid *Uid) UnmarshalJSON(b []byte) error {
	size := len(b)
	if size != (uidBase64Unpadded + 2) {
		return errors.New("Uid.UnmarshalJSON: invalid length")
	} else if b[0] != '"' || b[size-1] != '"' {
		return errors.New("Uid.UnmarshalJSON: unrecognized")
	}
	return uid.UnmarshalText(b[1 : size-1])
}

// String converts Uid to its base64 string representation.
func (uid Uid) String() string {
	buf, _ := uid.MarshalText()
	return string(buf)
}

// ParseUid parses the string representation of a Uid. Returns ZeroUid on failure.
func ParseUid(s string) Uid {
	var uid Uid
	uid.UnmarshalText([]byte(s))
	return uid
}

// TimeNow returns the current wall time in UTC rounded to milliseconds.
func TimeNow() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

// ObjHeader is the header shared by all stored objects.
type ObjHeader struct {
	// String representation of the object id, used in wire formats.
	Id        string
	id        Uid
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Uid returns the record's id as a Uid.
func (h *ObjHeader) Uid() Uid {
	if h.id.IsZero() && h.Id != "" {
		h.id.UnmarshalText([]byte(h.Id))
	}
	return h.id
}

// SetUid assigns the given Uid to both the Uid and string representations.
func (h *ObjHeader) SetUid(uid Uid) {
	h.id = uid
	h.Id = uid.String()
}

// InitTimes initializes time.Time variables in the header to current time.
func (h *ObjHeader) InitTimes() {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = TimeNow()
	}
	h.UpdatedAt = h.CreatedAt
	h.DeletedAt = nil
}

// IsDeleted returns true if the object has been soft-deleted.
func (h *ObjHeader) IsDeleted() bool {
	return h.DeletedAt != nil
}

// UserType is the role of an identity: community leader or regular member.
type UserType byte

// Identity roles.
const (
	UserAbune UserType = iota
	UserRegular
)

func (ut UserType) String() string {
	if ut == UserAbune {
		return "abune"
	}
	return "regular"
}

// ParseUserType parses a role name. Unknown values default to regular.
func ParseUserType(s string) UserType {
	if s == "abune" {
		return UserAbune
	}
	return UserRegular
}

// ObjState represents the state of a user account.
type ObjState byte

// Account states.
const (
	StateActive ObjState = iota
	StateInactive
	StateSuspended
	StatePending
)

func (os ObjState) String() string {
	switch os {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateSuspended:
		return "suspended"
	case StatePending:
		return "pending"
	}
	return "unknown"
}

// ParseObjState parses a string into an ObjState.
func ParseObjState(s string) ObjState {
	switch s {
	case "active":
		return StateActive
	case "suspended":
		return StateSuspended
	case "pending":
		return StatePending
	}
	return StateInactive
}

// User is an identity fact supplied by the user directory. The chat core
// reads it to make authorization decisions but never mutates it.
type User struct {
	ObjHeader
	// Account role: Abune or Regular.
	Type UserType
	// For Regular users, the Uid of their Abune. Zero for Abunes.
	OwnerAbune Uid
	// True once the Abune has approved the member.
	Approved bool
	// Account state: active, inactive, suspended, pending approval.
	State ObjState
}

// Community returns the id of the community the user nominally belongs to.
func (u *User) Community() Uid {
	if u.Type == UserAbune {
		return u.Uid()
	}
	return u.OwnerAbune
}

// ContentKind is the payload type of a message.
type ContentKind byte

// Message payload kinds.
const (
	KindText ContentKind = iota
	KindImage
	KindDocument
	KindVoice
)

func (ck ContentKind) String() string {
	switch ck {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	case KindVoice:
		return "voice"
	}
	return "text"
}

// ParseContentKind parses a payload kind name. Unknown values default to text.
func ParseContentKind(s string) ContentKind {
	switch s {
	case "image":
		return KindImage
	case "document":
		return KindDocument
	case "voice":
		return KindVoice
	}
	return KindText
}

// IsMedia reports whether the kind references an uploaded file rather than inline text.
func (ck ContentKind) IsMedia() bool {
	return ck != KindText
}

// DeliveryStatus tracks how far a message has progressed towards its recipient.
type DeliveryStatus byte

// Delivery states.
const (
	StatusSent DeliveryStatus = iota
	StatusDelivered
	StatusRead
	StatusFailed
)

func (ds DeliveryStatus) String() string {
	switch ds {
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	case StatusFailed:
		return "failed"
	}
	return "sent"
}

// EditWindow is how long after creation a message may still be edited.
// The boundary is inclusive: a message exactly EditWindow old is still editable.
const EditWindow = 24 * time.Hour

// Message is a single stored chat message, direct or broadcast.
type Message struct {
	ObjHeader
	// Sender's user id.
	From Uid
	// Recipient's user id. Zero if and only if the message is a broadcast.
	To Uid
	// Community (Abune id) scoping the message.
	Community Uid
	// True for community-wide announcements.
	Broadcast bool
	// Payload kind: text, image, document, voice.
	Kind ContentKind
	// Inline content for text messages.
	Content string
	// Reference to externally stored media for non-text messages.
	FileRef string
	// Id of the message this one replies to, if any.
	ReplyTo Uid
	// Id of the message this one was forwarded from, if any.
	ForwardedFrom Uid
	// Per-user emoji reactions.
	Reactions map[Uid]string
	// Per-user read receipts.
	ReadBy map[Uid]time.Time
	// Delivery progression: sent, delivered, read, failed.
	Status DeliveryStatus
	// Edit markers. CreatedAt never changes on edit.
	Edited   bool
	EditedAt *time.Time
	EditedBy Uid
	// User who soft-deleted the message. DeletedAt lives in ObjHeader.
	DeletedBy Uid
}

// Editable reports whether the message may still be edited at the given time.
func (m *Message) Editable(now time.Time) bool {
	return !now.After(m.CreatedAt.Add(EditWindow))
}

// Summary produces a short description of the message for conversation rollups.
func (m *Message) Summary() string {
	if m.Kind.IsMedia() {
		return "[" + m.Kind.String() + "]"
	}
	const maxSummary = 64
	if len(m.Content) <= maxSummary {
		return m.Content
	}
	// Back off to a rune boundary so the cut never splits a multi-byte rune.
	cut := maxSummary
	for cut > 0 && !utf8.RuneStart(m.Content[cut]) {
		cut--
	}
	return m.Content[:cut]
}

// Conversation is the durable pairwise thread between an Abune and one of
// their Regular members. Exactly one exists per (Abune, User) pair.
type Conversation struct {
	ObjHeader
	// The community leader side of the pair.
	Abune Uid
	// The regular member side of the pair.
	User Uid
	// Time of the most recent direct message in the thread.
	LastMessageAt time.Time
	// Short rollup of the most recent message.
	LastMessageSummary string
	// Number of messages not read yet by the party which did not send them.
	UnreadCount int
	// False once either party archives the thread.
	Active bool
}

// InvolvesUser reports whether uid is one of the two conversation parties.
func (c *Conversation) InvolvesUser(uid Uid) bool {
	return c.Abune == uid || c.User == uid
}

// UnreadCounts is an aggregation of unread messages for one user.
type UnreadCounts struct {
	// Sum over all conversations.
	Total int `json:"total"`
	// Unread count per conversation id.
	PerConversation map[string]int `json:"conversations,omitempty"`
}

// QueryOpt is an ask for a paginated slice of objects.
type QueryOpt struct {
	// Return only messages created strictly before this time. Zero means no bound.
	Before time.Time
	// Maximum number of results. Zero means adapter default.
	Limit int
}
