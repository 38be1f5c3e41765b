package extract

import "encoding/json"

// Kind identifies an event variant
type Kind string

const (
	KindContact       Kind = "contact"
	KindDirectMessage Kind = "direct_message"
	KindGroupMessage  Kind = "group_message"
	KindSticker       Kind = "sticker"
	KindRedPacket     Kind = "red_packet"
	KindImage         Kind = "image"
	KindProduct       Kind = "product"
	KindTask          Kind = "task"
	KindInventoryItem Kind = "inventory_item"
	KindItemUsage     Kind = "item_usage"
	KindPoints        Kind = "points"
)

// Direction is the side of the conversation a message came from
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

func directionFor(isUser bool) Direction {
	if isUser {
		return Sent
	}
	return Received
}

// Event is implemented by every extracted record.
// SourceIndex is the index of the chat message the record came from and
// Position is its character offset inside that message's body.
type Event interface {
	Kind() Kind
	SourceIndex() int
	Position() int
}

// AddressTarget is the resolved recipient of a sticker or image
type AddressTarget struct {
	IsGroup     bool   `json:"is_group"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Contact comes from a [qq号|name|number|favorability] token
type Contact struct {
	Name               string `json:"name"`
	Number             string `json:"number"`
	Favorability       int    `json:"favorability"`
	SourceMessageIndex int    `json:"source_message_index"`
	PositionInBody     int    `json:"position_in_body"`
}

// DirectMessage is a one-to-one message between the user and a contact
type DirectMessage struct {
	Direction          Direction `json:"direction"`
	CounterpartName    string    `json:"counterpart_name"`
	CounterpartNumber  string    `json:"counterpart_number"`
	Content            string    `json:"content"`
	IsVoice            bool      `json:"is_voice"`
	VoiceContent       string    `json:"voice_content,omitempty"`
	Time               string    `json:"time"`
	SourceMessageIndex int       `json:"source_message_index"`
	PositionInBody     int       `json:"position_in_body"`
}

// GroupMessage is a message posted to a group conversation.
// GroupName is only known when the token carries it ([我方群聊消息]).
type GroupMessage struct {
	Direction          Direction `json:"direction"`
	GroupID            string    `json:"group_id"`
	GroupName          string    `json:"group_name,omitempty"`
	Sender             string    `json:"sender"`
	Content            string    `json:"content"`
	IsVoice            bool      `json:"is_voice"`
	VoiceContent       string    `json:"voice_content,omitempty"`
	Time               string    `json:"time"`
	SourceMessageIndex int       `json:"source_message_index"`
	PositionInBody     int       `json:"position_in_body"`
}

// StickerMessage is an emoji/sticker sent in a conversation
type StickerMessage struct {
	Direction          Direction      `json:"direction"`
	Filename           string         `json:"filename"`
	ImageURL           string         `json:"image_url"`
	Target             *AddressTarget `json:"target"`
	Time               string         `json:"time,omitempty"`
	SourceMessageIndex int            `json:"source_message_index"`
	PositionInBody     int            `json:"position_in_body"`
}

// Red packet scopes
const (
	ScopePrivate = "private"
	ScopeGroup   = "group"
)

// RedPacketMessage is a money gift. For group scope Counterpart holds the group id.
type RedPacketMessage struct {
	Direction          Direction `json:"direction"`
	Scope              string    `json:"scope"`
	Counterpart        string    `json:"counterpart"`
	CounterpartNumber  string    `json:"counterpart_number,omitempty"`
	Sender             string    `json:"sender,omitempty"`
	Amount             int       `json:"amount"`
	Time               string    `json:"time"`
	SourceMessageIndex int       `json:"source_message_index"`
	PositionInBody     int       `json:"position_in_body"`
}

// ImageMessage is an image attached to a chat message by the host
type ImageMessage struct {
	Direction          Direction      `json:"direction"`
	ImagePath          string         `json:"image_path"`
	Target             *AddressTarget `json:"target"`
	SourceMessageIndex int            `json:"source_message_index"`
	PositionInBody     int            `json:"position_in_body"`
}

// Product formats
const (
	ProductFormat3Field = "3field"
	ProductFormat4Field = "4field"
)

// Product is a shop listing
type Product struct {
	Name               string `json:"name"`
	Type               string `json:"kind"`
	Description        string `json:"description"`
	Price              int    `json:"price"`
	Format             string `json:"format"`
	SourceMessageIndex int    `json:"source_message_index"`
	PositionInBody     int    `json:"position_in_body"`
}

// Task statuses
const (
	TaskAvailable = "available"
	TaskAccepted  = "accepted"
	TaskCompleted = "completed"
)

// Task is a quest on the task board. Completed tasks carry no description or capacity.
type Task struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Capacity           string `json:"capacity,omitempty"`
	Reward             int    `json:"reward"`
	Status             string `json:"status"`
	SourceMessageIndex int    `json:"source_message_index"`
	PositionInBody     int    `json:"position_in_body"`
}

// InventoryItem is a backpack entry
type InventoryItem struct {
	Name               string `json:"name"`
	Type               string `json:"kind"`
	Count              int    `json:"count"`
	Description        string `json:"description"`
	SourceMessageIndex int    `json:"source_message_index"`
	PositionInBody     int    `json:"position_in_body"`
}

// ItemUsage records items consumed from the backpack
type ItemUsage struct {
	ItemName           string `json:"item_name"`
	Quantity           int    `json:"quantity"`
	SourceMessageIndex int    `json:"source_message_index"`
	PositionInBody     int    `json:"position_in_body"`
}

// Points entry kinds
const (
	PointsEarned = "earned"
	PointsSpent  = "spent"
)

// PointsEntry is a single points delta
type PointsEntry struct {
	Type               string `json:"type"`
	Amount             int    `json:"amount"`
	SourceMessageIndex int    `json:"source_message_index"`
	PositionInBody     int    `json:"position_in_body"`
}

func (e Contact) Kind() Kind          { return KindContact }
func (e DirectMessage) Kind() Kind    { return KindDirectMessage }
func (e GroupMessage) Kind() Kind     { return KindGroupMessage }
func (e StickerMessage) Kind() Kind   { return KindSticker }
func (e RedPacketMessage) Kind() Kind { return KindRedPacket }
func (e ImageMessage) Kind() Kind     { return KindImage }
func (e Product) Kind() Kind          { return KindProduct }
func (e Task) Kind() Kind             { return KindTask }
func (e InventoryItem) Kind() Kind    { return KindInventoryItem }
func (e ItemUsage) Kind() Kind        { return KindItemUsage }
func (e PointsEntry) Kind() Kind      { return KindPoints }

func (e Contact) SourceIndex() int          { return e.SourceMessageIndex }
func (e DirectMessage) SourceIndex() int    { return e.SourceMessageIndex }
func (e GroupMessage) SourceIndex() int     { return e.SourceMessageIndex }
func (e StickerMessage) SourceIndex() int   { return e.SourceMessageIndex }
func (e RedPacketMessage) SourceIndex() int { return e.SourceMessageIndex }
func (e ImageMessage) SourceIndex() int     { return e.SourceMessageIndex }
func (e Product) SourceIndex() int          { return e.SourceMessageIndex }
func (e Task) SourceIndex() int             { return e.SourceMessageIndex }
func (e InventoryItem) SourceIndex() int    { return e.SourceMessageIndex }
func (e ItemUsage) SourceIndex() int        { return e.SourceMessageIndex }
func (e PointsEntry) SourceIndex() int      { return e.SourceMessageIndex }

func (e Contact) Position() int          { return e.PositionInBody }
func (e DirectMessage) Position() int    { return e.PositionInBody }
func (e GroupMessage) Position() int     { return e.PositionInBody }
func (e StickerMessage) Position() int   { return e.PositionInBody }
func (e RedPacketMessage) Position() int { return e.PositionInBody }
func (e ImageMessage) Position() int     { return e.PositionInBody }
func (e Product) Position() int          { return e.PositionInBody }
func (e Task) Position() int             { return e.PositionInBody }
func (e InventoryItem) Position() int    { return e.PositionInBody }
func (e ItemUsage) Position() int        { return e.PositionInBody }
func (e PointsEntry) Position() int      { return e.PositionInBody }

// Entry is the serialized form of an Event, tagged with its kind
type Entry struct {
	Kind  Kind  `json:"kind"`
	Event Event `json:"event"`
}

// Timeline is an ordered list of conversation events
type Timeline []Event

// Entries tags each event with its kind
func (t Timeline) Entries() []Entry {
	entries := make([]Entry, 0, len(t))
	for _, e := range t {
		entries = append(entries, Entry{Kind: e.Kind(), Event: e})
	}
	return entries
}

// MarshalJSON encodes the timeline as kind-tagged entries
func (t Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}
