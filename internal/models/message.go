package models

// Message types.
const (
	TypeStatus         = "status"
	TypeMessage        = "message"
	TypePrivateMessage = "private_message"
)

// Message is a single immutable entry of the room history.
// The auto-increment ID defines insertion order, which is the feed order.
type Message struct {
	// ID is the store sequence number of the message.
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// From is the sender name.
	From string `gorm:"column:sender;type:text;not null" json:"from"`
	// To is either the broadcast target or a participant name.
	To string `gorm:"column:recipient;type:text;not null" json:"to"`
	// Text is the message body.
	Text string `gorm:"type:text;not null" json:"text"`
	// Type is one of TypeStatus, TypeMessage or TypePrivateMessage.
	Type string `gorm:"type:text;not null" json:"type"`
	// Time is the HH:mm:ss wall-clock time of insertion.
	Time string `gorm:"type:text;not null" json:"time"`
}
