package domain

type RoomID string

// RoomPolicy describes a room and its gating rule.
// When IsTokenGated is false, RequiredToken and MinTokenAmount carry no
// meaning and must be ignored even if populated.
type RoomPolicy struct {
	ID             RoomID    `json:"id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Description    string    `json:"description,omitempty"`
	IsTokenGated   bool      `json:"is_token_gated"`
	RequiredToken  *TokenRef `json:"required_token,omitempty"`
	MinTokenAmount string    `json:"min_token_amount,omitempty" validate:"required_with=RequiredToken"`
	IsPrivate      bool      `json:"is_private"`
	MemberCount    int       `json:"member_count,omitempty"`
}
