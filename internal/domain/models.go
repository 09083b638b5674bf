package domain

import (
	"strconv"
	"strings"
	"time"
)

// Expectation names the kind of free-form text the bot waits for next.
type Expectation string

const (
	ExpectNone                Expectation = ""
	ExpectMemberID            Expectation = "member_id"
	ExpectMemberIDOrNamePhone Expectation = "member_id_or_name_phone"
	ExpectFitnessLogNamePhone Expectation = "fitness_log_name_phone"
)

// ConversationState is the per-user pending expectation. The zero value is Idle.
type ConversationState struct {
	Expectation Expectation `json:"expectation"`
}

// Idle is the state with nothing pending.
var Idle = ConversationState{}

// AwaitingInput returns the state waiting for e.
func AwaitingInput(e Expectation) ConversationState {
	return ConversationState{Expectation: e}
}

// IsIdle reports whether nothing is pending.
func (s ConversationState) IsIdle() bool {
	return s.Expectation == ExpectNone
}

// Record is one sheet row keyed by column name.
type Record map[string]any

// String renders a cell as text. Integral numbers lose their fraction and
// missing cells render as "".
func (r Record) String(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return ""
	}
}

// QueryKind selects the lookup to run.
type QueryKind string

const (
	QueryMemberByID               QueryKind = "member_by_id"
	QueryMemberByNameAndPhone     QueryKind = "member_by_name_and_phone"
	QueryFaqByCategory            QueryKind = "faq_by_category"
	QueryFacilityByCategory       QueryKind = "facility_by_category"
	QueryFacilityByExactName      QueryKind = "facility_by_exact_name"
	QueryCourseByType             QueryKind = "course_by_type"
	QueryCourseByDate             QueryKind = "course_by_date"
	QueryCoachByType              QueryKind = "coach_by_type"
	QueryFitnessLogByNameAndPhone QueryKind = "fitness_log_by_name_and_phone"
)

// IsPoint reports whether the kind resolves to at most one record.
func (k QueryKind) IsPoint() bool {
	switch k {
	case QueryMemberByID, QueryMemberByNameAndPhone, QueryFacilityByExactName:
		return true
	}
	return false
}

// QueryRequest carries the parameters parsed from user text. Key holds the
// id, category, type, date or facility name depending on Kind.
type QueryRequest struct {
	Kind  QueryKind `json:"kind"`
	Key   string    `json:"key,omitempty"`
	Name  string    `json:"name,omitempty"`
	Phone string    `json:"phone,omitempty"`
	// Fallback marks a guess made for otherwise unroutable text; a miss
	// is dropped instead of answered.
	Fallback bool `json:"fallback,omitempty"`
}

// QueryResult is the ordered set of matching records. Empty means not found.
type QueryResult struct {
	Kind    QueryKind
	Point   bool
	Records []Record
}

// Found reports whether anything matched.
func (r QueryResult) Found() bool {
	return len(r.Records) > 0
}

// First returns the first record, or nil.
func (r QueryResult) First() Record {
	if len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// MessageAction is a button whose Text becomes the next inbound message.
type MessageAction struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Menu is a static choice list. Confirm menus render as a two-button prompt.
type Menu struct {
	Title   string          `json:"title,omitempty"`
	Prompt  string          `json:"prompt"`
	Options []MessageAction `json:"options"`
	Confirm bool            `json:"confirm,omitempty"`
}

// Panel identifies a static informational reply.
type Panel string

const (
	PanelHelp    Panel = "help"
	PanelContact Panel = "contact"
)

// ActionKind tags the router's decision.
type ActionKind string

const (
	ActionShowMenu        ActionKind = "show_menu"
	ActionAskForInput     ActionKind = "ask_for_input"
	ActionRunQuery        ActionKind = "run_query"
	ActionShowStaticPanel ActionKind = "show_static_panel"
	ActionRejectInput     ActionKind = "reject_input"
	ActionUnhandled       ActionKind = "unhandled"
)

// Action is the router output. Only the fields matching Kind are set.
type Action struct {
	Kind        ActionKind
	Rule        string
	Menu        *Menu
	Prompt      string
	Expectation Expectation
	Query       *QueryRequest
	Panel       Panel
	InputError  *UserInputError
}

// PayloadType tags a rendered reply.
type PayloadType string

const (
	PayloadText          PayloadType = "text"
	PayloadButtonMenu    PayloadType = "button_menu"
	PayloadConfirmPrompt PayloadType = "confirm_prompt"
	PayloadCarousel      PayloadType = "carousel"
	PayloadImageCarousel PayloadType = "image_carousel"
)

// Field is one labelled line inside a bubble body.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Bubble is one card of a carousel.
type Bubble struct {
	Title    string          `json:"title"`
	ImageURL string          `json:"image_url,omitempty"`
	Fields   []Field         `json:"fields,omitempty"`
	Footer   []MessageAction `json:"footer,omitempty"`
}

// ImageColumn is one tile of an image carousel.
type ImageColumn struct {
	ImageURL string        `json:"image_url"`
	Action   MessageAction `json:"action"`
}

// ReplyPayload is a channel-neutral reply message.
type ReplyPayload struct {
	Type    PayloadType     `json:"type"`
	AltText string          `json:"alt_text,omitempty"`
	Text    string          `json:"text,omitempty"`
	Title   string          `json:"title,omitempty"`
	Actions []MessageAction `json:"actions,omitempty"`
	Bubbles []Bubble        `json:"bubbles,omitempty"`
	Columns []ImageColumn   `json:"columns,omitempty"`
}

// TextPayload builds a plain text reply.
func TextPayload(text string) ReplyPayload {
	return ReplyPayload{Type: PayloadText, Text: text}
}

// InboundMessage is a verified text message handed over by a channel.
type InboundMessage struct {
	Channel    string
	UserID     string
	Text       string
	ReplyToken string
}

// SendMessageRequest represents request to push a message
type SendMessageRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// SendMessageResponse represents response after pushing a message
type SendMessageResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}
