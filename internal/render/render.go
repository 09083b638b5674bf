// Package render turns router actions and lookup results into reply payloads.
package render

import (
	"errors"
	"fmt"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

// Backend rendering limits. Longer lists are truncated, never rejected.
const (
	MaxMenuActions    = 4
	MaxConfirmActions = 2
	MaxCarouselItems  = 10
	MaxLabelRunes     = 20
	// image carousel tiles take shorter labels than buttons
	MaxImageColumnLabelRunes = 12
	maxDiagnosticRune        = 120
)

// Presentation constants.
const (
	NotProvided   = "not provided"
	TextNoResults = "❌ No matching records were found."
	TextPointMiss = "❌ No matching record was found. Please confirm and try again."
	TextQueryOK   = "✅ Query succeeded"
	TextTapHint   = "👆 Tap a facility to see its details."

	DefaultPlaceholderImageURL = "https://placehold.co/1024x1024/png?text=Shoushou+Fitness"

	HelpText = "📋 Available commands:\n" +
		"• member area\n" +
		"• forgot member id\n" +
		"• fitness log\n" +
		"• FAQ\n" +
		"• facilities\n" +
		"• courses\n" +
		"• coaches\n" +
		"• contact us"

	ContactText = "📍 Shoushou Fitness Club\n" +
		"🕒 Mon-Sun 06:00-23:00\n" +
		"☎️ (02) 2345-6789\n" +
		"✉️ service@shoushou-fitness.com"
)

var inputErrorTexts = map[domain.Expectation]string{
	domain.ExpectMemberID: "⚠️ Invalid member ID. Please use the format A00012. " +
		"Send \"query member data\" to try again.",
	domain.ExpectMemberIDOrNamePhone: "⚠️ Please enter a member ID (e.g. A00012) or your name followed by " +
		"a mobile number starting with 09 (e.g. Chen Wei0912345678). Send \"find member by name\" to try again.",
	domain.ExpectFitnessLogNamePhone: "⚠️ Please enter your name followed by a mobile number starting with 09 " +
		"(e.g. Chen Wei0912345678). Send \"fitness log\" to try again.",
}

// Options configures a Renderer.
type Options struct {
	PlaceholderImageURL string
}

// Renderer maps domain values to reply payloads with fixed formatting.
type Renderer struct {
	placeholderImage string
}

// New creates a renderer.
func New(opts Options) *Renderer {
	if opts.PlaceholderImageURL == "" {
		opts.PlaceholderImageURL = DefaultPlaceholderImageURL
	}
	return &Renderer{placeholderImage: opts.PlaceholderImageURL}
}

// Action renders actions that need no lookup. RunQuery and Unhandled yield nil.
func (r *Renderer) Action(a domain.Action) []domain.ReplyPayload {
	switch a.Kind {
	case domain.ActionShowMenu:
		if a.Menu == nil {
			return nil
		}
		return []domain.ReplyPayload{Menu(a.Menu)}
	case domain.ActionAskForInput:
		return []domain.ReplyPayload{domain.TextPayload(a.Prompt)}
	case domain.ActionShowStaticPanel:
		return []domain.ReplyPayload{Panel(a.Panel)}
	case domain.ActionRejectInput:
		return []domain.ReplyPayload{InputError(a.InputError)}
	}
	return nil
}

// Menu renders a button menu, or a confirm prompt for two-way confirm menus.
func Menu(m *domain.Menu) domain.ReplyPayload {
	alt := m.Title
	if alt == "" {
		alt = m.Prompt
	}
	if m.Confirm && len(m.Options) >= MaxConfirmActions {
		return domain.ReplyPayload{
			Type:    domain.PayloadConfirmPrompt,
			AltText: alt,
			Text:    m.Prompt,
			Actions: actions(m.Options, MaxConfirmActions),
		}
	}
	return domain.ReplyPayload{
		Type:    domain.PayloadButtonMenu,
		AltText: alt,
		Title:   m.Title,
		Text:    m.Prompt,
		Actions: actions(m.Options, MaxMenuActions),
	}
}

// Panel renders a static informational panel.
func Panel(p domain.Panel) domain.ReplyPayload {
	switch p {
	case domain.PanelContact:
		return domain.TextPayload(ContactText)
	default:
		return domain.TextPayload(HelpText)
	}
}

// InputError renders the corrective text for a malformed answer.
func InputError(e *domain.UserInputError) domain.ReplyPayload {
	if e != nil {
		if text, ok := inputErrorTexts[e.Expectation]; ok {
			return domain.TextPayload(text)
		}
	}
	return domain.TextPayload(HelpText)
}

// BackendFailure renders a generic failure with a short diagnostic.
func BackendFailure(err error) domain.ReplyPayload {
	diag := "unknown error"
	var be *domain.BackendError
	switch {
	case errors.As(err, &be) && be.Err != nil:
		diag = be.Err.Error()
	case err != nil:
		diag = err.Error()
	}
	return domain.TextPayload(fmt.Sprintf("❌ Query failed: %s", truncate(diag, maxDiagnosticRune)))
}

// Result renders a lookup result. An empty point lookup and an empty
// categorical lookup produce different texts.
func (r *Renderer) Result(res domain.QueryResult) []domain.ReplyPayload {
	if !res.Found() {
		if res.Point {
			return []domain.ReplyPayload{domain.TextPayload(TextPointMiss)}
		}
		return []domain.ReplyPayload{domain.TextPayload(TextNoResults)}
	}

	switch res.Kind {
	case domain.QueryMemberByID, domain.QueryMemberByNameAndPhone:
		return []domain.ReplyPayload{domain.TextPayload(memberText(res.First()))}
	case domain.QueryFacilityByExactName:
		return []domain.ReplyPayload{domain.TextPayload(facilityText(res.First()))}
	case domain.QueryFaqByCategory:
		return []domain.ReplyPayload{carousel("FAQ", res.Records, faqBubble)}
	case domain.QueryFacilityByCategory:
		return []domain.ReplyPayload{r.facilityColumns(res.Records), domain.TextPayload(TextTapHint)}
	case domain.QueryCourseByType, domain.QueryCourseByDate:
		return []domain.ReplyPayload{carousel("Courses", res.Records, courseBubble)}
	case domain.QueryCoachByType:
		return []domain.ReplyPayload{carousel("Coaches", res.Records, r.coachBubble)}
	case domain.QueryFitnessLogByNameAndPhone:
		return []domain.ReplyPayload{carousel("Fitness log", res.Records, logBubble)}
	}
	return []domain.ReplyPayload{domain.TextPayload(TextNoResults)}
}

func memberText(rec domain.Record) string {
	return fmt.Sprintf("%s\n👤 Name: %s\n🏷️ Membership type: %s\n⭐ Points: %s\n📅 Expiry date: %s",
		TextQueryOK,
		value(rec, domain.ColMemberName),
		value(rec, domain.ColMembershipType),
		value(rec, domain.ColMemberPoints),
		value(rec, domain.ColMemberExpiry),
	)
}

func facilityText(rec domain.Record) string {
	return fmt.Sprintf("🏋️ %s\n📍 Location: %s\n🕒 Opening hours: %s\n📝 %s",
		value(rec, domain.ColFacilityName),
		value(rec, domain.ColFacilityLocation),
		value(rec, domain.ColFacilityHours),
		value(rec, domain.ColFacilityDescription),
	)
}

func carousel(alt string, records []domain.Record, bubble func(domain.Record) domain.Bubble) domain.ReplyPayload {
	n := min(len(records), MaxCarouselItems)
	bubbles := make([]domain.Bubble, 0, n)
	for _, rec := range records[:n] {
		bubbles = append(bubbles, bubble(rec))
	}
	return domain.ReplyPayload{Type: domain.PayloadCarousel, AltText: alt, Bubbles: bubbles}
}

func faqBubble(rec domain.Record) domain.Bubble {
	return domain.Bubble{
		Title:  "❓ " + value(rec, domain.ColFaqQuestion),
		Fields: []domain.Field{{Label: "💬 Answer", Value: value(rec, domain.ColFaqAnswer)}},
	}
}

func courseBubble(rec domain.Record) domain.Bubble {
	return domain.Bubble{
		Title: "🧘 " + value(rec, domain.ColCourseName),
		Fields: []domain.Field{
			{Label: "🏷️ Type", Value: value(rec, domain.ColCourseType)},
			{Label: "📅 Date", Value: value(rec, domain.ColCourseDate)},
			{Label: "⏰ Time", Value: value(rec, domain.ColCourseTime)},
			{Label: "👟 Coach", Value: value(rec, domain.ColCourseCoach)},
			{Label: "📍 Location", Value: value(rec, domain.ColCourseLocation)},
			{Label: "🪑 Seats", Value: value(rec, domain.ColCourseSeats)},
		},
	}
}

func (r *Renderer) coachBubble(rec domain.Record) domain.Bubble {
	return domain.Bubble{
		Title:    "💪 " + value(rec, domain.ColCoachName),
		ImageURL: r.image(rec.String(domain.ColCoachPhoto)),
		Fields: []domain.Field{
			{Label: "🏷️ Type", Value: value(rec, domain.ColCoachType)},
			{Label: "🎯 Specialty", Value: value(rec, domain.ColCoachSpecialty)},
			{Label: "🎖️ Experience", Value: value(rec, domain.ColCoachExperience)},
		},
		Footer: []domain.MessageAction{{Label: "View courses", Text: "courses"}},
	}
}

func logBubble(rec domain.Record) domain.Bubble {
	return domain.Bubble{
		Title: "📅 " + value(rec, domain.ColLogDate),
		Fields: []domain.Field{
			{Label: "🏃 Exercise", Value: value(rec, domain.ColLogExercise)},
			{Label: "⏱️ Duration", Value: value(rec, domain.ColLogDuration)},
			{Label: "🔥 Calories", Value: value(rec, domain.ColLogCalories)},
		},
	}
}

// facilityColumns labels each tile with the facility name; tapping it sends
// the full name, which the router resolves as an exact-name lookup.
func (r *Renderer) facilityColumns(records []domain.Record) domain.ReplyPayload {
	n := min(len(records), MaxCarouselItems)
	cols := make([]domain.ImageColumn, 0, n)
	for _, rec := range records[:n] {
		name := value(rec, domain.ColFacilityName)
		cols = append(cols, domain.ImageColumn{
			ImageURL: r.image(rec.String(domain.ColFacilityImage)),
			Action:   domain.MessageAction{Label: truncate(name, MaxImageColumnLabelRunes), Text: name},
		})
	}
	return domain.ReplyPayload{Type: domain.PayloadImageCarousel, AltText: "Facilities", Columns: cols}
}

func (r *Renderer) image(url string) string {
	if url == "" {
		return r.placeholderImage
	}
	return url
}

func actions(opts []domain.MessageAction, limit int) []domain.MessageAction {
	n := min(len(opts), limit)
	out := make([]domain.MessageAction, 0, n)
	for _, o := range opts[:n] {
		out = append(out, domain.MessageAction{Label: truncate(o.Label, MaxLabelRunes), Text: o.Text})
	}
	return out
}

func value(rec domain.Record, column string) string {
	if v := rec.String(column); v != "" {
		return v
	}
	return NotProvided
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
