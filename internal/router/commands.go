package router

import (
	"github.com/shoushou-fitness/clubbot/internal/domain"
)

// Command texts. Buttons send these back verbatim.
const (
	CmdMemberArea       = "member area"
	CmdQueryMember      = "query member data"
	CmdForgotMemberID   = "forgot member id"
	CmdFindMemberByName = "find member by name"
	CmdFitnessLog       = "fitness log"
	CmdFAQ              = "FAQ"
	CmdFacilities       = "facilities"
	CmdCourses          = "courses"
	CmdSearchByDate     = "search by date"
	CmdCoaches          = "coaches"
	CmdHelp             = "help"
	CmdContact          = "contact us"
)

const (
	PromptMemberID          = "Please enter your member ID:"
	PromptMemberIDOrName    = "Please enter your member ID, or your name followed by your mobile number (e.g. Chen Wei0912345678):"
	PromptFitnessLogName    = "Please enter your name followed by your mobile number (e.g. Chen Wei0912345678):"
	PromptCourseDate        = "Please enter a date (YYYY-MM-DD):"
	PromptChooseFunction    = "Please choose a function"
	PromptRememberMemberID  = "Do you remember your member ID?"
	PromptChooseCategory    = "Please choose a category"
	PromptChooseCourseType  = "Please choose a course type or search by date"
	PromptChooseCoachType   = "Please choose a coach type"
	PromptChooseFAQCategory = "Please choose a question category"
)

// Command is one entry of the static command table.
type Command struct {
	Text   string
	Action domain.Action
}

// categoryButton pairs a button text with the sheet value it queries.
type categoryButton struct {
	Label string
	Text  string
	Value string
}

var faqCategories = []categoryButton{
	{"Membership", "membership FAQ", "Membership"},
	{"Payment", "payment FAQ", "Payment"},
	{"Facility", "facility FAQ", "Facility"},
	{"Course", "course FAQ", "Course"},
}

var facilityCategories = []categoryButton{
	{"Cardio Zone", "cardio zone", "Cardio"},
	{"Weight Zone", "weight zone", "Weights"},
	{"Pool", "pool", "Pool"},
	{"Studio", "studio", "Studio"},
}

var courseTypes = []categoryButton{
	{"Yoga", "yoga class", "Yoga"},
	{"Spinning", "spinning class", "Spinning"},
	{"Pilates", "pilates class", "Pilates"},
}

var coachTypes = []categoryButton{
	{"Personal Trainer", "personal trainer", "Personal Trainer"},
	{"Yoga Instructor", "yoga instructor", "Yoga Instructor"},
	{"Swimming Coach", "swimming coach", "Swimming Coach"},
	{"Group Fitness", "group fitness coach", "Group Fitness Coach"},
}

// DefaultCommands returns the stock command table.
func DefaultCommands() []Command {
	cmds := []Command{
		{CmdMemberArea, showMenu(&domain.Menu{
			Title:   "Member Area",
			Prompt:  PromptChooseFunction,
			Options: []domain.MessageAction{{Label: CmdQueryMember, Text: CmdQueryMember}},
		})},
		{CmdQueryMember, askFor(domain.ExpectMemberID, PromptMemberID)},
		{CmdForgotMemberID, showMenu(&domain.Menu{
			Prompt:  PromptRememberMemberID,
			Confirm: true,
			Options: []domain.MessageAction{
				{Label: "Yes", Text: CmdQueryMember},
				{Label: "No", Text: CmdFindMemberByName},
			},
		})},
		{CmdFindMemberByName, askFor(domain.ExpectMemberIDOrNamePhone, PromptMemberIDOrName)},
		{CmdFitnessLog, askFor(domain.ExpectFitnessLogNamePhone, PromptFitnessLogName)},
		{CmdFAQ, showMenu(categoryMenu("FAQ", PromptChooseFAQCategory, faqCategories))},
		{CmdFacilities, showMenu(categoryMenu("Facilities", PromptChooseCategory, facilityCategories))},
		{CmdCourses, showMenu(courseMenu())},
		{CmdSearchByDate, askFor(domain.ExpectNone, PromptCourseDate)},
		{CmdCoaches, showMenu(categoryMenu("Coaches", PromptChooseCoachType, coachTypes))},
		{CmdHelp, showPanel(domain.PanelHelp)},
		{CmdContact, showPanel(domain.PanelContact)},
	}

	cmds = appendQueries(cmds, faqCategories, domain.QueryFaqByCategory)
	cmds = appendQueries(cmds, facilityCategories, domain.QueryFacilityByCategory)
	cmds = appendQueries(cmds, courseTypes, domain.QueryCourseByType)
	cmds = appendQueries(cmds, coachTypes, domain.QueryCoachByType)
	return cmds
}

func appendQueries(cmds []Command, buttons []categoryButton, kind domain.QueryKind) []Command {
	for _, b := range buttons {
		cmds = append(cmds, Command{
			Text:   b.Text,
			Action: runQuery(domain.QueryRequest{Kind: kind, Key: b.Value}),
		})
	}
	return cmds
}

func categoryMenu(title, prompt string, buttons []categoryButton) *domain.Menu {
	menu := &domain.Menu{Title: title, Prompt: prompt}
	for _, b := range buttons {
		menu.Options = append(menu.Options, domain.MessageAction{Label: b.Label, Text: b.Text})
	}
	return menu
}

func courseMenu() *domain.Menu {
	menu := categoryMenu("Courses", PromptChooseCourseType, courseTypes)
	menu.Options = append(menu.Options, domain.MessageAction{Label: "Search by date", Text: CmdSearchByDate})
	return menu
}

func showMenu(menu *domain.Menu) domain.Action {
	return domain.Action{Kind: domain.ActionShowMenu, Menu: menu}
}

func askFor(e domain.Expectation, prompt string) domain.Action {
	return domain.Action{Kind: domain.ActionAskForInput, Expectation: e, Prompt: prompt}
}

func showPanel(p domain.Panel) domain.Action {
	return domain.Action{Kind: domain.ActionShowStaticPanel, Panel: p}
}

func runQuery(req domain.QueryRequest) domain.Action {
	return domain.Action{Kind: domain.ActionRunQuery, Query: &req}
}
