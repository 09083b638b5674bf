// Package router decides, for one inbound text and the sender's pending
// expectation, which action to take next.
package router

import (
	"strings"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/textkey"
)

// Rule names, in evaluation order.
const (
	RulePending      = "pending"
	RuleBlank        = "blank"
	RuleCommand      = "command"
	RuleDate         = "date"
	RuleFacilityName = "facility-name"
)

// Input is what a rule sees.
type Input struct {
	UserID string
	Text   string
	State  domain.ConversationState
}

// Rule is one (predicate, action constructor) pair. The returned state
// replaces the user's state.
type Rule struct {
	Name  string
	Match func(in Input) bool
	Build func(in Input) (domain.Action, domain.ConversationState)
}

// Router evaluates its rules in order; the first match wins.
type Router struct {
	rules    []Rule
	commands map[string]domain.Action
}

// New builds a router over the given command table.
func New(commands []Command) *Router {
	r := &Router{commands: make(map[string]domain.Action, len(commands))}
	for _, c := range commands {
		r.commands[c.Text] = c.Action
	}
	r.rules = []Rule{
		{Name: RulePending, Match: isPending, Build: consumePending},
		{Name: RuleBlank, Match: isBlank, Build: unhandled},
		{Name: RuleCommand, Match: r.isCommand, Build: r.runCommand},
		{Name: RuleDate, Match: isDate, Build: courseByDate},
		{Name: RuleFacilityName, Match: always, Build: facilityByName},
	}
	return r
}

// Default returns a router over DefaultCommands.
func Default() *Router {
	return New(DefaultCommands())
}

// Rules returns the rules in evaluation order.
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Route resolves rawText for userID given the current state. It performs no
// I/O; the caller persists the returned state.
func (r *Router) Route(userID, rawText string, current domain.ConversationState) (domain.Action, domain.ConversationState) {
	in := Input{UserID: userID, Text: strings.TrimSpace(rawText), State: current}
	for _, rule := range r.rules {
		if !rule.Match(in) {
			continue
		}
		action, next := rule.Build(in)
		action.Rule = rule.Name
		return action, next
	}
	return domain.Action{Kind: domain.ActionUnhandled}, current
}

func isPending(in Input) bool {
	return !in.State.IsIdle()
}

// consumePending always clears the expectation, parsed or not.
func consumePending(in Input) (domain.Action, domain.ConversationState) {
	return resolveExpectation(in.State.Expectation, in.Text), domain.Idle
}

func resolveExpectation(e domain.Expectation, text string) domain.Action {
	switch e {
	case domain.ExpectMemberID:
		if textkey.Digits(text) == "" {
			return reject(e, text)
		}
		return runQuery(domain.QueryRequest{Kind: domain.QueryMemberByID, Key: text})

	case domain.ExpectMemberIDOrNamePhone:
		if IsMemberIDShape(text) {
			return runQuery(domain.QueryRequest{Kind: domain.QueryMemberByID, Key: text})
		}
		if np, ok := ParseNamePhone(text); ok {
			return runQuery(domain.QueryRequest{Kind: domain.QueryMemberByNameAndPhone, Name: np.Name, Phone: np.Phone})
		}
		return reject(e, text)

	case domain.ExpectFitnessLogNamePhone:
		if np, ok := ParseNamePhone(text); ok {
			return runQuery(domain.QueryRequest{Kind: domain.QueryFitnessLogByNameAndPhone, Name: np.Name, Phone: np.Phone})
		}
		return reject(e, text)
	}
	return reject(e, text)
}

func reject(e domain.Expectation, text string) domain.Action {
	return domain.Action{
		Kind:        domain.ActionRejectInput,
		Expectation: e,
		InputError:  &domain.UserInputError{Expectation: e, Input: text},
	}
}

func isBlank(in Input) bool {
	return in.Text == ""
}

func unhandled(in Input) (domain.Action, domain.ConversationState) {
	return domain.Action{Kind: domain.ActionUnhandled}, in.State
}

func (r *Router) isCommand(in Input) bool {
	_, ok := r.commands[in.Text]
	return ok
}

func (r *Router) runCommand(in Input) (domain.Action, domain.ConversationState) {
	action := r.commands[in.Text]
	if action.Query != nil {
		q := *action.Query
		action.Query = &q
	}
	next := in.State
	if action.Kind == domain.ActionAskForInput && action.Expectation != domain.ExpectNone {
		next = domain.AwaitingInput(action.Expectation)
	}
	return action, next
}

func isDate(in Input) bool {
	_, ok := ParseDate(in.Text)
	return ok
}

func courseByDate(in Input) (domain.Action, domain.ConversationState) {
	date, _ := ParseDate(in.Text)
	return runQuery(domain.QueryRequest{Kind: domain.QueryCourseByDate, Key: date}), in.State
}

func always(Input) bool { return true }

// facilityByName guesses the text is a facility name tapped from a carousel.
func facilityByName(in Input) (domain.Action, domain.ConversationState) {
	return runQuery(domain.QueryRequest{Kind: domain.QueryFacilityByExactName, Key: in.Text, Fallback: true}), in.State
}
