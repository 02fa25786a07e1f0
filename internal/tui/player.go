// Package tui renders the runtime player in a terminal.
//
// The model follows the bubbletea loop: key presses become session calls,
// slow calls (loading, submitting) run as commands and report back as
// messages, and View renders whatever the session currently holds.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/player"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionLoader fetches the assessment and builds an unstarted session
type SessionLoader func(ctx context.Context) (*player.Session, error)

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseSubmitting
	phaseDone
	phaseFailed
)

// NotifyMsg carries a save or submit outcome into the program
type NotifyMsg struct {
	Error bool
	Text  string
}

type sessionLoadedMsg struct {
	session  *player.Session
	restored bool
	err      error
}

type submittedMsg struct {
	state player.State
	err   error
}

type clockMsg time.Time

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	sectionStyle  = lipgloss.NewStyle().Bold(true)
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	questionStyle = lipgloss.NewStyle().PaddingLeft(2)
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

const helpLine = "tab/shift+tab move · ↑/↓ pick · space select · ctrl+n next · ctrl+p back · ctrl+r restart · esc quit"

// Player is the bubbletea model for one candidate session
type Player struct {
	load    SessionLoader
	ctx     context.Context
	session *player.Session

	phase     phase
	focus     int
	cursor    int
	fieldErrs map[string]string
	status    NotifyMsg
	err       error

	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model
	width    int
}

func NewPlayer(ctx context.Context, load SessionLoader) *Player {
	input := textinput.New()
	input.CharLimit = 2000
	input.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Player{
		load:      load,
		ctx:       ctx,
		fieldErrs: map[string]string{},
		input:     input,
		spinner:   spin,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *Player) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.loadSession)
}

func (p *Player) loadSession() tea.Msg {
	session, err := p.load(p.ctx)
	if err != nil {
		return sessionLoadedMsg{err: err}
	}
	return sessionLoadedMsg{session: session, restored: session.Start(p.ctx)}
}

func (p *Player) submit() tea.Msg {
	state, err := p.session.Next(p.ctx)
	return submittedMsg{state: state, err: err}
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			p.phase = phaseFailed
			p.err = msg.err
			return p, nil
		}
		p.session = msg.session
		p.phase = phaseAnswering
		if msg.restored {
			p.status = NotifyMsg{Text: "Restored your saved answers"}
		}
		cmd := p.focusQuestion(0)
		if _, timed := p.session.TimeRemaining(); timed {
			return p, tea.Batch(cmd, tickClock())
		}
		return p, cmd

	case submittedMsg:
		return p.handleSubmitted(msg), nil

	case NotifyMsg:
		p.status = msg
		return p, nil

	case clockMsg:
		if p.phase == phaseAnswering || p.phase == phaseSubmitting {
			return p, tickClock()
		}
		return p, nil

	case spinner.TickMsg:
		if p.phase != phaseLoading && p.phase != phaseSubmitting {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *Player) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if p.session != nil {
			p.session.Close()
		}
		return p, tea.Quit
	}

	switch p.phase {
	case phaseDone, phaseFailed:
		if msg.String() == "q" || msg.String() == "enter" {
			return p, tea.Quit
		}
		return p, nil
	case phaseAnswering:
	default:
		return p, nil
	}

	switch msg.String() {
	case "tab":
		return p, p.focusQuestion(p.focus + 1)
	case "shift+tab":
		return p, p.focusQuestion(p.focus - 1)
	case "ctrl+n":
		return p.next()
	case "ctrl+p":
		p.session.Previous()
		p.fieldErrs = map[string]string{}
		return p, p.focusQuestion(0)
	case "ctrl+r":
		p.session.Restart(p.ctx)
		p.fieldErrs = map[string]string{}
		p.status = NotifyMsg{Text: "Started over"}
		return p, p.focusQuestion(0)
	}

	q, ok := p.focused()
	if !ok {
		return p, nil
	}
	if q.Type.IsChoice() {
		p.handleChoiceKey(q, msg.String())
		return p, nil
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.record(q.ID, models.TextAnswer(p.input.Value()))
	}
	return p, cmd
}

func (p *Player) handleChoiceKey(q models.Question, key string) {
	switch key {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(q.Options)-1 {
			p.cursor++
		}
	case " ", "space", "enter", "x":
		if len(q.Options) == 0 {
			return
		}
		option := q.Options[p.cursor]
		if q.Type != models.MultiChoice {
			p.record(q.ID, models.TextAnswer(option))
			return
		}
		current, _ := p.session.Answer(q.ID)
		var picked []string
		removed := false
		for _, c := range current.Choices {
			if c == option {
				removed = true
				continue
			}
			picked = append(picked, c)
		}
		if !removed {
			picked = append(picked, option)
		}
		p.record(q.ID, models.ChoicesAnswer(picked...))
	}
}

func (p *Player) record(questionID string, answer models.Answer) {
	if err := p.session.RecordAnswer(questionID, answer); err != nil {
		p.status = NotifyMsg{Error: true, Text: err.Error()}
		return
	}
	delete(p.fieldErrs, questionID)
	// answers can hide questions; keep focus on the one being edited
	for i, q := range p.session.Questions() {
		if q.ID == questionID {
			p.focus = i
			return
		}
	}
	p.focus = min(p.focus, max(len(p.session.Questions())-1, 0))
}

func (p *Player) next() (tea.Model, tea.Cmd) {
	if p.session.IsLastSection() {
		// validate here so a rejected section never shows the submitting state
		if errs := p.session.Validate(); len(errs) > 0 {
			p.showErrors(errs)
			return p, nil
		}
		p.phase = phaseSubmitting
		p.status = NotifyMsg{Text: "Submitting..."}
		return p, tea.Batch(p.spinner.Tick, p.submit)
	}

	_, err := p.session.Next(p.ctx)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		p.showErrors(verrs)
		return p, nil
	}
	if err != nil {
		p.status = NotifyMsg{Error: true, Text: err.Error()}
		return p, nil
	}
	p.fieldErrs = map[string]string{}
	p.status = NotifyMsg{}
	return p, p.focusQuestion(0)
}

func (p *Player) showErrors(errs validator.ValidationErrors) {
	p.fieldErrs = map[string]string{}
	for _, e := range errs {
		p.fieldErrs[strings.TrimPrefix(e.Field, "answers.")] = e.Message
	}
	p.status = NotifyMsg{Error: true, Text: errs.First()}
}

func (p *Player) handleSubmitted(msg submittedMsg) *Player {
	if msg.err != nil {
		p.phase = phaseAnswering
		var verrs validator.ValidationErrors
		if errors.As(msg.err, &verrs) {
			p.showErrors(verrs)
		} else if !p.status.Error {
			p.status = NotifyMsg{Error: true, Text: msg.err.Error()}
		}
		return p
	}
	p.phase = phaseDone
	return p
}

func (p *Player) focused() (models.Question, bool) {
	questions := p.session.Questions()
	if p.focus < 0 || p.focus >= len(questions) {
		return models.Question{}, false
	}
	return questions[p.focus], true
}

// focusQuestion moves focus to index i of the visible questions, wrapping around
func (p *Player) focusQuestion(i int) tea.Cmd {
	questions := p.session.Questions()
	if len(questions) == 0 {
		p.focus = 0
		p.input.Blur()
		return nil
	}
	p.focus = (i%len(questions) + len(questions)) % len(questions)
	p.cursor = 0

	q := questions[p.focus]
	answer, _ := p.session.Answer(q.ID)
	if q.Type.IsChoice() {
		for i, option := range q.Options {
			if answer.Contains(option) {
				p.cursor = i
				break
			}
		}
		p.input.Blur()
		return nil
	}

	p.input.SetValue(answer.Value)
	p.input.Placeholder = placeholder(q.Type)
	return p.input.Focus()
}

func placeholder(t models.QuestionType) string {
	switch t {
	case models.Numeric:
		return "number"
	case models.FileUpload:
		return "file name"
	case models.LongText:
		return "your answer (long)"
	default:
		return "your answer"
	}
}

func (p *Player) View() string {
	switch p.phase {
	case phaseLoading:
		return fmt.Sprintf("%s Loading assessment...\n", p.spinner.View())
	case phaseFailed:
		return errorStyle.Render("Could not load the assessment: "+p.err.Error()) + "\n" + mutedStyle.Render("press q to quit") + "\n"
	case phaseDone:
		return p.doneView()
	}

	a := p.session.Assessment()
	state := p.session.State()
	section := p.session.Section()

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Section %d of %d", state.Section+1, len(a.Sections))))
	if remaining, ok := p.session.TimeRemaining(); ok {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" · %s left", remaining.Truncate(time.Second))))
	}
	b.WriteString("\n")
	done := p.session.Progress()
	b.WriteString(p.progress.ViewAs(float64(done.Percent()) / 100))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %d/%d answered", done.Answered, done.Total)))
	switch pending, degraded := p.session.DraftStatus(); {
	case degraded:
		b.WriteString(errorStyle.Render(" · autosave unavailable"))
	case pending:
		b.WriteString(mutedStyle.Render(" · saving draft"))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render(section.Title))
	b.WriteString("\n")
	if section.Description != nil && *section.Description != "" {
		b.WriteString(mutedStyle.Render(*section.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, q := range p.session.Questions() {
		b.WriteString(p.questionView(i, q))
		b.WriteString("\n")
	}

	if p.phase == phaseSubmitting {
		b.WriteString(p.spinner.View() + " ")
	}
	switch {
	case p.status.Error:
		b.WriteString(errorStyle.Render(p.status.Text))
	case p.status.Text != "":
		b.WriteString(successStyle.Render(p.status.Text))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(helpLine))
	b.WriteString("\n")
	return b.String()
}

func (p *Player) questionView(i int, q models.Question) string {
	focused := i == p.focus
	marker := "  "
	if focused {
		marker = focusStyle.Render("> ")
	}
	label := q.Text
	if q.Required {
		label += " *"
	}

	var b strings.Builder
	b.WriteString(marker + label + "\n")
	if q.Description != nil && *q.Description != "" {
		b.WriteString(questionStyle.Render(mutedStyle.Render(*q.Description)) + "\n")
	}

	answer, _ := p.session.Answer(q.ID)
	switch {
	case q.Type.IsChoice():
		for j, option := range q.Options {
			box := "( )"
			if q.Type == models.MultiChoice {
				box = "[ ]"
			}
			if answer.Contains(option) {
				box = strings.Replace(box, " ", "x", 1)
			}
			line := box + " " + option
			if focused && j == p.cursor {
				line = focusStyle.Render(line)
			}
			b.WriteString(questionStyle.Render(line) + "\n")
		}
	case focused:
		b.WriteString(questionStyle.Render(p.input.View()) + "\n")
	case answer.Value != "":
		b.WriteString(questionStyle.Render(answer.Value) + "\n")
	default:
		b.WriteString(questionStyle.Render(mutedStyle.Render("(unanswered)")) + "\n")
	}

	if msg, ok := p.fieldErrs[q.ID]; ok {
		b.WriteString(questionStyle.Render(errorStyle.Render(msg)) + "\n")
	}
	return b.String()
}

func (p *Player) doneView() string {
	body := successStyle.Render("Assessment submitted. Thank you!")
	if record := p.session.Record(); record != nil {
		body += "\n" + mutedStyle.Render("Response "+record.ID)
	}
	return boxStyle.Render(body) + "\n" + mutedStyle.Render("press q to quit") + "\n"
}
