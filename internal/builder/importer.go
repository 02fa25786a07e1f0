package builder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"gopkg.in/yaml.v3"
)

// Template is the portable authoring format for an assessment. Question ids
// are template-local labels used by conditionals; imported questions get
// fresh ids.
type Template struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description,omitempty"`
	JobID       string            `yaml:"jobId,omitempty"`
	TimeLimit   *int              `yaml:"timeLimit,omitempty"`
	Sections    []TemplateSection `yaml:"sections"`
}

type TemplateSection struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description,omitempty"`
	Questions   []TemplateQuestion `yaml:"questions"`
}

type TemplateQuestion struct {
	ID          string              `yaml:"id,omitempty"`
	Type        models.QuestionType `yaml:"type"`
	Text        string              `yaml:"text"`
	Description string              `yaml:"description,omitempty"`
	Required    bool                `yaml:"required,omitempty"`
	Options     []string            `yaml:"options,omitempty"`
	Validation  *models.Validation  `yaml:"validation,omitempty"`
	Conditional *models.Conditional `yaml:"conditional,omitempty"`
}

// ParseTemplate decodes a template from YAML or JSON bytes
func ParseTemplate(data []byte) (Template, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Template{}, fmt.Errorf("template: payload is empty")
	}
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return Template{}, fmt.Errorf("template: decode: %w", err)
	}
	return tpl, nil
}

// Import builds an assessment from template bytes. Conditionals are checked
// explicitly since a template can reference any label, including itself or a
// later question.
func Import(data []byte) (models.Assessment, error) {
	tpl, err := ParseTemplate(data)
	if err != nil {
		return models.Assessment{}, err
	}
	return FromTemplate(tpl)
}

func ImportReader(r io.Reader) (models.Assessment, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return models.Assessment{}, fmt.Errorf("template: read: %w", err)
	}
	return Import(content)
}

func ImportFile(path string) (models.Assessment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.Assessment{}, fmt.Errorf("template: read %s: %w", path, err)
	}
	a, err := Import(content)
	if err != nil {
		return models.Assessment{}, fmt.Errorf("template: %s: %w", path, err)
	}
	return a, nil
}

// FromTemplate converts a parsed template into an assessment with fresh ids
func FromTemplate(tpl Template) (models.Assessment, error) {
	a := New(strings.TrimSpace(tpl.JobID))
	a.Title = strings.TrimSpace(tpl.Title)
	a.Description = tpl.Description
	if tpl.TimeLimit != nil && *tpl.TimeLimit > 0 {
		minutes := *tpl.TimeLimit
		a.TimeLimit = &minutes
	}

	labels := make(map[string]string)
	for _, ts := range tpl.Sections {
		for _, tq := range ts.Questions {
			if tq.ID == "" {
				continue
			}
			if _, dup := labels[tq.ID]; dup {
				return models.Assessment{}, fmt.Errorf("template: duplicate question id %q", tq.ID)
			}
			labels[tq.ID] = models.NewID()
		}
	}

	for si, ts := range tpl.Sections {
		section := models.Section{
			ID:          models.NewID(),
			Title:       ts.Title,
			Description: optionalString(ts.Description),
			QuestionIDs: make([]string, 0, len(ts.Questions)),
			Order:       si,
		}
		for qi, tq := range ts.Questions {
			if !tq.Type.Valid() {
				return models.Assessment{}, fmt.Errorf("template: section %d question %d: %w: %q", si+1, qi+1, ErrInvalidType, tq.Type)
			}
			id, ok := labels[tq.ID]
			if !ok {
				id = models.NewID()
			}
			q := models.Question{
				ID:          id,
				Type:        tq.Type,
				Text:        tq.Text,
				Description: optionalString(tq.Description),
				Required:    tq.Required,
				Order:       qi,
				Options:     tq.Options,
				Validation:  tq.Validation,
			}
			if tq.Conditional != nil {
				dep, known := labels[tq.Conditional.DependsOn]
				if !known {
					// left unresolved so the dependency check reports it
					dep = tq.Conditional.DependsOn
				}
				q.Conditional = &models.Conditional{DependsOn: dep, ShowWhen: tq.Conditional.ShowWhen}
			}
			a.Questions[id] = q.Clone()
			section.QuestionIDs = append(section.QuestionIDs, id)
		}
		a.Sections = append(a.Sections, section)
	}

	if errs := validator.ValidateDependencies(a); len(errs) > 0 {
		return models.Assessment{}, errs
	}
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}

// ToTemplate converts an assessment back to the portable format, labelling
// questions q1, q2, ... in document order.
func ToTemplate(a models.Assessment) Template {
	labels := make(map[string]string)
	for i, id := range a.OrderedQuestionIDs() {
		labels[id] = fmt.Sprintf("q%d", i+1)
	}

	tpl := Template{
		Title:       a.Title,
		Description: a.Description,
		JobID:       a.JobID,
		TimeLimit:   a.TimeLimit,
	}
	for si, s := range a.Sections {
		ts := TemplateSection{Title: s.Title}
		if s.Description != nil {
			ts.Description = *s.Description
		}
		for _, q := range a.SectionQuestions(si) {
			q = q.Clone()
			tq := TemplateQuestion{
				ID:         labels[q.ID],
				Type:       q.Type,
				Text:       q.Text,
				Required:   q.Required,
				Options:    q.Options,
				Validation: q.Validation,
			}
			if q.Description != nil {
				tq.Description = *q.Description
			}
			if q.Conditional != nil {
				tq.Conditional = &models.Conditional{
					DependsOn: labels[q.Conditional.DependsOn],
					ShowWhen:  q.Conditional.ShowWhen,
				}
			}
			ts.Questions = append(ts.Questions, tq)
		}
		tpl.Sections = append(tpl.Sections, ts)
	}
	return tpl
}

// ExportTemplate renders the assessment as YAML
func ExportTemplate(a models.Assessment) ([]byte, error) {
	data, err := yaml.Marshal(ToTemplate(a))
	if err != nil {
		return nil, fmt.Errorf("template: encode: %w", err)
	}
	return data, nil
}
