package views

import (
	"sort"

	"github.com/a-h/templ"
)

// FieldErrors lists every field error, sorted by field name. It renders
// nothing for an empty map.
func FieldErrors(fields map[string][]string) templ.Component {
	return component(func(p *printer) {
		if len(fields) == 0 {
			return
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		p.raw(`<ul class="field-errors">`)
		for _, name := range names {
			for _, msg := range fields[name] {
				p.raw(`<li><strong>`)
				p.text(name)
				p.raw(`</strong> `)
				p.text(msg)
				p.raw(`</li>`)
			}
		}
		p.raw(`</ul>`)
	})
}

// fieldError writes the messages for one field next to its input.
func (p *printer) fieldError(fields map[string][]string, name string) {
	msgs := fields[name]
	if len(msgs) == 0 {
		return
	}
	p.raw(`<p class="field-error">`)
	for i, msg := range msgs {
		if i > 0 {
			p.raw(`; `)
		}
		p.text(msg)
	}
	p.raw(`</p>`)
}

// input writes a labelled input with its current value and errors.
func (p *printer) input(fields map[string][]string, typ, name, label, value string) {
	p.raw(`<label>`)
	p.text(label)
	p.raw(`<input type="` + typ + `" name="`)
	p.text(name)
	p.raw(`" value="`)
	p.text(value)
	p.raw(`"></label>`)
	p.fieldError(fields, name)
}

// SurveyForm is the creation form as submitted, used to re-render it after a
// validation failure.
type SurveyForm struct {
	Title       string
	Description string
	Questions   []QuestionForm
}

// QuestionForm is one question row of SurveyForm. Options holds the raw,
// comma separated option list.
type QuestionForm struct {
	Prompt  string
	Options string
}
