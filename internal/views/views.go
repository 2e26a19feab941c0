// Package views renders the application's HTML: the two page layouts, the
// shared components (navigation, flash banner, pagination, field errors) and
// one component per page. Every piece of user supplied text is escaped with
// templ.EscapeString before it is written.
//
// The layout, navigation, flash banner and pagination live in .templ files;
// run `templ generate` after editing them.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// LayoutKind selects the page chrome.
type LayoutKind int

const (
	LayoutSite LayoutKind = iota
	LayoutAdmin
)

// Stylesheet returns the stylesheet the layout links to.
func (k LayoutKind) Stylesheet() string {
	switch k {
	case LayoutAdmin:
		return "/static/admin.css"
	default:
		return "/static/app.css"
	}
}

// Flash holds the one-shot messages shown at the top of a page.
type Flash struct {
	Success string
	Error   string
}

// Empty reports whether there is nothing to show.
func (f Flash) Empty() bool {
	return f.Success == "" && f.Error == ""
}

// NavData is what the navigation bar needs to know about the visitor.
type NavData struct {
	UserName string
	SignedIn bool
	IsAdmin  bool
	Active   string // path of the current section
}

// printer writes HTML and remembers the first write error.
type printer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newPrinter(ctx context.Context, w io.Writer) *printer {
	return &printer{ctx: ctx, w: w}
}

// raw writes trusted markup as is.
func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// text writes s escaped.
func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// rawf formats trusted markup. Only numbers and constants go through here.
func (p *printer) rawf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) render(c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

// component adapts a printer based body to templ.Component.
func component(fn func(p *printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		fn(p)
		return p.err
	})
}

// documentTitle is the text of the <title> element.
func documentTitle(kind LayoutKind, title string) string {
	if kind == LayoutAdmin {
		return title + " | Admin | Surveys"
	}
	return title + " | Surveys"
}

type navLink struct {
	href, label string
}

// navLinksFor lists the sections shown in the navigation bar.
func navLinksFor(kind LayoutKind, nav NavData) []navLink {
	if kind == LayoutAdmin {
		return []navLink{{"/admin", "Dashboard"}, {"/surveys", "Surveys"}, {"/", "Back to site"}}
	}
	links := []navLink{{"/surveys", "Browse"}}
	if nav.SignedIn {
		links = append(links, navLink{"/surveys/create", "New survey"})
	}
	if nav.IsAdmin {
		links = append(links, navLink{"/admin", "Admin"})
	}
	return links
}
