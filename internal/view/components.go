package view

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/modelhub/internal/core/search"
	"golang.org/x/text/message"
)

// Layout wraps the children of ctx in the document shell.
func Layout(title, lang string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!DOCTYPE html><html lang="`, templ.EscapeString(lang), `"><head><meta charset="utf-8"><title>`,
			templ.EscapeString(title), `</title></head><body><main>`,
		); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</main></body></html>`)
	})
}

func errorView(subject search.Subject, attrs map[string]any, p *message.Printer, opts PageOptions) (string, templ.Component) {
	msg, _ := attrs["message"].(string)
	_, pre := attrs["pre"]
	exception, _ := attrs["exception"].(error)
	name := search.SearchName(subject)

	return p.Sprintf("title.error"), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<section class="error"><h1>`, templ.EscapeString(p.Sprintf("error.heading")), `</h1>`); err != nil {
			return err
		}
		if name != "" {
			if err := write(w, `<p class="subject">`, templ.EscapeString(name), `</p>`); err != nil {
				return err
			}
		}
		if msg != "" {
			tag := "p"
			if pre {
				tag = "pre"
			}
			if err := write(w, `<`, tag, ` class="message">`, templ.EscapeString(msg), `</`, tag, `>`); err != nil {
				return err
			}
		}
		if opts.ShowDiagnostics && exception != nil {
			if err := write(w,
				`<details class="diagnostics"><summary>`, templ.EscapeString(p.Sprintf("error.diagnostics")),
				`</summary><pre>`, templ.EscapeString(exception.Error()), `</pre></details>`,
			); err != nil {
				return err
			}
		}
		return write(w, `<a href="/">`, templ.EscapeString(p.Sprintf("error.back")), `</a></section>`)
	})
}

// SearchResults lists entries answered for query on subjectName.
func SearchResults(p *message.Printer, subjectName, query, source string, entries []search.Entry, baseURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<section class="search"><h1>`, templ.EscapeString(p.Sprintf("search.results_for", query, subjectName)), `</h1>`,
			`<p class="source">`, templ.EscapeString(p.Sprintf("search.answered_by", source)), `</p>`,
		); err != nil {
			return err
		}
		if len(entries) == 0 {
			return write(w, `<p class="empty">`, templ.EscapeString(p.Sprintf("search.no_results")), `</p></section>`)
		}
		if err := write(w, `<ul>`); err != nil {
			return err
		}
		for _, entry := range entries {
			href := strings.TrimRight(baseURL, "/")
			if entry.Target != "" {
				href += "/" + entry.Target
			}
			if href == "" {
				href = "/"
			}
			if err := write(w,
				`<li><a href="`, templ.EscapeString(string(templ.URL(href))), `">`,
				templ.EscapeString(entry.Token), `</a></li>`,
			); err != nil {
				return err
			}
		}
		return write(w, `</ul></section>`)
	})
}

// Link is one item of a listing.
type Link struct {
	Label string
	Href  string
	Note  string
}

// Listing renders a heading followed by links.
func Listing(heading string, links []Link) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<section><h1>`, templ.EscapeString(heading), `</h1><ul>`); err != nil {
			return err
		}
		for _, link := range links {
			if err := write(w, `<li><a href="`, templ.EscapeString(string(templ.URL(link.Href))), `">`, templ.EscapeString(link.Label), `</a>`); err != nil {
				return err
			}
			if link.Note != "" {
				if err := write(w, ` <small>`, templ.EscapeString(link.Note), `</small>`); err != nil {
					return err
				}
			}
			if err := write(w, `</li>`); err != nil {
				return err
			}
		}
		return write(w, `</ul></section>`)
	})
}

// Text renders a single paragraph.
func Text(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<p>`, templ.EscapeString(text), `</p>`)
	})
}

func write(w io.Writer, parts ...string) error {
	for _, part := range parts {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}
