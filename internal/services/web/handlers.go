package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/modelhub/internal/core/model"
	"github.com/louisbranch/modelhub/internal/core/search"
	"github.com/louisbranch/modelhub/internal/core/search/provider/filter"
	apperrors "github.com/louisbranch/modelhub/internal/platform/errors"
	"github.com/louisbranch/modelhub/internal/platform/httpx"
	"github.com/louisbranch/modelhub/internal/platform/i18n"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
	"github.com/louisbranch/modelhub/internal/view"
)

type handlers struct {
	core     *model.Core
	catalog  *Catalog
	renderer *view.TemplRenderer
	logger   *log.Logger
}

func (h *handlers) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.dashboard)
	mux.HandleFunc("GET /search", h.dashboardSearch)
	mux.HandleFunc("GET /projects/{name}", h.project)
	mux.HandleFunc("GET /projects/{name}/search", h.projectSearch)
	mux.HandleFunc("GET /projects/{name}/builds/{number}", h.projectBuild)
	mux.HandleFunc("/projects/{name}/delete", h.projectDelete)
	mux.HandleFunc("GET /agents/{name}", h.agent)
	mux.HandleFunc("GET /agents/{name}/search", h.agentSearch)
	mux.HandleFunc("GET /agents/{name}/jobs/{id}", h.agentJob)
	mux.HandleFunc("GET /whoami", h.whoami)
	mux.HandleFunc("/", h.notFound)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	var links []view.Link
	for _, project := range h.catalog.Projects() {
		links = append(links, view.Link{Label: project.Name, Href: "/projects/" + project.Name, Note: project.Description})
	}
	for _, agent := range h.catalog.Agents() {
		note := "offline"
		if agent.Online {
			note = "online"
		}
		links = append(links, view.Link{Label: agent.Name, Href: "/agents/" + agent.Name, Note: note})
	}
	h.page(w, r, "Dashboard", view.Listing("Dashboard", links))
}

func (h *handlers) dashboardSearch(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.catalog.Dashboard(), "")
}

func (h *handlers) project(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookupProject(w, r)
	if !ok {
		return
	}
	links := make([]view.Link, 0, len(project.Builds))
	for _, build := range project.Builds {
		links = append(links, view.Link{
			Label: fmt.Sprintf("#%d %s", build.Number, build.Branch),
			Href:  fmt.Sprintf("/projects/%s/builds/%d", project.Name, build.Number),
			Note:  build.Status,
		})
	}
	h.page(w, r, project.Name, view.Listing(project.Name, links))
}

func (h *handlers) projectSearch(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookupProject(w, r)
	if !ok {
		return
	}
	h.search(w, r, project, "/projects/"+project.Name)
}

func (h *handlers) projectBuild(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookupProject(w, r)
	if !ok {
		return
	}
	raw := r.PathValue("number")
	number, err := strconv.Atoi(raw)
	build, found := project.Build(number)
	if err != nil || !found {
		h.missing(r, "build", project.Name+" #"+raw)
		return
	}
	title := fmt.Sprintf("%s #%d", project.Name, build.Number)
	h.page(w, r, title, view.Listing(title, []view.Link{
		{Label: build.Branch, Href: "/projects/" + project.Name, Note: build.Status},
	}))
}

func (h *handlers) projectDelete(w http.ResponseWriter, r *http.Request) {
	project, ok := h.lookupProject(w, r)
	if !ok {
		return
	}
	if err := project.RequirePOST(r.Context()); err != nil {
		h.sendError(r, project, err)
		return
	}
	h.catalog.DeleteProject(project.Name)
	h.logger.Printf("project deleted name=%s by=%s", project.Name, requestctx.PrincipalFromContext(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) agent(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.lookupAgent(w, r)
	if !ok {
		return
	}
	links := make([]view.Link, 0, len(agent.Jobs))
	for _, job := range agent.Jobs {
		links = append(links, view.Link{
			Label: fmt.Sprintf("job %d (%s)", job.ID, job.Project),
			Href:  fmt.Sprintf("/agents/%s/jobs/%d", agent.Name, job.ID),
			Note:  job.Status,
		})
	}
	h.page(w, r, agent.Name, view.Listing(agent.Name, links))
}

func (h *handlers) agentSearch(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.lookupAgent(w, r)
	if !ok {
		return
	}
	h.search(w, r, agent, "/agents/"+agent.Name)
}

func (h *handlers) agentJob(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.lookupAgent(w, r)
	if !ok {
		return
	}
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	job, found := agent.Job(id)
	if err != nil || !found {
		h.missing(r, "job", agent.Name+" "+raw)
		return
	}
	title := fmt.Sprintf("job %d", job.ID)
	h.page(w, r, title, view.Listing(title, []view.Link{
		{Label: job.Project, Href: "/projects/" + job.Project, Note: fmt.Sprintf("%s, %d attempts", job.Status, job.Attempts)},
		{Label: agent.Name, Href: "/agents/" + agent.Name},
	}))
}

func (h *handlers) whoami(w http.ResponseWriter, r *http.Request) {
	name, err := h.core.CurrentUser(r.Context())
	if err != nil {
		h.sendError(r, h.catalog.Dashboard(), err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		if err := httpx.WriteJSON(w, http.StatusOK, map[string]string{"display_name": name}); err != nil {
			h.logger.Printf("write whoami err=%v", err)
		}
		return
	}
	p := i18n.PrinterFor(r)
	h.page(w, r, name, view.Text(p.Sprintf("whoami.signed_in_as", name)))
}

func (h *handlers) notFound(w http.ResponseWriter, r *http.Request) {
	p := i18n.PrinterFor(r)
	err := apperrors.EK(apperrors.KindNotFound, "error.not_found", p.Sprintf("error.not_found", r.URL.Path))
	h.sendError(r, h.catalog.Dashboard(), err)
}

// search answers q with the capability resolved for subject. Invalid
// filters are shown verbatim so their position markers stay aligned.
func (h *handlers) search(w http.ResponseWriter, r *http.Request, subject search.Subject, baseURL string) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	resolution := h.core.SearchDetailed(r.Context(), subject)
	entries, err := resolution.Capability.Find(query)
	if err != nil {
		var parseErr *filter.ParseError
		if errors.As(err, &parseErr) {
			rc, _ := requestctx.FromContext(r.Context())
			if sendErr := h.core.SendMessageTo(rc, subject, parseErr.Error(), true); sendErr != nil {
				h.logger.Printf("send filter error path=%s err=%v", r.URL.Path, sendErr)
			}
			return
		}
		h.sendError(r, subject, err)
		return
	}
	p := i18n.PrinterFor(r)
	h.page(w, r, p.Sprintf("title.search"), view.SearchResults(p, search.SearchName(subject), query, resolution.Source, entries, baseURL))
}

func (h *handlers) lookupProject(w http.ResponseWriter, r *http.Request) (*Project, bool) {
	name := r.PathValue("name")
	project, ok := h.catalog.Project(name)
	if !ok {
		h.missing(r, "project", name)
	}
	return project, ok
}

func (h *handlers) lookupAgent(w http.ResponseWriter, r *http.Request) (*Agent, bool) {
	name := r.PathValue("name")
	agent, ok := h.catalog.Agent(name)
	if !ok {
		h.missing(r, "agent", name)
	}
	return agent, ok
}

func (h *handlers) missing(r *http.Request, kind, name string) {
	p := i18n.PrinterFor(r)
	err := apperrors.EK(apperrors.KindNotFound, "error.not_found", p.Sprintf("error.not_found", kind+" "+name))
	h.sendError(r, h.catalog.Dashboard(), err)
}

func (h *handlers) sendError(r *http.Request, subject search.Subject, err error) {
	if sendErr := h.core.SendError(r.Context(), subject, err); sendErr != nil {
		h.logger.Printf("send error path=%s err=%v report_err=%v", r.URL.Path, err, sendErr)
	}
}

func (h *handlers) page(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	if err := h.renderer.Page(w, r, http.StatusOK, title, body); err != nil {
		h.logger.Printf("render page path=%s err=%v", r.URL.Path, err)
	}
}
