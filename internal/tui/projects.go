package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/protimer/internal/store"
	"github.com/sadopc/protimer/internal/tracker"
)

var projectColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type projectFormType int

const (
	formNewProject projectFormType = iota
	formEditProject
)

// projectsModel is the add/edit project form opened from the dashboard.
type projectsModel struct {
	store  *store.Store
	width  int
	height int

	formActive bool
	form       *huh.Form
	formType   projectFormType
	editingID  string

	// Form field pointers (survive value copies)
	formName  *string
	formPath  *string
	formColor *string
	formRate  *string
}

func newProjectsModel(s *store.Store) projectsModel {
	name, path, color, rate := "", "", projectColors[0], ""
	return projectsModel{
		store:     s,
		formName:  &name,
		formPath:  &path,
		formColor: &color,
		formRate:  &rate,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(projectColors))
	for i, c := range projectColors {
		opts[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}
	return opts
}

func (p projectsModel) showNew() (projectsModel, tea.Cmd) {
	*p.formName = ""
	*p.formPath = ""
	*p.formColor = projectColors[0]
	*p.formRate = ""
	p.formType = formNewProject
	p.editingID = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(required("name")),
			huh.NewInput().Title("Path").Description("Directory the project lives in").
				Value(p.formPath).Validate(required("path")),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(p.formColor),
			huh.NewInput().Title("Hourly rate").Description("Leave empty for none").
				Value(p.formRate).Validate(validateRate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showEdit(proj tracker.ProjectSnapshot) (projectsModel, tea.Cmd) {
	*p.formName = proj.Name
	*p.formRate = ""
	if proj.HourlyRate != nil {
		*p.formRate = strconv.FormatFloat(*proj.HourlyRate, 'f', -1, 64)
	}
	p.formType = formEditProject
	p.editingID = proj.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(required("name")),
			huh.NewInput().Title("Hourly rate").Description("Leave empty for none").
				Value(p.formRate).Validate(validateRate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if !p.formActive || p.form == nil {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		rate, _ := store.ParseRate(*p.formRate)
		if p.formType == formEditProject {
			return p, p.saveEdit(p.editingID, strings.TrimSpace(*p.formName), rate)
		}
		return p, p.saveNew(strings.TrimSpace(*p.formName), *p.formPath, *p.formColor, rate)
	}

	return p, cmd
}

func (p projectsModel) saveNew(name, path, color string, rate *float64) tea.Cmd {
	st := p.store
	return func() tea.Msg {
		abs, err := filepath.Abs(strings.TrimSpace(path))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Invalid path: %v", err), isError: true}
		}
		if _, err := st.CreateProject(name, abs, color, rate); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return projectSavedMsg{name: name}
	}
}

func (p projectsModel) saveEdit(id, name string, rate *float64) tea.Cmd {
	st := p.store
	return func() tea.Msg {
		if err := st.UpdateProjectName(id, name); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if err := st.UpdateProjectRate(id, rate); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return projectSavedMsg{name: name}
	}
}

func (p projectsModel) view() string {
	title := titleStyle.Render("New Project")
	if p.formType == formEditProject {
		title = titleStyle.Render("Edit Project")
	}
	var formView string
	if p.form != nil {
		formView = p.form.View()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
	return panelStyle.Width(p.width - 4).Render(content)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateRate(s string) error {
	_, err := store.ParseRate(s)
	return err
}
