// Package tui is the terminal front end. The top-level model routes between
// the login, school list, school detail and scan screens and renders the
// state of the view controllers.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"schoolmon/internal/i18n"
	"schoolmon/internal/model"
	"schoolmon/internal/qr"
	"schoolmon/internal/view"
)

type screen int

const (
	loginScreen screen = iota
	schoolsScreen
	detailScreen
	scanScreen
)

type Options struct {
	PageSize   int
	CameraPath string
	Tokens     view.TokenStore
	Clock      view.Clock
}

// refreshMsg asks for a redraw after a controller changed state on another
// goroutine.
type refreshMsg struct{}

type navMsg struct {
	to       screen
	schoolID string
}

type loginDoneMsg struct{ err error }
type fetchDoneMsg struct{ err error }
type detailDoneMsg struct{ err error }
type scanDoneMsg struct{ err error }
type logoutDoneMsg struct{ err error }
type cameraMsg struct{ status view.CameraStatus }

var _ view.Navigator = navigator{}

// navigator turns controller navigation into messages for the program.
type navigator struct {
	send func(tea.Msg)
}

func (n navigator) ToLogin()           { n.send(navMsg{to: loginScreen}) }
func (n navigator) ToSchools()         { n.send(navMsg{to: schoolsScreen}) }
func (n navigator) ToSchool(id string) { n.send(navMsg{to: detailScreen, schoolID: id}) }

type Model struct {
	ctx  context.Context
	api  view.API
	opts Options
	send func(tea.Msg)
	nav  navigator

	notifier *view.Notifier
	login    *view.Login
	schools  *view.SchoolList
	detail   *view.SchoolDetail
	scan     *view.ScanFlow
	sentinel view.Sentinel

	screen    screen
	schoolID  string
	inputs    []textinput.Model
	focus     int
	codeInput textinput.Model
	imageMode bool
	spinner   spinner.Model
	cursor    int
	offset    int
	height    int
	now       func() time.Time
}

// New builds the root model. send delivers messages to the running program
// and must be safe to call from any goroutine.
func New(ctx context.Context, api view.API, opts Options, send func(tea.Msg)) *Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.Clock == nil {
		opts.Clock = view.RealClock()
	}
	m := &Model{
		ctx:      ctx,
		api:      api,
		opts:     opts,
		send:     send,
		nav:      navigator{send: send},
		notifier: view.NewNotifier(opts.Clock),
		sentinel: view.Sentinel{Threshold: view.DefaultSentinelThreshold},
		height:   20,
		now:      time.Now,
	}
	m.notifier.OnChange(m.refresh)
	m.login = view.NewLogin(api, m.nav, opts.Tokens)
	m.login.OnChange(m.refresh)

	m.inputs = make([]textinput.Model, 2)
	for i := range m.inputs {
		t := textinput.New()
		t.CharLimit = 64
		t.Width = 32
		switch i {
		case 0:
			t.Prompt = i18n.T("auth.username") + ": "
			t.Focus()
		case 1:
			t.Prompt = i18n.T("auth.password") + ": "
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		m.inputs[i] = t
	}

	m.codeInput = textinput.New()
	m.codeInput.CharLimit = 256
	m.codeInput.Width = 40

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	return m
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, api view.API, opts Options) error {
	var p *tea.Program
	m := New(ctx, api, opts, func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	})
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) refresh() {
	m.send(refreshMsg{})
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.api.IsAuthenticated() {
		cmds = append(cmds, m.enterSchools())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, m.maybeFetch()
	case refreshMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case navMsg:
		return m, m.navigate(msg)
	case loginDoneMsg:
		return m, nil
	case fetchDoneMsg:
		m.reportError(msg.err)
		return m, m.maybeFetch()
	case detailDoneMsg:
		m.reportError(msg.err)
		return m, nil
	case scanDoneMsg:
		if errors.Is(msg.err, view.ErrEmptyCode) {
			return m, nil
		}
		if model.KindOf(msg.err) != model.KindScanRejected {
			m.reportError(msg.err)
		}
		return m, nil
	case cameraMsg:
		return m, nil
	case logoutDoneMsg:
		// The local session is gone either way; a failed revoke is only worth a toast.
		if msg.err != nil && !model.IsAuthRequired(msg.err) && !errors.Is(msg.err, context.Canceled) {
			m.notifier.ShowErrorToast(msg.err.Error(), 0)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case loginScreen:
			return m.updateLogin(msg)
		case schoolsScreen:
			return m.updateSchools(msg)
		case detailScreen:
			return m.updateDetail(msg)
		case scanScreen:
			return m.updateScan(msg)
		}
	}
	return m, nil
}

// reportError routes a failure to the notifier. Errors answered by the API
// stay on the banner until a retry; transport failures and local errors are
// toasts. Session expiry also redirects, which the controllers already did.
func (m *Model) reportError(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	var netErr net.Error
	switch {
	case model.IsAuthRequired(err):
		m.notifier.ShowErrorToast(i18n.T("errors.authRequired"), 0)
	case errors.As(err, &netErr) && netErr.Timeout():
		m.notifier.ShowErrorToast(i18n.T("errors.timeout"), 0)
	case errors.As(err, &netErr):
		m.notifier.ShowErrorToast(i18n.T("errors.networkError"), 0)
	case model.KindOf(err) != model.KindUnknown:
		m.notifier.SetGlobalError(err.Error())
	default:
		m.notifier.ShowErrorToast(err.Error(), 0)
	}
}

func (m *Model) navigate(msg navMsg) tea.Cmd {
	if m.scan != nil && msg.to != scanScreen {
		m.scan.Close()
		m.scan = nil
	}
	switch msg.to {
	case loginScreen:
		m.screen = loginScreen
		m.schools = nil
		m.notifier.ClearGlobalError()
		m.focus = 0
		for i := range m.inputs {
			m.inputs[i].Reset()
			m.inputs[i].Blur()
		}
		return m.inputs[0].Focus()
	case schoolsScreen:
		return m.enterSchools()
	case detailScreen:
		m.screen = detailScreen
		m.schoolID = msg.schoolID
		m.detail = view.NewSchoolDetail(m.api, m.nav)
		m.detail.OnChange(m.refresh)
		detail, ctx, id := m.detail, m.ctx, msg.schoolID
		return func() tea.Msg {
			return detailDoneMsg{err: detail.Load(ctx, id)}
		}
	case scanScreen:
		m.screen = scanScreen
		m.schoolID = msg.schoolID
		m.imageMode = false
		m.scan = view.NewScanFlow(m.api, m.nav, m.opts.Clock, msg.schoolID)
		m.scan.OnChange(m.refresh)
		m.codeInput.Reset()
		m.codeInput.Placeholder = i18n.T("qr.codeInputPlaceholder")
		focus := m.codeInput.Focus()
		flow, ctx, cam := m.scan, m.ctx, qr.DeviceCamera{Path: m.opts.CameraPath}
		return tea.Batch(focus, func() tea.Msg {
			return cameraMsg{status: flow.ProbeCamera(ctx, cam)}
		})
	}
	return nil
}

func (m *Model) enterSchools() tea.Cmd {
	m.screen = schoolsScreen
	if m.schools == nil {
		m.schools = view.NewSchoolList(m.api, m.nav, m.opts.PageSize)
		m.schools.OnChange(m.refresh)
		m.cursor, m.offset = 0, 0
	}
	return m.maybeFetch()
}

// visibleRows is how many list rows fit below the header.
func (m *Model) visibleRows() int {
	rows := m.height - 10
	if rows < 3 {
		rows = 3
	}
	return rows
}

// maybeFetch loads the next page when the end of the list is on screen.
func (m *Model) maybeFetch() tea.Cmd {
	if m.screen != schoolsScreen || m.schools == nil {
		return nil
	}
	state := m.schools.Snapshot()
	if !state.HasMore || state.Loading || state.Err != nil {
		return nil
	}
	last := m.offset + m.visibleRows() - 1
	if last >= len(state.Items) {
		last = len(state.Items) - 1
	}
	if !m.sentinel.Visible(last, len(state.Items)) {
		return nil
	}
	return m.fetchCmd()
}

func (m *Model) fetchCmd() tea.Cmd {
	list, ctx := m.schools, m.ctx
	return func() tea.Msg {
		return fetchDoneMsg{err: list.FetchNext(ctx)}
	}
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.focusInput()
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.focus++
			return m, m.focusInput()
		}
		if m.login.Snapshot().Submitting {
			return m, nil
		}
		login, ctx := m.login, m.ctx
		username, password := m.inputs[0].Value(), m.inputs[1].Value()
		return m, func() tea.Msg {
			return loginDoneMsg{err: login.Submit(ctx, username, password)}
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusInput() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) updateSchools(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.schools.Snapshot()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(state.Items)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(state.Items) {
			id := state.Items[m.cursor].ID
			return m, func() tea.Msg { return navMsg{to: detailScreen, schoolID: id} }
		}
	case "r":
		if state.Err != nil {
			m.notifier.ClearGlobalError()
			list, ctx := m.schools, m.ctx
			return m, func() tea.Msg { return fetchDoneMsg{err: list.Retry(ctx)} }
		}
	case "o":
		return m, m.logoutCmd()
	}
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	return m, m.maybeFetch()
}

func (m *Model) logoutCmd() tea.Cmd {
	login, ctx := m.login, m.ctx
	return func() tea.Msg {
		return logoutDoneMsg{err: login.Logout(ctx)}
	}
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		return m, func() tea.Msg { return navMsg{to: schoolsScreen} }
	case "s":
		id := m.schoolID
		return m, func() tea.Msg { return navMsg{to: scanScreen, schoolID: id} }
	case "r":
		m.notifier.ClearGlobalError()
		return m, m.navigate(navMsg{to: detailScreen, schoolID: m.schoolID})
	case "o":
		return m, m.logoutCmd()
	}
	return m, nil
}

func (m *Model) updateScan(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.scan.Snapshot()
	switch msg.String() {
	case "esc":
		id := m.schoolID
		return m, func() tea.Msg { return navMsg{to: detailScreen, schoolID: id} }
	case "tab":
		m.imageMode = !m.imageMode
		m.codeInput.Reset()
		if m.imageMode {
			m.codeInput.Placeholder = i18n.T("qr.imagePathPlaceholder")
		} else {
			m.codeInput.Placeholder = i18n.T("qr.codeInputPlaceholder")
		}
		return m, nil
	case "enter":
		switch state.Phase {
		case view.ScanSubmitting, view.ScanConfirmed:
			return m, nil
		case view.ScanFailed:
			m.scan.Reset()
			return m, nil
		}
		flow, ctx := m.scan, m.ctx
		if m.imageMode {
			path := strings.TrimSpace(m.codeInput.Value())
			return m, func() tea.Msg {
				detections, err := qr.DecodeFile(path)
				if err != nil {
					return scanDoneMsg{err: fmt.Errorf("%s: %w", i18n.T("qr.noCodeInImage"), err)}
				}
				flow.StartScanning()
				return scanDoneMsg{err: flow.OnDetect(ctx, detections)}
			}
		}
		flow.SetManualCode(m.codeInput.Value())
		return m, func() tea.Msg {
			return scanDoneMsg{err: flow.SubmitManual(ctx)}
		}
	}
	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	if !m.imageMode {
		m.scan.SetManualCode(m.codeInput.Value())
	}
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("schoolmon · " + m.title()))
	b.WriteString("\n")
	if banner := m.notifier.GlobalError(); banner != "" {
		b.WriteString(bannerStyle.Render(banner) + "\n")
	}
	b.WriteString("\n")

	switch m.screen {
	case loginScreen:
		b.WriteString(m.viewLogin())
	case schoolsScreen:
		b.WriteString(m.viewSchools())
	case detailScreen:
		b.WriteString(m.viewDetail())
	case scanScreen:
		b.WriteString(m.viewScan())
	}

	if toast, ok := m.notifier.Toast(); ok {
		b.WriteString("\n" + toastStyle.Render(toast.Message))
	}
	return docStyle.Render(b.String())
}

func (m *Model) title() string {
	switch m.screen {
	case loginScreen:
		return i18n.T("auth.login")
	case detailScreen:
		return i18n.T("schools.schoolDetails")
	case scanScreen:
		return i18n.T("qr.title")
	}
	return i18n.T("schools.title")
}

func (m *Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render(i18n.T("auth.welcomeBack")) + "\n")
	b.WriteString(helpStyle.Render(i18n.T("auth.loginSubtitle")) + "\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	state := m.login.Snapshot()
	b.WriteString("\n")
	if state.Submitting {
		b.WriteString(m.spinner.View() + " " + i18n.T("common.loading") + "\n")
	} else if state.Err != "" {
		b.WriteString(errorStyle.Render(state.Err) + "\n")
	}
	b.WriteString(helpStyle.Render("enter: " + i18n.T("auth.loginButton") + " · tab · esc"))
	return b.String()
}

func (m *Model) viewSchools() string {
	if m.schools == nil {
		return ""
	}
	state := m.schools.Snapshot()
	var b strings.Builder
	b.WriteString(selectedStyle.Render(i18n.T("nav.schools")) + "\n\n")

	if len(state.Items) == 0 && !state.HasMore {
		b.WriteString(helpStyle.Render(i18n.T("schools.noSchools")) + "\n")
	}
	end := m.offset + m.visibleRows()
	if end > len(state.Items) {
		end = len(state.Items)
	}
	for i := m.offset; i < end; i++ {
		s := state.Items[i]
		line := fmt.Sprintf("%-40s %s", s.Name, helpStyle.Render(s.Address))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+s.Name) + " " + helpStyle.Render(s.Address) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	switch {
	case state.Loading:
		b.WriteString(m.spinner.View() + " " + i18n.T("pagination.loadingMore") + "\n")
	case state.Err != nil:
		b.WriteString(errorStyle.Render(state.Err.Error()) + "  " + helpStyle.Render("r: "+i18n.T("common.retry")) + "\n")
	case !state.HasMore && len(state.Items) > 0:
		b.WriteString(helpStyle.Render(i18n.T("pagination.noMoreItems")) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ · enter: "+i18n.T("schools.viewDetails")+" · o: "+i18n.T("common.logout")+" · q"))
	return b.String()
}

func (m *Model) viewDetail() string {
	if m.detail == nil {
		return ""
	}
	state := m.detail.Snapshot()
	var b strings.Builder
	if state.School == nil {
		if state.Loading {
			return m.spinner.View() + " " + i18n.T("common.loading")
		}
		if state.Err != nil {
			return errorStyle.Render(state.Err.Error()) + "\n\n" + helpStyle.Render("r: "+i18n.T("common.retry")+" · esc: "+i18n.T("common.back"))
		}
		return ""
	}

	s := state.School
	info := strings.Join([]string{
		selectedStyle.Render(s.Name),
		labelStyle.Render(i18n.T("schools.contactInfo")) + s.Address,
		labelStyle.Render("") + s.PhoneNumber,
	}, "\n")
	b.WriteString(panelStyle.Render(info) + "\n")

	stats := m.detail.Stats()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(fmt.Sprintf("%s\n%d", i18n.T("devices.totalDevices"), stats.Total)),
		panelStyle.Render(statusStyle(model.StatusHealthy).Render(fmt.Sprintf("%s\n%d", i18n.T("devices.healthyDevices"), stats.Healthy))),
		panelStyle.Render(statusStyle(model.StatusWarning).Render(fmt.Sprintf("%s\n%d", i18n.T("devices.warningDevices"), stats.Warning))),
		panelStyle.Render(statusStyle(model.StatusCritical).Render(fmt.Sprintf("%s\n%d", i18n.T("devices.criticalDevices"), stats.Critical))),
	) + "\n\n")

	switch {
	case state.Loading:
		b.WriteString(m.spinner.View() + " " + i18n.T("common.loading") + "\n")
	case state.Err != nil:
		b.WriteString(errorStyle.Render(state.Err.Error()) + "\n")
	case len(state.Devices) == 0:
		b.WriteString(helpStyle.Render(i18n.T("devices.noDevices")) + "\n")
	}
	now := m.now()
	for _, d := range state.Devices {
		b.WriteString(fmt.Sprintf("%-6s %-42s %s  %s\n",
			d.ID, d.Name,
			statusStyle(d.Status).Render(StatusLabel(d.Status)),
			helpStyle.Render(RelativeTime(now, d.LastUpdated))))
	}
	b.WriteString("\n" + helpStyle.Render("s: "+i18n.T("schools.scanQR")+" · r: "+i18n.T("common.refresh")+" · esc: "+i18n.T("common.back")))
	return b.String()
}

func (m *Model) viewScan() string {
	if m.scan == nil {
		return ""
	}
	state := m.scan.Snapshot()
	var b strings.Builder
	b.WriteString(selectedStyle.Render(i18n.T("qr.scanTitle")) + "\n")
	b.WriteString(helpStyle.Render(i18n.T("qr.scanSubtitle")) + "\n\n")

	switch state.Camera {
	case view.CameraReady:
		path := m.opts.CameraPath
		if path == "" {
			path = qr.DefaultDevicePath
		}
		b.WriteString(successStyle.Render("● "+path) + "\n")
	case view.CameraUnknown:
	default:
		b.WriteString(errorStyle.Render(state.CameraMessage) + "\n")
	}

	switch state.Phase {
	case view.ScanSubmitting:
		b.WriteString(m.spinner.View() + " " + i18n.T("qr.processingMessage") + "\n")
	case view.ScanConfirmed:
		b.WriteString(successStyle.Render(i18n.T("qr.success")+" "+i18n.T("qr.successMessage")) + "\n")
		b.WriteString(panelStyle.Render(state.Code) + "\n")
		b.WriteString(helpStyle.Render(i18n.T("qr.redirecting")) + "\n")
		return b.String()
	case view.ScanFailed:
		if state.Err != nil {
			b.WriteString(errorStyle.Render(i18n.T("qr.error")+": "+state.Err.Error()) + "\n")
		}
		b.WriteString(helpStyle.Render("enter: "+i18n.T("common.retry")) + "\n")
		return b.String()
	}

	mode := i18n.T("qr.enterCodeManually")
	if m.imageMode {
		mode = i18n.T("qr.switchToCamera")
	}
	b.WriteString("\n" + mode + "\n" + m.codeInput.View() + "\n\n")
	b.WriteString(helpStyle.Render("enter: " + i18n.T("qr.submitCode") + " · tab: " + i18n.T("qr.switchToManual") + " · esc: " + i18n.T("common.back")))
	return b.String()
}
