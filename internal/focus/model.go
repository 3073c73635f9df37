// Package focus терминальный таймер: секундомер и помидоро над задачами по времени.
// Завершённые сессии сохраняются через API.
package focus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/notify"
	"weekTracker/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskSource interface {
	ListTasks(ctx context.Context, weekStart string) ([]*task.Task, error)
}

type SessionSaver interface {
	AddSession(ctx context.Context, taskID uuid.UUID, seconds int, note *string) (*tracking.TimeLog, error)
}

type Mode string

const (
	ModeStopwatch Mode = "stopwatch"
	ModePomodoro  Mode = "pomodoro"
)

// DefaultTickEvery частота перерисовки часов
const DefaultTickEvery = 200 * time.Millisecond

type screen int

const (
	screenTasks screen = iota
	screenTimer
)

type (
	tickMsg        time.Time
	tasksLoadedMsg struct {
		tasks []*task.Task
		err   error
	}
	sessionSavedMsg struct {
		session timer.Session
		log     *tracking.TimeLog
		err     error
	}
	notifiedMsg struct{ err error }
)

type Options struct {
	Clock    timer.Clock
	Settings timer.PomodoroSettings
	Notifier *notify.Notifier
	TaskID   uuid.UUID
	Mode     Mode
	// TickEvery 0 отключает самозапускающиеся тики
	TickEvery time.Duration
}

type Model struct {
	ctx      context.Context
	tasks    TaskSource
	saver    SessionSaver
	notifier *notify.Notifier

	clock     timer.Clock
	stopwatch *timer.Stopwatch
	pomodoro  *timer.Pomodoro
	mode      Mode
	tickEvery time.Duration

	screen   screen
	list     []*task.Task
	cursor   int
	selected *task.Task
	wantTask uuid.UUID

	pending []timer.Session
	events  []notify.Notification
	saved   int
	status  string
	err     error
}

func New(ctx context.Context, tasks TaskSource, saver SessionSaver, opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = timer.SystemClock{}
	}
	if opts.Mode == "" {
		opts.Mode = ModePomodoro
	}
	m := &Model{
		ctx:       ctx,
		tasks:     tasks,
		saver:     saver,
		notifier:  opts.Notifier,
		clock:     opts.Clock,
		mode:      opts.Mode,
		tickEvery: opts.TickEvery,
		wantTask:  opts.TaskID,
		screen:    screenTasks,
	}
	m.stopwatch = timer.NewStopwatch(opts.Clock)
	m.pomodoro = timer.NewPomodoro(opts.Clock, opts.Settings,
		timer.WithWorkComplete(func(s timer.Session) {
			m.pending = append(m.pending, s)
		}),
		timer.WithPhaseChange(func(from, _ timer.Phase) {
			m.events = append(m.events, notify.ForPhaseChange(from, opts.Settings))
		}),
	)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadTasks(), m.tick())
}

func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.tasks.ListTasks(m.ctx, "")
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	if m.tickEvery <= 0 {
		return nil
	}
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.onTasksLoaded(msg)
		return m, nil

	case tickMsg:
		if m.mode == ModePomodoro {
			m.pomodoro.Tick()
		}
		return m, tea.Batch(m.tick(), m.drain())

	case sessionSavedMsg:
		m.onSessionSaved(msg)
		return m, nil

	case notifiedMsg:
		if msg.err != nil {
			logger.Warn("Focus: Уведомление не доставлено", zap.Error(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenTasks {
			return m, m.updateTasks(msg)
		}
		return m, m.updateTimer(msg)
	}
	return m, nil
}

func (m *Model) onTasksLoaded(msg tasksLoadedMsg) {
	if msg.err != nil {
		m.err = msg.err
		m.status = "не удалось загрузить задачи: " + msg.err.Error()
		logger.Error("Focus: Ошибка загрузки задач", msg.err)
		return
	}

	m.list = m.list[:0]
	for _, t := range msg.tasks {
		if t.Type.TracksTime() && t.Status != task.StatusArchived {
			m.list = append(m.list, t)
		}
	}
	m.cursor = 0

	if m.wantTask != uuid.Nil {
		for _, t := range m.list {
			if t.ID == m.wantTask {
				m.selectTask(t)
				return
			}
		}
		m.status = "задача " + m.wantTask.String() + " не найдена среди задач по времени"
	}
	if len(m.list) == 0 {
		m.status = "на этой неделе нет задач по времени"
	}
}

func (m *Model) selectTask(t *task.Task) {
	m.selected = t
	m.screen = screenTimer
	m.status = ""
	m.err = nil
}

func (m *Model) updateTasks(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.list) {
			m.selectTask(m.list[m.cursor])
		}
	case "r":
		return m.loadTasks()
	}
	return nil
}

func (m *Model) updateTimer(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case " ":
		m.toggle()
	case "s":
		m.stop()
		return m.drain()
	case "r":
		m.stopwatch.Reset()
		m.pomodoro.Reset()
		m.status = "таймер сброшен"
	case "m":
		if m.running() {
			m.status = "остановите таймер, чтобы сменить режим"
			return nil
		}
		m.stop()
		if m.mode == ModePomodoro {
			m.mode = ModeStopwatch
		} else {
			m.mode = ModePomodoro
		}
		return m.drain()
	case "esc":
		m.stop()
		m.screen = screenTasks
		return m.drain()
	case "q":
		m.stop()
		return tea.Sequence(m.drain(), tea.Quit)
	}
	return nil
}

func (m *Model) running() bool {
	if m.mode == ModePomodoro {
		return m.pomodoro.Running()
	}
	return m.stopwatch.State() == timer.StateRunning
}

func (m *Model) toggle() {
	if m.running() {
		if m.mode == ModePomodoro {
			m.pomodoro.Pause()
		} else {
			m.stopwatch.Pause()
		}
		return
	}
	if m.mode == ModePomodoro {
		m.pomodoro.Start()
	} else {
		m.stopwatch.Start()
	}
}

// stop завершает текущий отрезок; короткие отрезки не сохраняются
func (m *Model) stop() {
	if m.mode == ModePomodoro {
		// сессия придёт через WithWorkComplete
		phase := m.pomodoro.Phase()
		if _, ok := m.pomodoro.Stop(); !ok && phase == timer.PhaseWork {
			m.status = fmt.Sprintf("сессия короче %s не сохраняется", timer.MinSession)
		}
		return
	}
	if m.stopwatch.State() == timer.StateIdle {
		return
	}
	if s, ok := m.stopwatch.Stop(); ok {
		m.pending = append(m.pending, s)
	} else {
		m.status = fmt.Sprintf("сессия короче %s не сохраняется", timer.MinSession)
	}
}

// drain превращает накопленные сессии и уведомления в команды
func (m *Model) drain() tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range m.pending {
		cmds = append(cmds, m.save(s))
	}
	for _, n := range m.events {
		cmds = append(cmds, m.notify(n))
	}
	m.pending = nil
	m.events = nil
	return tea.Batch(cmds...)
}

func (m *Model) save(s timer.Session) tea.Cmd {
	if m.selected == nil {
		return nil
	}
	taskID := m.selected.ID
	return func() tea.Msg {
		// подпись "Фактическое время" проставит сервер
		l, err := m.saver.AddSession(m.ctx, taskID, s.Seconds(), nil)
		return sessionSavedMsg{session: s, log: l, err: err}
	}
}

func (m *Model) notify(n notify.Notification) tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	return func() tea.Msg {
		return notifiedMsg{err: m.notifier.Notify(m.ctx, n)}
	}
}

func (m *Model) onSessionSaved(msg sessionSavedMsg) {
	if msg.err != nil {
		m.err = msg.err
		m.status = "сессия не сохранена: " + msg.err.Error()
		logger.Error("Focus: Не удалось сохранить сессию", msg.err,
			zap.Int("seconds", msg.session.Seconds()))
		return
	}
	m.saved++
	m.err = nil
	m.status = "сохранено " + formatDuration(msg.session.Duration)
	logger.Info("Focus: Сессия сохранена", zap.Int("seconds", msg.session.Seconds()))
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("WeekTracker · фокус"))
	b.WriteString("\n")

	if m.notifier != nil {
		if banner, ok := m.notifier.Banner(); ok {
			b.WriteString(bannerStyle.Render(banner))
			b.WriteString("\n")
		}
	}

	if m.screen == screenTasks {
		m.viewTasks(&b)
	} else {
		m.viewTimer(&b)
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewTasks(b *strings.Builder) {
	if len(m.list) == 0 {
		b.WriteString(dimStyle.Render("загрузка задач..."))
		b.WriteString("\n")
	}
	for i, t := range m.list {
		line := fmt.Sprintf("%s %s", t.Title, dimStyle.Render(targetLabel(t)))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[↑/↓] выбор  [enter] открыть  [r] обновить  [q] выход"))
	b.WriteString("\n")
}

func (m *Model) viewTimer(b *strings.Builder) {
	fmt.Fprintf(b, "Задача: %s %s\n", m.selected.Title, dimStyle.Render(targetLabel(m.selected)))
	fmt.Fprintf(b, "Режим: %s\n\n", modeTitle(m.mode))

	var clock, caption string
	if m.mode == ModePomodoro {
		clock = formatDuration(m.pomodoro.Remaining())
		phase := m.pomodoro.Phase()
		caption = fmt.Sprintf("%s · помидоров: %d", phaseTitle(phase), m.pomodoro.Sessions())
		if phase != timer.PhaseIdle && !m.pomodoro.Running() {
			caption += " · [space] чтобы начать"
		}
	} else {
		clock = formatDuration(m.stopwatch.Elapsed())
		caption = stateTitle(m.stopwatch.State())
	}
	b.WriteString(clockStyle.Render(clock))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · сохранено сессий: %d", caption, m.saved)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("[space] старт/пауза  [s] стоп  [r] сброс  [m] режим  [esc] задачи  [q] выход"))
	b.WriteString("\n")
}

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	mm := int(d%time.Hour) / int(time.Minute)
	ss := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}

func targetLabel(t *task.Task) string {
	if t.TargetTimeHours == nil {
		return ""
	}
	return fmt.Sprintf("(цель %gч)", *t.TargetTimeHours)
}

func modeTitle(m Mode) string {
	if m == ModeStopwatch {
		return "секундомер"
	}
	return "помидоро"
}

func phaseTitle(p timer.Phase) string {
	switch p {
	case timer.PhaseWork:
		return "работа"
	case timer.PhaseShortBreak:
		return "короткий перерыв"
	case timer.PhaseLongBreak:
		return "длинный перерыв"
	}
	return "готов"
}

func stateTitle(s timer.State) string {
	switch s {
	case timer.StateRunning:
		return "идёт"
	case timer.StatePaused:
		return "пауза"
	}
	return "готов"
}
