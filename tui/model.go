// Package tui is the terminal front-end. A terminal cannot report key
// releases or real touches, so each keypress becomes a short synthetic
// touch at the center of the bound key: a TouchSource that yields zero
// or one points, which is all the engine needs to know.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kosketin"
	"kosketin/touch"
)

// The engine hit-tests in viewport coordinates, so the TUI announces a
// virtual viewport and places its synthetic touches inside it.
const (
	virtualNaturalWidth = 100.0
	virtualHeight       = 300.0

	// how long one keypress keeps its key held
	holdDuration  = 250 * time.Millisecond
	pruneInterval = 50 * time.Millisecond
)

// VirtualHeight is the height of the TUI's virtual viewport, exported so
// the binary can size the engine to match before the model exists.
const VirtualHeight = virtualHeight

// VirtualWidth returns the virtual viewport width for a keyboard.
func VirtualWidth(kb *kosketin.Keyboard) float64 {
	return virtualNaturalWidth * float64(kb.NaturalCount())
}

var (
	naturalRow = []string{"a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'", "\\"}
	sharpRow   = []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]"}

	naturalStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("255")).Padding(0, 1)
	naturalPressedStyle = naturalStyle.Background(lipgloss.Color("45"))
	sharpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236")).Padding(0, 1)
	sharpPressedStyle   = sharpStyle.Background(lipgloss.Color("30"))
	hintStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type (
	Model struct {
		broker   *touch.Broker
		keyboard *kosketin.Keyboard
		pressed  *touch.PressedSet
		layout   *kosketin.Layout
		bindings map[string]int       // terminal key -> keyboard key index
		labels   []string             // keyboard key index -> terminal key, "" if unbound
		expires  map[int]time.Time    // live synthetic touches
		quitting bool
	}

	updateMsg struct{}
	pruneMsg  time.Time
)

func NewModel(broker *touch.Broker, kb *kosketin.Keyboard, pressed *touch.PressedSet) (Model, error) {
	width := VirtualWidth(kb)
	layout, err := kosketin.NewLayout(kb, width, virtualHeight)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		broker:   broker,
		keyboard: kb,
		pressed:  pressed,
		layout:   layout,
		bindings: make(map[string]int),
		labels:   make([]string, kb.Count()),
		expires:  make(map[int]time.Time),
	}
	for i := 0; i < kb.Count(); i++ {
		var binding string
		if k := kb.Key(i); k.Sharp {
			if pos, ok := kb.LeftNatural(i); ok && pos+1 < len(sharpRow) {
				binding = sharpRow[pos+1]
			}
		} else if pos := kb.NaturalPosition(i); pos < len(naturalRow) {
			binding = naturalRow[pos]
		}
		if binding != "" {
			m.bindings[binding] = i
			m.labels[i] = binding
		}
	}
	broker.SendSize(width, virtualHeight)
	return m, nil
}

func listenForUpdates(broker *touch.Broker) tea.Cmd {
	return func() tea.Msg {
		<-broker.ToGUI
		return updateMsg{}
	}
}

func prune() tea.Cmd {
	return tea.Tick(pruneInterval, func(t time.Time) tea.Msg { return pruneMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForUpdates(m.broker), prune())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch s := msg.String(); s {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.expires = map[int]time.Time{}
			m.sendFrame()
			return m, tea.Quit
		default:
			if i, ok := m.bindings[s]; ok {
				m.expires[i] = time.Now().Add(holdDuration)
				m.sendFrame()
			}
		}
	case pruneMsg:
		now := time.Time(msg)
		changed := false
		for i, deadline := range m.expires {
			if now.After(deadline) {
				delete(m.expires, i)
				changed = true
			}
		}
		if changed {
			m.sendFrame()
		}
		return m, prune()
	case updateMsg:
		return m, listenForUpdates(m.broker)
	}
	return m, nil
}

// sendFrame turns the live synthetic touches into one snapshot frame. A
// natural's touch point sits below the sharp band so it cannot be
// intercepted by the sharp above it.
func (m Model) sendFrame() {
	var frame touch.Frame
	for i := range m.expires {
		r, ok := m.layout.Rect(i)
		if !ok {
			continue
		}
		y := r.Y + r.H/2
		if !m.keyboard.Key(i).Sharp {
			y = 0.8 * virtualHeight
		}
		frame.Points = append(frame.Points, touch.Point{X: r.X + r.W/2, Y: y})
	}
	m.broker.SendFrame(frame)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sharps, naturals []string
	for i := 0; i < m.keyboard.Count(); i++ {
		k := m.keyboard.Key(i)
		label := k.Name
		if m.labels[i] != "" {
			label += " " + hintStyle.Render(m.labels[i])
		}
		if k.Sharp {
			style := sharpStyle
			if m.pressed.Contains(i) {
				style = sharpPressedStyle
			}
			sharps = append(sharps, style.Render(label))
		} else {
			style := naturalStyle
			if m.pressed.Contains(i) {
				style = naturalPressedStyle
			}
			naturals = append(naturals, style.Render(label))
		}
	}
	var b strings.Builder
	b.WriteString("  " + strings.Join(sharps, " ") + "\n")
	b.WriteString(strings.Join(naturals, " ") + "\n")
	b.WriteString(hintStyle.Render("press the marked keys to play, q to quit") + "\n")
	return b.String()
}
