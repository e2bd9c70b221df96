// Package tui renders a session as a rotating 3D scatter in the terminal
// and lets the user add words to it.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dora-ryukyu/word2vec3d/corpus"
	"github.com/dora-ryukyu/word2vec3d/embedding"
	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	embedTimeout   = time.Minute
	saveTimeout    = 10 * time.Second
	rotateInterval = 80 * time.Millisecond
)

// Store persists added entries. *qdrant.Client satisfies it.
type Store interface {
	Save(ctx context.Context, entry corpus.Entry) (string, error)
}

// Model represents the main application state for the TUI embedding visualization.
type Model struct {
	width, height int

	session  *session.Session
	embedder embedding.Embedder
	store    Store
	palette  map[string]string
	logger   *slog.Logger
	version  string

	input   textinput.Model
	mode    inputMode
	pending int
	added   []string
	err     error

	camera        camera
	autoRotate    bool
	hidden        map[string]bool
	selectedIndex int
	showMetadata  bool
	showLabels    bool
}

// embeddedMsg carries the result of embedding one typed word.
type embeddedMsg struct {
	text   string
	vector []float32
	err    error
}

// savedMsg reports the outcome of persisting an added entry.
type savedMsg struct {
	label string
	id    string
	err   error
}

type rotateTickMsg time.Time

// NewModel creates a model over a fitted session. store may be nil, in which
// case added words live only for the session.
func NewModel(sess *session.Session, embedder embedding.Embedder, store Store, version string) Model {
	input := textinput.New()
	input.Placeholder = "type a word and press Enter"
	input.Prompt = "› "
	input.CharLimit = 200

	return Model{
		session:       sess,
		embedder:      embedder,
		store:         store,
		palette:       preload.Palette(),
		logger:        slog.Default().With("component", "tui"),
		version:       version,
		input:         input,
		width:         80,
		height:        24,
		camera:        newCamera(),
		hidden:        make(map[string]bool),
		selectedIndex: -1,
		showMetadata:  true,
		showLabels:    true,
	}
}

// Init starts the auto-rotation ticker if it is enabled.
func (model Model) Init() tea.Cmd {
	if model.autoRotate {
		return rotateTick()
	}
	return nil
}

// Update handles all incoming messages and updates the model state accordingly.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case tea.KeyMsg:
		if model.mode == modeInput {
			return model.handleInputKey(message)
		}
		return model.handleKeyPress(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.input.Width = max(10, message.Width-12)

	case embeddedMsg:
		return model.handleEmbedded(message)

	case savedMsg:
		if message.err != nil {
			model.err = fmt.Errorf("save %q: %w", message.label, message.err)
			model.logger.Error("save failed", "label", message.label, "error", message.err)
		} else {
			model.logger.Debug("entry saved", "label", message.label, "id", message.id)
		}

	case rotateTickMsg:
		if !model.autoRotate {
			return model, nil
		}
		model.camera = model.camera.rotate(rotationStep/4, 0)
		return model, rotateTick()
	}

	return model, nil
}

// handleInputKey routes keys to the text input while it has focus.
func (model Model) handleInputKey(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMessage.String() {
	case "ctrl+c":
		return model, tea.Quit

	case "esc":
		model.mode = modeNormal
		model.input.Blur()
		return model, nil

	case "enter":
		text := strings.TrimSpace(model.input.Value())
		model.input.Reset()
		if text == "" {
			return model, nil
		}
		model.pending++
		return model, model.embedCmd(text)
	}

	var cmd tea.Cmd
	model.input, cmd = model.input.Update(keyMessage)
	return model, cmd
}

// handleKeyPress processes keyboard input and returns the updated model and any commands.
func (model Model) handleKeyPress(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := keyMessage.String(); key {
	case "ctrl+c", "esc", "q":
		return model, tea.Quit

	case "i", "enter":
		model.mode = modeInput
		return model, model.input.Focus()

	case "left":
		model.camera = model.camera.rotate(-rotationStep, 0)

	case "right":
		model.camera = model.camera.rotate(rotationStep, 0)

	case "up":
		model.camera = model.camera.rotate(0, rotationStep)

	case "down":
		model.camera = model.camera.rotate(0, -rotationStep)

	case "+", "=":
		model.camera = model.camera.zoomBy(zoomStep)

	case "-":
		model.camera = model.camera.zoomBy(1 / zoomStep)

	case "R", "r":
		model.autoRotate = !model.autoRotate
		if model.autoRotate {
			return model, rotateTick()
		}

	case "tab":
		model.selectNextPoint()

	case "shift+tab":
		model.selectPreviousPoint()

	case "/":
		model.showMetadata = !model.showMetadata

	case "L", "l":
		model.showLabels = !model.showLabels

	case "0":
		model.hidden = make(map[string]bool)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		model.toggleCategory(int(key[0] - '1'))
	}

	return model, nil
}

// toggleCategory flips visibility of the n-th legend entry. Hidden points
// stay in the scaler bounds and are drawn dimmed.
func (model *Model) toggleCategory(n int) {
	categories := model.session.Categories()
	if n < 0 || n >= len(categories) {
		return
	}
	category := categories[n]
	if model.hidden[category] {
		delete(model.hidden, category)
	} else {
		model.hidden[category] = true
	}
}

// selectNextPoint moves the selection to the next point in the list.
func (model *Model) selectNextPoint() {
	if count := model.session.Len(); count > 0 {
		model.selectedIndex = (model.selectedIndex + 1) % count
	}
}

// selectPreviousPoint moves the selection to the previous point in the list.
func (model *Model) selectPreviousPoint() {
	if count := model.session.Len(); count > 0 {
		model.selectedIndex--
		if model.selectedIndex < 0 {
			model.selectedIndex = count - 1
		}
	}
}

// handleEmbedded adds a freshly embedded word to the session, selects it and
// hands it to the store.
func (model Model) handleEmbedded(result embeddedMsg) (tea.Model, tea.Cmd) {
	if model.pending > 0 {
		model.pending--
	}
	if result.err != nil {
		model.err = fmt.Errorf("embed %q: %w", result.text, result.err)
		model.logger.Error("embed failed", "text", result.text, "error", result.err)
		return model, nil
	}

	entry := corpus.NewEntry(result.text, preload.UserCategory, result.vector)
	point, err := model.session.Add(entry)
	if err != nil {
		model.err = err
		model.logger.Error("add failed", "text", result.text, "error", err)
		return model, nil
	}

	model.err = nil
	model.added = append(model.added, result.text)
	model.selectedIndex = point.Index
	model.logger.Info("word added", "label", point.Label, "index", point.Index, "normalized", point.Normalized, "color", point.Color)

	if model.store == nil {
		return model, nil
	}
	return model, model.saveCmd(entry)
}

// embedCmd embeds text off the update loop.
func (model Model) embedCmd(text string) tea.Cmd {
	embedder := model.embedder
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), embedTimeout)
		defer cancel()

		vector, err := embedder.Embed(ctx, text)
		return embeddedMsg{text: text, vector: vector, err: err}
	}
}

func (model Model) saveCmd(entry corpus.Entry) tea.Cmd {
	store := model.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		id, err := store.Save(ctx, entry)
		return savedMsg{label: entry.Label, id: id, err: err}
	}
}

func rotateTick() tea.Cmd {
	return tea.Tick(rotateInterval, func(t time.Time) tea.Msg {
		return rotateTickMsg(t)
	})
}

func (model Model) validSelection(points []session.Point) bool {
	return model.selectedIndex >= 0 && model.selectedIndex < len(points)
}

// scene snapshots what the canvas draws this frame.
func (model Model) scene(points []session.Point) scene {
	neighbors := make(map[int]bool)
	if model.validSelection(points) {
		for _, neighbor := range model.session.Neighbors(model.selectedIndex, neighborCount) {
			neighbors[neighbor.Index] = true
		}
	}

	selected := -1
	if model.validSelection(points) {
		selected = model.selectedIndex
	}

	return scene{
		points:     points,
		hidden:     model.hidden,
		selected:   selected,
		neighbors:  neighbors,
		showLabels: model.showLabels,
		camera:     model.camera,
	}
}

// View renders the complete UI as a string.
func (model Model) View() string {
	s := newStyles()
	layout := model.calculateLayout()
	points := model.session.Points()

	var outputBuilder strings.Builder

	outputBuilder.WriteString(model.renderTitleBar(s, layout.totalWidth))
	outputBuilder.WriteString("\n")
	outputBuilder.WriteString(model.renderInput(s, layout.totalWidth))
	outputBuilder.WriteString("\n")
	outputBuilder.WriteString(model.renderAdded(s, layout.totalWidth))
	outputBuilder.WriteString("\n")
	outputBuilder.WriteString(model.renderContentArea(s, layout, points))
	outputBuilder.WriteString("\n")

	if model.err != nil {
		outputBuilder.WriteString(model.renderError(s))
		outputBuilder.WriteString("\n")
	}

	outputBuilder.WriteString(model.renderStatusBar(s, layout.totalWidth))

	return lipgloss.NewStyle().Padding(1, 1).Render(outputBuilder.String())
}
