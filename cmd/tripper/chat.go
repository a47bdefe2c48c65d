package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/audio/miniaudio"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("tripper> ")
	audioStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	footerStyle     = mutedStyle
)

const chatLongDesc string = `Chat with the travel guide. Replies stream in as they are written.

Type /reset to start over and /quit or ctrl+c to leave.

Examples:
  tripper chat
  tripper chat --language "Français" --audio --speak`

type chatCommander struct {
	language string
	audio    bool
	speak    bool
}

func newChatCmd(flags *rootFlags) *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the travel guide",
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmder.audio && !a.Assistant.VoiceEnabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Voice replies are not configured, continuing with text only."))
				cmder.audio = false
			}

			var player audio.Player
			if cmder.audio && cmder.speak && a.AudioDir != "" {
				client, err := miniaudio.NewClient()
				if err != nil {
					return fmt.Errorf("opening audio device: %w", err)
				}
				defer client.Close()
				player = client
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			model := newChatModel(ctx, a.Assistant, cmder, player, a.AudioDir)
			_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&cmder.language, "language", "l", tripper.DefaultLanguage, "Language of the replies")
	cmd.Flags().BoolVar(&cmder.audio, "audio", false, "Also produce spoken replies")
	cmd.Flags().BoolVar(&cmder.speak, "speak", false, "Play spoken replies through the speakers")

	return cmd
}

type snapshotMsg struct {
	conv tripper.Conversation
}

type replyDoneMsg struct{}

type playedMsg struct {
	err error
}

type chatModel struct {
	ctx       context.Context
	assistant *tripper.Assistant
	options   *chatCommander
	player    audio.Player
	audioDir  string

	conv      *tripper.Conversation
	shown     tripper.Conversation
	snapshots chan tripper.Conversation
	streaming bool
	status    string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
}

func newChatModel(ctx context.Context, assistant *tripper.Assistant, options *chatCommander, player audio.Player, audioDir string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about your next trip"
	input.Prompt = userPrompt
	input.Focus()

	return chatModel{
		ctx:       ctx,
		assistant: assistant,
		options:   options,
		player:    player,
		audioDir:  audioDir,
		conv:      tripper.NewConversation(),
		input:     input,
		viewport:  viewport.New(80, 20),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:     80,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1)
		m.input.Width = max(msg.Width-lipgloss.Width(userPrompt)-1, 10)
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case snapshotMsg:
		m.shown = msg.conv
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, waitForSnapshot(m.snapshots)

	case replyDoneMsg:
		m.streaming = false
		m.snapshots = nil
		m.status = ""
		return m, m.playLatestAudio()

	case playedMsg:
		if msg.err != nil {
			m.status = "could not play reply: " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewportCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewportCmd)
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.streaming {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	switch text {
	case "":
		m.status = tripper.ErrEmptyMessage.Message
		return m, nil
	case "/quit":
		return m, tea.Quit
	case "/reset":
		m.conv.Reset()
		m.shown = m.conv.Snapshot()
		m.status = "conversation cleared"
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	}

	m.streaming = true
	m.status = ""
	m.snapshots = make(chan tripper.Conversation)
	go m.stream(text, m.snapshots)
	return m, waitForSnapshot(m.snapshots)
}

// stream runs the submission, handing snapshots to the UI until it is done
// or the program exits.
func (m chatModel) stream(text string, out chan<- tripper.Conversation) {
	defer close(out)
	for snapshot := range m.assistant.Submit(m.ctx, m.conv, text, m.options.audio, m.options.language) {
		select {
		case out <- snapshot:
		case <-m.ctx.Done():
			return
		}
	}
}

func waitForSnapshot(snapshots <-chan tripper.Conversation) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-snapshots
		if !ok {
			return replyDoneMsg{}
		}
		return snapshotMsg{conv: snapshot}
	}
}

// playLatestAudio plays the reply if the last turn is a locally stored audio
// turn.
func (m chatModel) playLatestAudio() tea.Cmd {
	if m.player == nil {
		return nil
	}
	last, ok := m.shown.Last()
	if !ok || last.Assistant.Kind != tripper.ReplyAudio || last.Assistant.Audio == nil {
		return nil
	}
	file := filepath.Join(m.audioDir, path.Base(last.Assistant.Audio.URI))

	return func() tea.Msg {
		data, err := os.ReadFile(file)
		if err != nil {
			return playedMsg{err: err}
		}
		pcm, info, err := audio.DecodeWAV(data)
		if err != nil {
			return playedMsg{err: err}
		}
		return playedMsg{err: m.player.Play(m.ctx, pcm, info)}
	}
}

func (m chatModel) renderHistory() string {
	width := max(m.width-2, 20)
	var b strings.Builder
	for _, turn := range m.shown.Turns() {
		if turn.UserText != "" {
			b.WriteString(userPrompt + wordwrap.String(turn.UserText, width) + "\n")
		}
		switch turn.Assistant.Kind {
		case tripper.ReplyAudio:
			if turn.Assistant.Audio != nil {
				b.WriteString(audioStyle.Render("🔊 "+turn.Assistant.Audio.URI) + "\n")
			}
		default:
			if turn.Assistant.Text != "" {
				b.WriteString(assistantPrompt + wordwrap.String(turn.Assistant.Text, width) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m chatModel) View() string {
	footer := footerStyle.Render(m.status)
	if m.streaming {
		footer = m.spinner.View() + footerStyle.Render(" writing...")
	}
	return m.viewport.View() + "\n" + m.input.View() + "\n" + footer
}
