package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Bixxler/nextech/internal/story"
)

// LoadFunc fetches the story list shown by the browser.
type LoadFunc func(ctx context.Context) ([]story.Story, error)

// OpenFunc opens a story URL outside the terminal.
type OpenFunc func(url string) error

type storiesLoadedMsg struct {
	stories []story.Story
	err     error
}

type openedMsg struct {
	url string
	err error
}

type browserKeys struct {
	Up     key.Binding
	Down   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Filter key.Binding
	Open   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Prev, k.Next, k.Filter, k.Open, k.Reload, k.Quit}
}

func (k browserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = browserKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Prev:   key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
	Next:   key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Open:   key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Browser is an interactive, paginated story list with a live filter on
// title and url. Changing the filter goes back to the first page.
type Browser struct {
	load LoadFunc
	open OpenFunc

	all      []story.Story
	filtered []story.Story

	filter  textinput.Model
	pager   paginator.Model
	help    help.Model
	keys    browserKeys
	cursor  int
	loading bool
	err     error
	status  string
	width   int
}

func NewBrowser(load LoadFunc, open OpenFunc) *Browser {
	ti := textinput.New()
	ti.Placeholder = "Filter by title or url..."
	ti.Prompt = "/ "

	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = story.DefaultPageSize

	return &Browser{
		load:    load,
		open:    open,
		filter:  ti,
		pager:   p,
		help:    help.New(),
		keys:    defaultKeys,
		loading: true,
		width:   defaultWidth,
	}
}

func (b *Browser) loadStories() tea.Cmd {
	load := b.load
	return func() tea.Msg {
		stories, err := load(context.Background())
		return storiesLoadedMsg{stories: stories, err: err}
	}
}

func (b *Browser) openURL(url string) tea.Cmd {
	open := b.open
	return func() tea.Msg {
		if open == nil {
			return openedMsg{url: url, err: fmt.Errorf("no opener configured")}
		}
		return openedMsg{url: url, err: open(url)}
	}
}

func (b *Browser) Init() tea.Cmd {
	return b.loadStories()
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.help.Width = msg.Width
		b.filter.Width = max(msg.Width-4, 10)
		return b, nil

	case storiesLoadedMsg:
		b.loading = false
		b.err = msg.err
		if msg.err == nil {
			b.all = msg.stories
			b.status = ""
		}
		b.applyFilter()
		return b, nil

	case openedMsg:
		if msg.err != nil {
			b.status = msg.err.Error()
		} else {
			b.status = "Opened " + msg.url
		}
		return b, nil

	case tea.KeyMsg:
		if b.filter.Focused() {
			return b.updateFilter(msg)
		}
		return b.handleKey(msg)
	}

	return b, nil
}

func (b *Browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return b, tea.Quit
	case tea.KeyEnter:
		b.filter.Blur()
		return b, nil
	case tea.KeyEsc:
		b.filter.Blur()
		b.filter.SetValue("")
		b.applyFilter()
		return b, nil
	}

	before := b.filter.Value()
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	if b.filter.Value() != before {
		b.applyFilter()
	}
	return b, cmd
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Filter):
		return b, b.filter.Focus()
	case key.Matches(msg, b.keys.Reload):
		b.loading = true
		return b, b.loadStories()
	case key.Matches(msg, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, b.keys.Down):
		if b.cursor < len(b.Visible())-1 {
			b.cursor++
		}
	case key.Matches(msg, b.keys.Prev):
		b.pager.PrevPage()
		b.cursor = 0
	case key.Matches(msg, b.keys.Next):
		b.pager.NextPage()
		b.cursor = 0
	case key.Matches(msg, b.keys.Open):
		if s, ok := b.Selected(); ok {
			return b, b.openURL(s.URL)
		}
	}
	return b, nil
}

// applyFilter recomputes the filtered list and returns to the first page.
func (b *Browser) applyFilter() {
	b.filtered = story.Filter(b.all, b.filter.Value())
	if n := len(b.filtered); n > 0 {
		b.pager.SetTotalPages(n)
	} else {
		b.pager.TotalPages = 1
	}
	b.pager.Page = 0
	b.cursor = 0
}

// Page is the current 1-based page number.
func (b *Browser) Page() int {
	return b.pager.Page + 1
}

// Pages is the page count of the filtered list, at least 1.
func (b *Browser) Pages() int {
	return max(b.pager.TotalPages, 1)
}

func (b *Browser) FilterValue() string {
	return b.filter.Value()
}

// Visible returns the stories on the current page.
func (b *Browser) Visible() []story.Story {
	start, end := b.pager.GetSliceBounds(len(b.filtered))
	return b.filtered[start:end]
}

// Selected is the story under the cursor.
func (b *Browser) Selected() (story.Story, bool) {
	visible := b.Visible()
	if b.cursor < 0 || b.cursor >= len(visible) {
		return story.Story{}, false
	}
	return visible[b.cursor], true
}

func (b *Browser) View() string {
	var sections []string
	sections = append(sections, HeaderStyle.Render(CompactLogo+" new stories"))

	if b.filter.Focused() || b.filter.Value() != "" {
		sections = append(sections, b.filter.View())
	}

	switch {
	case b.loading:
		sections = append(sections, GetCompactBanner("Loading stories…"))
	case b.err != nil:
		sections = append(sections, ErrorMessageStyle.Render("Error: "+b.err.Error()))
	case len(b.filtered) == 0:
		sections = append(sections, HelpStyle.Render("No stories found"))
	default:
		sections = append(sections, b.renderList())
	}

	if b.status != "" {
		sections = append(sections, WarnMessageStyle.Render(truncateEnd(b.status, b.width)))
	}
	sections = append(sections, b.help.View(b.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (b *Browser) renderList() string {
	offset := b.pager.Page * b.pager.PerPage
	textWidth := max(b.width-6, 10)

	var rows []string
	for i, s := range b.Visible() {
		titleStyle := StoryTitleStyle
		marker := "  "
		if i == b.cursor {
			titleStyle = SelectedStoryStyle
			marker = "› "
		}
		rows = append(rows,
			marker+IndexStyle.Render(fmt.Sprintf("%2d.", offset+i+1))+" "+titleStyle.Render(truncateEnd(s.Title, textWidth)),
			"     "+URLStyle.Render(truncateMiddle(s.URL, textWidth)),
		)
	}

	noun := "stories"
	if len(b.filtered) == 1 {
		noun = "story"
	}
	footer := strings.Join([]string{
		b.pager.View(),
		fmt.Sprintf("%d %s", len(b.filtered), noun),
	}, " • ")
	rows = append(rows, "", StatusBarStyle.Render(footer))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
