// coinwatch-client is the terminal dashboard: a ranked asset list, a price
// chart for the selected asset, and a watchlist, refreshed from the proxy
// once a minute.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coinwatch/internal/config"
	"coinwatch/internal/domain"
	"coinwatch/internal/history"
	"coinwatch/internal/market"
	"coinwatch/internal/refresh"
	"coinwatch/internal/selection"
	"coinwatch/internal/store"
	"coinwatch/internal/view"
)

const refreshInterval = 60 * time.Second

// Styles.
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	priceStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tabActiveSt   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	estStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	highlightBG   = lipgloss.Color("236")
	chartStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	chartLossSt   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	loadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Messages.
type tickMsg time.Time
type stateMsg refresh.State
type seriesMsg history.Result

func tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForState(sub <-chan refresh.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-sub
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

type model struct {
	sched  *refresh.Scheduler
	loader *history.Loader
	sel    *selection.State
	sub    <-chan refresh.State
	logger *slog.Logger

	st           refresh.State
	series       history.Series
	chartLoading bool
	now          time.Time

	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(sched *refresh.Scheduler, loader *history.Loader, sel *selection.State, sub <-chan refresh.State, logger *slog.Logger) model {
	return model{
		sched:        sched,
		loader:       loader,
		sel:          sel,
		sub:          sub,
		logger:       logger,
		st:           sched.State(),
		chartLoading: true,
		now:          time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForState(m.sub), m.loadSeriesCmd())
}

// loadSeriesCmd mints a load token for the current selection and fetches it
// in the background. A stale result is dropped in Update.
func (m model) loadSeriesCmd() tea.Cmd {
	req := m.loader.Begin(m.sel.AssetID(), m.sel.Timeframe())
	quote := m.sel.Resolve(m.snapshot())
	loader := m.loader
	return func() tea.Msg {
		return seriesMsg(loader.Fetch(context.Background(), req, quote))
	}
}

// snapshot returns the live snapshot, or the static default dataset before
// the first refresh lands.
func (m model) snapshot() []domain.AssetQuote {
	if len(m.st.Snapshot) > 0 {
		return m.st.Snapshot
	}
	return domain.DefaultListings()
}

// cursorIndex locates the selected asset in the display list.
func (m model) cursorIndex(list []domain.AssetQuote) int {
	for i, q := range list {
		if q.ID == m.sel.AssetID() {
			return i
		}
	}
	return -1
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "r":
			m.sched.RefreshNow()
			return m, nil

		case "up", "k", "down", "j":
			list := m.snapshot()
			if len(list) == 0 {
				return m, nil
			}
			idx := m.cursorIndex(list)
			switch msg.String() {
			case "up", "k":
				if idx <= 0 {
					idx = 0
				} else {
					idx--
				}
			default:
				if idx < len(list)-1 {
					idx++
				}
			}
			if list[idx].ID != m.sel.AssetID() {
				m.sel.SelectAsset(list[idx].ID)
				m.chartLoading = true
				m.syncViewport()
				return m, m.loadSeriesCmd()
			}
			return m, nil

		case " ":
			m.sel.ToggleWatch(m.sel.AssetID())
			m.syncViewport()
			return m, nil

		case "1", "2", "3", "4":
			i := int(msg.String()[0] - '1')
			return m.switchTimeframe(domain.Timeframes[i])

		case "t":
			cur := m.sel.Timeframe()
			for i, tf := range domain.Timeframes {
				if tf == cur {
					return m.switchTimeframe(domain.Timeframes[(i+1)%len(domain.Timeframes)])
				}
			}
			return m, nil

		default:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.syncViewport()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		m.syncViewport()
		return m, tickCmd()

	case stateMsg:
		hadSnapshot := len(m.st.Snapshot) > 0
		m.st = refresh.State(msg)
		m.syncViewport()
		// The first live snapshot may change the effective quote; refetch
		// the chart so a synthesized series is seeded from live data.
		if !hadSnapshot && len(m.st.Snapshot) > 0 && m.series.Synthesized {
			m.chartLoading = true
			return m, tea.Batch(waitForState(m.sub), m.loadSeriesCmd())
		}
		return m, waitForState(m.sub)

	case seriesMsg:
		res := history.Result(msg)
		if m.loader.Apply(res) {
			m.series = res.Series
			m.chartLoading = false
			m.syncViewport()
		}
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) syncViewport() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m model) switchTimeframe(tf domain.Timeframe) (tea.Model, tea.Cmd) {
	if tf == m.sel.Timeframe() {
		return m, nil
	}
	m.sel.SelectTimeframe(string(tf))
	m.chartLoading = true
	m.syncViewport()
	return m, m.loadSeriesCmd()
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerText := " " + m.sel.Title(m.st.Snapshot)
	status := view.FormatAge(m.st.LastUpdated, m.now)
	if m.st.Loading {
		status = "refreshing..."
	}
	if m.st.LastErr != nil {
		status += "  [stale: refresh failing]"
	}
	gap := m.width - len([]rune(headerText)) - len([]rune(status)) - 2
	if gap < 1 {
		gap = 1
	}
	headerBar := headerStyle.Render(padOrTrunc(headerText+strings.Repeat(" ", gap)+status+" ", m.width))

	footerText := " q quit  r refresh  up/dn select  space watch  1-4/t timeframe  pgup/dn scroll"
	footerBar := footerStyle.Render(padOrTrunc(footerText, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func (m model) renderContent() string {
	var b strings.Builder
	snapshot := m.snapshot()
	q := m.sel.Resolve(snapshot)

	m.renderDetail(&b, q)
	m.renderChart(&b)
	m.renderList(&b, snapshot)
	m.renderWatchlist(&b)
	return b.String()
}

func (m model) renderDetail(b *strings.Builder, q domain.AssetQuote) {
	chg := view.FormatPct(q.PctChange24h)
	chgStyled := gainStyle.Render(chg)
	if q.PctChange24h < 0 {
		chgStyled = lossStyle.Render(chg)
	}
	fmt.Fprintf(b, "\n  %s %s %s   %s  %s\n",
		view.GlyphString(q.Glyph),
		nameStyle.Render(q.Name),
		symbolStyle.Render(q.Symbol),
		priceStyle.Render(view.FormatUSD(q.Price)),
		chgStyled,
	)

	b.WriteString("  ")
	for i, st := range view.Stats(q) {
		if i > 0 {
			b.WriteString(dimStyle.Render("  |  "))
		}
		fmt.Fprintf(b, "%s %s", dimStyle.Render(st.Label+":"), st.Value)
	}
	b.WriteString("\n\n")
}

func (m model) renderChart(b *strings.Builder) {
	b.WriteString("  ")
	for _, tf := range domain.Timeframes {
		label := " " + string(tf) + " "
		if tf == m.sel.Timeframe() {
			b.WriteString(tabActiveSt.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
		b.WriteString(" ")
	}
	if m.series.Synthesized && !m.chartLoading {
		b.WriteString("  ")
		b.WriteString(estStyle.Render("(est.)"))
	}
	b.WriteString("\n\n")

	if m.chartLoading {
		b.WriteString(loadingStyle.Render("  loading chart..."))
		b.WriteString("\n")
	} else {
		chartWidth := m.width - 20
		if chartWidth < 20 {
			chartWidth = 20
		}
		chart := view.RenderChart(m.series.Points, m.series.Timeframe, chartWidth, 10)
		style := chartStyle
		if len(m.series.Points) > 1 && m.series.Points[len(m.series.Points)-1].Price < m.series.Points[0].Price {
			style = chartLossSt
		}
		for _, line := range strings.Split(chart, "\n") {
			b.WriteString("  ")
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func (m model) renderList(b *strings.Builder, snapshot []domain.AssetQuote) {
	b.WriteString(sectionStyle.Render("  Top Assets"))
	if m.st.LastErr != nil {
		b.WriteString("  ")
		b.WriteString(errStyle.Render("(stale)"))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %3s  %-2s %-14s %-9s %14s %10s %10s",
		"#", "", "Name", "Symbol", "Price", "24h", "Mkt Cap")))
	b.WriteString("\n")

	rows := view.Rows(snapshot, m.sel.AssetID(), m.sel.Watching)
	for _, r := range rows {
		m.renderRow(b, r)
	}
	b.WriteString("\n")
}

func (m model) renderRow(b *strings.Builder, r view.Row) {
	star := " "
	if r.Watched {
		star = watchStyle.Render("*")
	}
	chgStyle := gainStyle
	if !r.Gain {
		chgStyle = lossStyle
	}
	nameSt := lipgloss.NewStyle()
	symSt := symbolStyle
	if r.Selected {
		nameSt = nameSt.Background(highlightBG).Bold(true)
		symSt = symSt.Background(highlightBG)
	}
	fmt.Fprintf(b, "  %3d %s%-2s %s %s %14s %s %10s\n",
		r.Rank,
		star,
		r.Glyph,
		nameSt.Render(fmt.Sprintf("%-14s", truncate(r.Name, 14))),
		symSt.Render(fmt.Sprintf("%-9s", r.Symbol)),
		r.Price,
		chgStyle.Render(fmt.Sprintf("%10s", r.Change)),
		r.Cap,
	)
}

func (m model) renderWatchlist(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("  Watchlist"))
	b.WriteString("\n")

	quotes := m.sel.Watchlist(m.snapshot())
	if len(quotes) == 0 {
		b.WriteString(dimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return
	}
	for _, q := range quotes {
		chg := view.FormatPct(q.PctChange24h)
		chgStyle := gainStyle
		if q.PctChange24h < 0 {
			chgStyle = lossStyle
		}
		fmt.Fprintf(b, "  %-2s %s %14s %s\n",
			view.GlyphString(q.Glyph),
			symbolStyle.Render(fmt.Sprintf("%-9s", q.Symbol)),
			view.FormatUSD(q.Price),
			chgStyle.Render(fmt.Sprintf("%10s", chg)),
		)
	}
}

func padOrTrunc(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func main() {
	cfgPath := "config/coinwatch.yaml"
	if p := os.Getenv("COINWATCH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("COINWATCH_CONFIG") == "" {
			cfg = config.Default()
		} else {
			log.Fatalf("loading config: %v", err)
		}
	}

	// The terminal owns stdout, so logs go to a file.
	logPath := fmt.Sprintf("/tmp/coinwatch-client-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	client := market.NewClient(cfg.Client.ProxyURL, logger)
	sched := refresh.NewScheduler(client, cfg.Client.ListingsLimit, cfg.Client.ConvertCurrency, refreshInterval, logger)
	loader := history.NewLoader(client, cfg.Client.ConvertCurrency, logger)
	sel := selection.NewState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Archive each successful refresh in the background.
	if cfg.Storage.DataDir != "" {
		archive := store.NewQuoteArchive(cfg.Storage.DataDir)
		_, archSub := sched.Subscribe(4)
		go func() {
			var last time.Time
			for st := range archSub {
				if st.LastErr != nil || st.LastUpdated.IsZero() || st.LastUpdated.Equal(last) {
					continue
				}
				last = st.LastUpdated
				if err := archive.WriteSnapshot(st.Snapshot, st.LastUpdated); err != nil {
					logger.Warn("archiving snapshot", "error", err)
				}
			}
		}()
	}

	_, sub := sched.Subscribe(16)
	sched.Start(ctx)
	defer sched.Stop()

	p := tea.NewProgram(
		initialModel(sched, loader, sel, sub, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
