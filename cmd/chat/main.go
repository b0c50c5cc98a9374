package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gatechat/access"
	"gatechat/auth"
	"gatechat/contract"
	"gatechat/domain"
	"gatechat/infrastructure/chain"
	"gatechat/infrastructure/rooms"
	"gatechat/internal"
	"gatechat/moderation"
	"gatechat/observability"
	"gatechat/registry"
	"gatechat/repositories"
	"gatechat/runtime/workers"
	"gatechat/services"
	"gatechat/session"
	"gatechat/sink"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Session stores. Both are in-memory: the session is the unit of
	// persistence, nothing survives the process.
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	stats := observability.NewSessionStats()
	if config.DebugPort > 0 {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort)
		logger.Info("Debug inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, nil, func() map[string]any {
			snapshot := stats.Snapshot()
			return map[string]any{
				"pending":   snapshot.PendingCount,
				"confirmed": snapshot.ConfirmedCount,
				"failed":    snapshot.FailedCount,
				"denied":    snapshot.DeniedCount,
			}
		})
	}

	// 3. Domain components
	blocklist, err := moderation.LoadBlocklist()
	if err != nil {
		return exitRuntime, fmt.Errorf("loading blocklist: %w", err)
	}
	moderator, err := moderation.NewModerator(blocklist.Terms, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator: %w", err)
	}
	logger.Info("Moderation loaded", "terms", len(blocklist.Terms), "languages", blocklist.Languages)

	chainCfg, err := chain.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("chain config error: %w", err)
	}
	simulator, err := chain.NewSimulator(chainCfg)
	if err != nil {
		return exitConfig, err
	}

	ctx := context.Background()
	roomRegistry := registry.NewRegistry(logger)
	var loader contract.RoomLoader = rooms.StaticLoader{}
	if config.RoomsFilepath != "" {
		loader = rooms.FileLoader{Path: config.RoomsFilepath}
	}
	if err := roomRegistry.Populate(ctx, loader); err != nil {
		return exitConfig, fmt.Errorf("populating rooms: %w", err)
	}

	history := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	index := repositories.NewMessageIndex(blugeWriter, logger, config.SearchLimit)

	coordinator := session.NewCoordinator(logger, session.Deps{
		Gate:      access.NewGate(logger, simulator, config.OracleTimeout),
		Rooms:     roomRegistry,
		Moderator: moderator,
		History:   history,
		Index:     index,
		Submitter: simulator,
		Sinks:     []contract.EventSink{sink.NewStatsSink(stats), sink.NewLogSink(logger)},
	}, session.Settings{
		BufferSize:       config.BufferSize,
		NumWorkers:       config.NumberOfWorkers,
		SubmitTimeout:    config.SubmitTimeout,
		MaxContentLength: config.MaxContentLength,
	})
	coordinator.AddWorker(workers.NewHealthMonitoringWorker(logger, stats, config.MetricInterval))

	issuer := auth.NewTokenIssuer([]byte(config.SessionTokenKey), config.SessionTokenDuration)
	service := services.NewChatService(coordinator, issuer, history, index, stats)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting session coordinator...")
		if err := coordinator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("coordinator error: %w", err)
		}
	}()

	// 5. Interactive loop
	repl := newRepl(service, os.Stdout)
	go repl.Run(ctx, bufio.NewScanner(os.Stdin), stop)

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	logger.Info("Shutting down gracefully...")
	coordinator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

type repl struct {
	service services.IChatService
	out     io.Writer
	room    domain.RoomID
}

func newRepl(service services.IChatService, out io.Writer) *repl {
	return &repl{service: service, out: out, room: "general"}
}

func (r *repl) Run(ctx context.Context, scanner *bufio.Scanner, stop func()) {
	banner := color.New(color.BgBlack, color.FgGreen).Render(" gatechat - token-gated chat ")
	fmt.Fprintln(r.out, banner)
	fmt.Fprintln(r.out, "Commands: /connect <addr> [provider], /disconnect, /rooms, /join <room>, /history, /search <terms>, /stats, /quit")
	r.prompt()

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			r.prompt()
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				stop()
				return
			}
		} else {
			r.send(ctx, line)
		}
		r.prompt()
	}
}

func (r *repl) prompt() {
	identity := r.service.Identity()
	who := "anonymous"
	if identity.Status == domain.Connected {
		who = identity.Address.Truncate(4)
	}
	fmt.Fprintf(r.out, "[%s@%s] > ", who, r.room)
}

// command dispatches a slash command; returns true on /quit.
func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/connect":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: /connect <address> [provider]")
			return false
		}
		provider := "injected"
		if len(fields) > 2 {
			provider = fields[2]
		}
		identity, _, err := r.service.Connect(domain.ConnectorResult{Address: fields[1], Provider: provider})
		if err != nil {
			fmt.Fprintln(r.out, color.Red.Render("connect failed: "+err.Error()))
			return false
		}
		fmt.Fprintf(r.out, "connected as %s via %s\n", identity.Address.Checksum(), identity.Provider)
	case "/disconnect":
		r.service.Disconnect()
		fmt.Fprintln(r.out, "wallet disconnected")
	case "/rooms":
		r.printRooms(ctx)
	case "/join":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: /join <room>")
			return false
		}
		r.join(ctx, domain.RoomID(fields[1]))
	case "/history":
		r.printHistory()
	case "/search":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: /search <terms>")
			return false
		}
		r.search(ctx, strings.Join(fields[1:], " "))
	case "/stats":
		r.printStats()
	default:
		fmt.Fprintf(r.out, "unknown command %s\n", fields[0])
	}
	return false
}

func (r *repl) send(ctx context.Context, content string) {
	if _, err := r.service.Send(ctx, r.room, content); err != nil {
		fmt.Fprintln(r.out, color.Red.Render(err.Error()))
		return
	}
	r.printTimeline()
}

func (r *repl) join(ctx context.Context, roomID domain.RoomID) {
	for _, view := range r.service.Rooms(ctx) {
		if view.Policy.ID != roomID {
			continue
		}
		if view.Decision != access.Admit {
			fmt.Fprintln(r.out, color.Yellow.Render("access denied: "+view.Decision.String()))
			return
		}
		r.room = roomID
		fmt.Fprintf(r.out, "joined %s\n", view.Policy.Name)
		r.printTimeline()
		return
	}
	fmt.Fprintf(r.out, "no such room %q\n", roomID)
}

func (r *repl) printRooms(ctx context.Context) {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"ID", "Name", "Gated", "Minimum", "Members", "Access"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, view := range r.service.Rooms(ctx) {
		policy := view.Policy
		gated := "-"
		if policy.IsTokenGated && policy.RequiredToken != nil {
			gated = policy.RequiredToken.Symbol
		}
		table.Append([]string{
			string(policy.ID), policy.Name, gated, formatMinimum(policy),
			fmt.Sprintf("%d", policy.MemberCount), view.Decision.String(),
		})
	}
	table.Render()
}

// formatMinimum renders a gated room's entry requirement at the token's
// precision, e.g. "100.00 HODL".
func formatMinimum(policy domain.RoomPolicy) string {
	if !policy.IsTokenGated || policy.RequiredToken == nil {
		return "-"
	}
	token := *policy.RequiredToken
	raw, err := domain.ParseUnits(policy.MinTokenAmount, token.Decimals)
	if err != nil {
		return policy.MinTokenAmount + " " + token.Symbol
	}
	return domain.FormatUnits(raw, token.Decimals, 2) + " " + token.Symbol
}

func (r *repl) printTimeline() {
	for _, msg := range r.service.Messages(r.room) {
		state := msg.State.String()
		switch msg.State {
		case domain.Pending:
			state = color.Yellow.Render(state)
		case domain.Confirmed:
			state = color.Green.Render(state)
		case domain.Failed:
			state = color.Red.Render(state + ": " + msg.FailReason)
		}
		fmt.Fprintf(r.out, "%s %s %s: %s [%s]\n",
			msg.CreatedAt.Format("15:04:05"), msg.Sender.Truncate(4), msg.ID.String()[:8], msg.Content, state)
	}
}

func (r *repl) printHistory() {
	stored, cursor, err := r.service.History(r.room, nil)
	if err != nil {
		fmt.Fprintln(r.out, color.Red.Render(err.Error()))
		return
	}
	for _, msg := range stored {
		fmt.Fprintf(r.out, "%s %s: %s (tx %s)\n",
			msg.At.Format("15:04:05"), msg.Sender.Truncate(4), msg.Content, truncateRef(msg.TxRef))
	}
	if cursor != nil {
		fmt.Fprintln(r.out, "... more history available")
	}
}

func (r *repl) search(ctx context.Context, terms string) {
	hits, total, err := r.service.Search(ctx, terms, r.room)
	if err != nil {
		fmt.Fprintln(r.out, color.Red.Render(err.Error()))
		return
	}
	fmt.Fprintf(r.out, "%d match(es)\n", total)
	for _, hit := range hits {
		fmt.Fprintf(r.out, "%s %s: %s\n", hit.At.Format("15:04:05"), hit.Sender.Truncate(4), hit.Content)
	}
}

func (r *repl) printStats() {
	snapshot := r.service.Stats()
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Pending", "Confirmed", "Failed", "Denied", "Redactions", "RSS MiB", "CPU %"})
	table.SetBorder(false)
	table.Append([]string{
		fmt.Sprintf("%d", snapshot.PendingCount),
		fmt.Sprintf("%d", snapshot.ConfirmedCount),
		fmt.Sprintf("%d", snapshot.FailedCount),
		fmt.Sprintf("%d", snapshot.DeniedCount),
		fmt.Sprintf("%d", snapshot.ModerationHits),
		fmt.Sprintf("%.1f", float64(snapshot.RSSBytes)/(1024*1024)),
		fmt.Sprintf("%.1f", snapshot.CPUPercent),
	})
	table.Render()
}

func truncateRef(ref string) string {
	if len(ref) <= 12 {
		return ref
	}
	return ref[:8] + "..." + ref[len(ref)-4:]
}
