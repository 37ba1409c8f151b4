package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/natefinch/lumberjack.v2"

	"advisor-chat/internal/config"
	"advisor-chat/internal/widget"
)

const wrapWidth = 80

var (
	userLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4F9CF9")).Render("You")
	botLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E")).Render("OptiVise")
	bodyStyle = lipgloss.NewStyle().PaddingLeft(2)
	hintStyle = lipgloss.NewStyle().Faint(true)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		// Restore default SIGINT handling once the first one has been seen.
		<-ctx.Done()
		stop()
	}()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.ChatLogFile,
		MaxSize:    5,
		MaxBackups: 2,
	}
	defer func() { _ = logFile.Close() }()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel})))

	relay, err := widget.NewRelayClient(cfg.RelayURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		slog.Warn("markdown renderer unavailable, printing raw replies", "err", err)
		md = nil
	}

	p := &printer{out: os.Stdout, md: md}
	run(ctx, widget.NewConversation(relay), os.Stdin, p)
}

func run(ctx context.Context, conv *widget.Conversation, in io.Reader, p *printer) {
	for _, m := range conv.Messages() {
		p.render(m)
	}
	fmt.Fprintln(p.out, hintStyle.Render("Type a question and press Enter. Ctrl+D or Ctrl+C to quit."))

	lines := readLines(ctx, in)
	for {
		fmt.Fprint(p.out, "> ")
		var text string
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(p.out)
				return
			}
			text = line
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		reply, _ := conv.Submit(ctx, text)
		if ctx.Err() != nil {
			fmt.Fprintln(p.out)
			return
		}
		p.render(reply)
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. The channel is closed at EOF.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

type printer struct {
	out io.Writer
	md  *glamour.TermRenderer
}

func (p *printer) render(m widget.Message) {
	label := botLabel
	body := bodyStyle.Render(m.Text)
	if m.Sender == widget.SenderUser {
		label = userLabel
	} else if p.md != nil {
		if rendered, err := p.md.Render(m.Text); err == nil {
			body = strings.TrimRight(rendered, "\n")
		} else {
			slog.Warn("markdown render failed", "err", err)
		}
	}
	fmt.Fprintf(p.out, "%s %s\n%s\n\n", label, hintStyle.Render(m.Timestamp.Format("15:04")), body)
}
