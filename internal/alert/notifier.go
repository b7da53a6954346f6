package alert

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*ConsoleNotifier)(nil)

var (
	normalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	urgentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// ConsoleNotifier writes one styled line per notification.
type ConsoleNotifier struct {
	log *logger.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a notifier writing to out.
func NewConsoleNotifier(out io.Writer, log *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log.Named("notify"), out: out}
}

// Notify prints a normal notification.
func (n *ConsoleNotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	return n.write(normalStyle.Render(message))
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *ConsoleNotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	return n.write(urgentStyle.Render("⏰ " + message))
}

func (n *ConsoleNotifier) write(line string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.out, line)
	return err
}
