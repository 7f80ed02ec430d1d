package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

var (
	boldStyle      = lipgloss.NewStyle().Bold(true)
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cancelledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderStatus(s domain.Status) string {
	switch s {
	case domain.StatusRunning:
		return runningStyle.Render(string(s))
	case domain.StatusCompleted:
		return completedStyle.Render(string(s))
	case domain.StatusError:
		return errorStyle.Render(string(s))
	case domain.StatusCancelled:
		return cancelledStyle.Render(string(s))
	default:
		return dimStyle.Render(string(s))
	}
}

func newTable(headers ...interface{}) table.Table {
	tbl := table.New(headers...)
	tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
		return boldStyle.Render(fmt.Sprintf(format, vals...))
	})
	tbl.WithPadding(2)
	tbl.WithWidthFunc(lipgloss.Width)
	return tbl
}

func renderEvent(ev domain.Event) string {
	if ev.Type == domain.EventTypeStatus {
		return dimStyle.Render("status: ") + renderStatus(ev.Status)
	}
	if ev.Message == nil {
		return ""
	}

	switch ev.Message.Type {
	case domain.MessageTypeAssistant, domain.MessageTypeSystem, domain.MessageTypeUser:
		var payload domain.TextPayload
		if err := json.Unmarshal(ev.Message.Payload, &payload); err == nil {
			return payload.Text
		}
	case domain.MessageTypeToolUse:
		var payload domain.ToolUsePayload
		if err := json.Unmarshal(ev.Message.Payload, &payload); err == nil {
			return dimStyle.Render(fmt.Sprintf("[tool: %s]", payload.ToolName))
		}
	}
	return dimStyle.Render(fmt.Sprintf("[%s] %s", ev.Message.Type, string(ev.Message.Payload)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
