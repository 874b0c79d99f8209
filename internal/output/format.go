// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"syno/internal/service"
	"syno/internal/stats"
	"syno/internal/workspace"
)

const (
	// ListSeparator is the separator line for sections.
	ListSeparator = "------------"

	// timeLayout is how timestamps are shown.
	timeLayout = "2006-01-02 15:04"
)

// FormatSectionHeader formats a section header.
func FormatSectionHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatGroup formats a group line for the groups command.
// Format: "{ID:>4}  {NAME}[ [owner]]\n"
func FormatGroup(w io.Writer, g service.Group) {
	name := normalizeTitle(g.Name)
	if isOwner(g) {
		name += " [owner]"
	}
	fmt.Fprintf(w, "%4s  %s\n", g.ID, name)
}

// FormatMember formats a roster line.
// Format: "{ID:>4}  {NAME}[ <EMAIL>][ [owner]]\n"
func FormatMember(w io.Writer, m service.Member) {
	line := normalizeTitle(m.Name)
	if m.Email != "" {
		line += " <" + m.Email + ">"
	}
	if m.Role == service.RoleOwner {
		line += " [owner]"
	}
	fmt.Fprintf(w, "%4s  %s\n", m.ID, line)
}

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TITLE}[  !high][  due {DATE}]\n"
func FormatTask(w io.Writer, t service.Task) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	line := normalizeTitle(t.Title)
	if t.Priority != service.PriorityNormal && t.Priority != "" {
		line += "  !" + strings.ToLower(string(t.Priority))
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		line += "  due " + t.DueDate.String()
	}
	fmt.Fprintf(w, "%4s  %s %s\n", t.ID, box, line)
}

// FormatTaskDetail formats a task with its description on the next line.
func FormatTaskDetail(w io.Writer, t service.Task) {
	FormatTask(w, t)
	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", normalizeTitle(desc))
	}
}

// FormatFile formats a file line.
// Format: "{ID:>4}  {NAME}  {UPLOADED}\n"
func FormatFile(w io.Writer, f service.FileAsset) {
	fmt.Fprintf(w, "%4s  %s  %s\n", f.ID, normalizeTitle(f.OriginalName), formatTime(f.UploadedAt))
}

// FormatMessage formats a chat line.
// Format: "{TIME}  {CONTENT}\n"
func FormatMessage(w io.Writer, m service.Message) {
	fmt.Fprintf(w, "%s  %s\n", formatTime(m.CreatedAt), normalizeTitle(m.Content))
}

// FormatOverview formats the group overview with its derived figures.
// inviteLink is omitted when empty.
func FormatOverview(w io.Writer, snap workspace.Snapshot, inviteLink string) {
	st := stats.For(snap)
	title := snap.Group.Name
	if isOwner(snap.Group) {
		title += " [owner]"
	}
	FormatSectionHeader(w, title)
	fmt.Fprintf(w, "Members:   %d\n", st.Members)
	if snap.Loaded(workspace.KindTasks) {
		fmt.Fprintf(w, "Tasks:     %d (%d done, %d pending, %d high)\n",
			st.Tasks.Total, st.Tasks.Completed, st.Tasks.Pending, st.Tasks.HighPriority)
	} else {
		fmt.Fprintf(w, "Tasks:     %d (not loaded)\n", stats.TaskCount(snap))
	}
	fmt.Fprintf(w, "Progress:  %d%%\n", st.Tasks.PercentComplete)
	fmt.Fprintf(w, "Files:     %d\n", st.Files)
	fmt.Fprintf(w, "Messages:  %d\n", len(snap.Messages))
	if snap.Group.InviteCode != "" {
		fmt.Fprintf(w, "Code:      %s\n", snap.Group.InviteCode)
	}
	if inviteLink != "" {
		fmt.Fprintf(w, "Invite:    %s\n", inviteLink)
	}
}

// InviteLink returns the join link for code on host.
func InviteLink(host, code string) string {
	if code == "" {
		return ""
	}
	return strings.TrimRight(host, "/") + "/join/" + url.PathEscape(code)
}

func isOwner(g service.Group) bool {
	return g.IsOwner || g.Role == service.RoleOwner
}

func formatTime(t service.Timestamp) string {
	if t.IsZero() {
		return "----------------"
	}
	return t.Local().Format(timeLayout)
}

// normalizeTitle normalizes text for single-line display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
