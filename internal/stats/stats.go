// Package stats derives counts and completion figures from a workspace
// snapshot. Nothing here is cached; callers recompute on every snapshot.
package stats

import (
	"fmt"
	"strings"

	"syno/internal/service"
	"syno/internal/workspace"
)

// TaskStats summarizes a task list.
type TaskStats struct {
	Total           int
	Completed       int
	Pending         int
	HighPriority    int
	PercentComplete int
}

// Stats is everything the overview shows.
type Stats struct {
	Members int
	Files   int
	Tasks   TaskStats
}

// MemberCount returns the roster size. Until the roster has loaded, the
// group record's count stands in.
func MemberCount(s workspace.Snapshot) int {
	if s.Loaded(workspace.KindMembers) {
		return len(s.Members)
	}
	return s.Group.MembersCount
}

// FileCount returns the number of files.
func FileCount(s workspace.Snapshot) int {
	if s.Loaded(workspace.KindFiles) {
		return len(s.Files)
	}
	return s.Group.FilesCount
}

// TaskCount returns the number of tasks.
func TaskCount(s workspace.Snapshot) int {
	if s.Loaded(workspace.KindTasks) {
		return len(s.Tasks)
	}
	return s.Group.TasksCount
}

// Tasks computes completion figures for tasks.
func Tasks(tasks []service.Task) TaskStats {
	var st TaskStats
	for _, t := range tasks {
		st.Total++
		if t.Completed {
			st.Completed++
		}
		if t.Priority == service.PriorityHigh {
			st.HighPriority++
		}
	}
	st.Pending = st.Total - st.Completed
	st.PercentComplete = Percent(st.Completed, st.Total)
	return st
}

// Percent returns part/total as a whole percentage rounded half up.
// It is 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}

// For computes the overview figures of s.
func For(s workspace.Snapshot) Stats {
	return Stats{
		Members: MemberCount(s),
		Files:   FileCount(s),
		Tasks:   Tasks(s.Tasks),
	}
}

// TaskFilter selects a subset of tasks.
type TaskFilter int

const (
	FilterAll TaskFilter = iota
	FilterPending
	FilterCompleted
	FilterHigh
)

var filterNames = map[TaskFilter]string{
	FilterAll:       "all",
	FilterPending:   "pending",
	FilterCompleted: "completed",
	FilterHigh:      "high",
}

func (f TaskFilter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("TaskFilter(%d)", int(f))
}

// ParseFilter parses a filter name. Empty input means all.
func ParseFilter(s string) (TaskFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for f, name := range filterNames {
		if name == s {
			return f, nil
		}
	}
	return FilterAll, &service.ValidationError{Field: "filter", Message: fmt.Sprintf("unknown filter %q", s)}
}

// Filter returns the tasks matching f, in their original order.
func Filter(tasks []service.Task, f TaskFilter) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f TaskFilter) match(t service.Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterHigh:
		return t.Priority == service.PriorityHigh
	}
	return true
}
