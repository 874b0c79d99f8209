package workspace

import (
	"fmt"
	"strings"
	"sync"

	"syno/internal/service"
)

// Tab is a view of the open group.
type Tab int

const (
	TabOverview Tab = iota
	TabMembers
	TabFiles
	TabChat
	TabTasks
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabOverview, TabMembers, TabFiles, TabChat, TabTasks}

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "overview"
	case TabMembers:
		return "members"
	case TabFiles:
		return "files"
	case TabChat:
		return "chat"
	case TabTasks:
		return "tasks"
	}
	return fmt.Sprintf("Tab(%d)", int(t))
}

// Kind returns the collection shown by t. The overview shows none.
func (t Tab) Kind() (Kind, bool) {
	switch t {
	case TabMembers:
		return KindMembers, true
	case TabFiles:
		return KindFiles, true
	case TabChat:
		return KindMessages, true
	case TabTasks:
		return KindTasks, true
	}
	return 0, false
}

func (t Tab) valid() bool { return t >= TabOverview && t <= TabTasks }

// ParseTab parses a tab name case-insensitively.
func ParseTab(name string) (Tab, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Tabs {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, &service.ValidationError{Field: "tab", Message: fmt.Sprintf("unknown tab %q", name)}
}

// Router tracks the active tab. It starts on the overview and moves only
// when told to. Selecting a tab never touches the store.
type Router struct {
	mu      sync.Mutex
	current Tab
}

// NewRouter returns a router on the overview tab.
func NewRouter() *Router { return &Router{} }

// Select makes t the active tab.
func (r *Router) Select(t Tab) error {
	if !t.valid() {
		return fmt.Errorf("unknown tab %v", t)
	}
	r.mu.Lock()
	r.current = t
	r.mu.Unlock()
	return nil
}

// SelectName selects a tab by name.
func (r *Router) SelectName(name string) error {
	t, err := ParseTab(name)
	if err != nil {
		return err
	}
	return r.Select(t)
}

// Current returns the active tab.
func (r *Router) Current() Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ActiveKind returns the collection of the active tab.
func (r *Router) ActiveKind() (Kind, bool) {
	return r.Current().Kind()
}
