package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Section groups commands in help output.
type Section int

const (
	SectionAccount Section = iota
	SectionGroups
	SectionMembers
	SectionTasks
	SectionFiles
	SectionChat
	SectionOther
)

var sectionTitles = map[Section]string{
	SectionAccount: "Account",
	SectionGroups:  "Groups",
	SectionMembers: "Members",
	SectionTasks:   "Tasks",
	SectionFiles:   "Files",
	SectionChat:    "Chat",
	SectionOther:   "Other",
}

func (s Section) String() string {
	if title, ok := sectionTitles[s]; ok {
		return title
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

// SectionCommands is one help section and its commands sorted by name.
type SectionCommands struct {
	Section  Section
	Commands []Command
}

// Registry holds registered commands.
type Registry struct {
	mu       sync.RWMutex
	cmds     map[string]Command // name and aliases map to command
	sections map[string]Section // primary name to section
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds:     make(map[string]Command),
		sections: make(map[string]Section),
	}
}

// Register adds a command to the registry under a help section.
// Returns an error if the name or any alias is already registered.
func (r *Registry) Register(section Section, c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	for _, alias := range c.Aliases() {
		if _, exists := r.cmds[alias]; exists {
			return fmt.Errorf("command alias already registered: %s", alias)
		}
	}

	r.cmds[name] = c
	for _, alias := range c.Aliases() {
		r.cmds[alias] = c
	}
	r.sections[name] = section
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all unique commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(string) bool { return true })
}

// Sections returns the non-empty sections in display order.
func (r *Registry) Sections() []SectionCommands {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []SectionCommands
	for s := SectionAccount; s <= SectionOther; s++ {
		cmds := r.sortedLocked(func(name string) bool { return r.sections[name] == s })
		if len(cmds) > 0 {
			out = append(out, SectionCommands{Section: s, Commands: cmds})
		}
	}
	return out
}

func (r *Registry) sortedLocked(keep func(name string) bool) []Command {
	names := make([]string, 0, len(r.sections))
	for name := range r.sections {
		if keep(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.cmds[name]
	}
	return result
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry. Duplicate names panic.
func Register(section Section, c Command) {
	if err := DefaultRegistry.Register(section, c); err != nil {
		panic(err)
	}
}
