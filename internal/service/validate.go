package service

import (
	"strings"
)

// Validate checks the login inputs.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Password) == "" {
		return &ValidationError{Message: "email and password are required"}
	}
	return nil
}

// Validate checks the registration inputs.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if strings.TrimSpace(p.Password) == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// Validate checks the member inputs.
func (in MemberInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "member name is required"}
	}
	return nil
}

// Validate checks the task inputs.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "task title is required"}
	}
	if in.Priority != "" {
		if _, err := ParsePriority(string(in.Priority)); err != nil {
			return &ValidationError{Field: "priority", Message: err.Error()}
		}
	}
	return nil
}

// Validate checks the patch fields that are set.
func (p TaskPatch) Validate() error {
	if p.IsEmpty() {
		return &ValidationError{Message: "nothing to update"}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Message: "task title is required"}
	}
	if p.Priority != nil {
		if _, err := ParsePriority(string(*p.Priority)); err != nil || *p.Priority == "" {
			return &ValidationError{Field: "priority", Message: "invalid priority: " + string(*p.Priority)}
		}
	}
	return nil
}

// Validate checks the message inputs.
func (in MessageInput) Validate() error {
	if strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Field: "content", Message: "message content is required"}
	}
	return nil
}

// Validate checks the upload inputs.
func (up Upload) Validate() error {
	if up.Content == nil {
		return &ValidationError{Field: "file", Message: "please choose a file"}
	}
	if strings.TrimSpace(up.Name) == "" {
		return &ValidationError{Field: "file", Message: "file name is required"}
	}
	return nil
}

// ValidateGroupName checks a new group name.
func ValidateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "group name is required"}
	}
	return nil
}

// NormalizeInviteCode trims and upper-cases an invite code.
func NormalizeInviteCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", &ValidationError{Field: "code", Message: "invite code is required"}
	}
	return code, nil
}
