package output_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"syno/internal/logging"
	"syno/internal/output"
	"syno/internal/service"
	"syno/internal/testutil"
	"syno/internal/workspace"
)

func TestFormatGroup(t *testing.T) {
	var buf bytes.Buffer
	output.FormatGroup(&buf, service.Group{ID: "7", Name: "Algorithms", Role: service.RoleOwner})
	output.FormatGroup(&buf, service.Group{ID: "12", Name: "Physics", Role: service.RoleMember})

	expected := "   7  Algorithms [owner]\n  12  Physics\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatMember(t *testing.T) {
	var buf bytes.Buffer
	output.FormatMember(&buf, service.Member{ID: "1", Name: "Ada", Email: "ada@example.com", Role: service.RoleOwner})
	output.FormatMember(&buf, service.Member{ID: "2", Name: "Alex", Role: service.RoleMember})

	expected := "   1  Ada <ada@example.com> [owner]\n   2  Alex\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatTask(t *testing.T) {
	due, err := service.ParseDate("2025-03-01")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		task     service.Task
		expected string
	}{
		{
			name:     "pending normal",
			task:     service.Task{ID: "3", Title: "Problem set", Priority: service.PriorityNormal},
			expected: "   3  [ ] Problem set\n",
		},
		{
			name:     "done high with due date",
			task:     service.Task{ID: "4", Title: "Report", Priority: service.PriorityHigh, Completed: true, DueDate: &due},
			expected: "   4  [x] Report  !high  due 2025-03-01\n",
		},
		{
			name:     "untitled",
			task:     service.Task{ID: "5", Title: "  ", Priority: service.PriorityLow},
			expected: "   5  [ ] (untitled)  !low\n",
		},
		{
			name:     "multiline title",
			task:     service.Task{ID: "6", Title: "line1\nline2", Priority: service.PriorityNormal},
			expected: "   6  [ ] line1 line2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatTask(&buf, tt.task)
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, service.Task{ID: "3", Title: "Problem set", Description: "Exercises 1-4", Priority: service.PriorityNormal})

	expected := "   3  [ ] Problem set\n          Exercises 1-4\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatFileAndMessage(t *testing.T) {
	ts := service.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	shown := ts.Local().Format("2006-01-02 15:04")

	var buf bytes.Buffer
	output.FormatFile(&buf, service.FileAsset{ID: "9", OriginalName: "notes.pdf", UploadedAt: ts})
	output.FormatMessage(&buf, service.Message{ID: "10", Content: "hello", CreatedAt: ts})
	output.FormatMessage(&buf, service.Message{ID: "11", Content: "no time"})

	expected := "   9  notes.pdf  " + shown + "\n" +
		shown + "  hello\n" +
		"----------------  no time\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

// openSnapshot loads group g1 from a fake service: three members, two tasks
// with one done and high priority.
func openSnapshot(t *testing.T, prepare func(*testutil.FakeService, service.ID)) workspace.Snapshot {
	t.Helper()
	svc := testutil.NewFakeService()
	g := svc.SeedGroup("g1")
	for _, name := range []string{"Ana", "Ben", "Cy"} {
		svc.SeedMember(g.ID, name, "", service.RoleMember)
	}
	svc.SeedTask(g.ID, "a", true, service.PriorityHigh)
	svc.SeedTask(g.ID, "b", false, service.PriorityNormal)
	if prepare != nil {
		prepare(svc, g.ID)
	}

	ws := workspace.New(svc, logging.Discard())
	defer ws.Close()
	snap, err := ws.Open(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return snap
}

func TestFormatOverview(t *testing.T) {
	snap := openSnapshot(t, nil)

	var buf bytes.Buffer
	output.FormatOverview(&buf, snap, output.InviteLink("http://localhost:5000/", snap.Group.InviteCode))

	expected := "------------\n" +
		"g1 [owner]\n" +
		"------------\n" +
		"Members:   3\n" +
		"Tasks:     2 (1 done, 1 pending, 1 high)\n" +
		"Progress:  50%\n" +
		"Files:     0\n" +
		"Messages:  0\n" +
		"Code:      CODE0001\n" +
		"Invite:    http://localhost:5000/join/CODE0001\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatOverview_TasksNotLoaded(t *testing.T) {
	snap := openSnapshot(t, func(svc *testutil.FakeService, groupID service.ID) {
		svc.SetGroupCounts(groupID, 3, 5, 0)
		svc.ListTasksErr = errors.New("connection reset")
	})

	var buf bytes.Buffer
	output.FormatOverview(&buf, snap, "")

	if !strings.Contains(buf.String(), "Tasks:     5 (not loaded)\n") {
		t.Errorf("expected record count marked not loaded, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "done") {
		t.Errorf("expected no done/pending split, got %q", buf.String())
	}
}

func TestInviteLink(t *testing.T) {
	if got := output.InviteLink("http://h", ""); got != "" {
		t.Errorf("expected empty link, got %q", got)
	}
	if got := output.InviteLink("https://study.example", "X Y"); got != "https://study.example/join/X%20Y" {
		t.Errorf("unexpected link %q", got)
	}
}
