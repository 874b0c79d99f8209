package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syno/internal/service"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    service.ID
		wantErr string
	}{
		{name: "number", in: `42`, want: "42"},
		{name: "string", in: `"a1b2"`, want: "a1b2"},
		{name: "numeric string", in: `"7"`, want: "7"},
		{name: "null", in: `null`, want: ""},
		{name: "object", in: `{}`, wantErr: "invalid id: {}"},
		{name: "bool", in: `true`, wantErr: "invalid id: true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := service.ID("stale")
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_MarshalJSON(t *testing.T) {
	tests := []struct {
		id   service.ID
		want string
	}{
		{"42", `42`},
		{"abc", `"abc"`},
		{"4a", `"4a"`},
		{"", `""`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got), "id %q", tt.id)
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     time.Time
		wantZero bool
		wantErr  string
	}{
		{name: "rfc3339", in: `"2025-01-02T03:04:05Z"`, want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "rfc3339 offset", in: `"2025-01-02T05:04:05+02:00"`, want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "isoformat without zone", in: `"2025-01-02T03:04:05.123456"`, want: time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)},
		{name: "sqlite", in: `"2025-01-02 03:04:05"`, want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "sqlite fraction", in: `"2025-01-02 03:04:05.5"`, want: time.Date(2025, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{name: "null", in: `null`, wantZero: true},
		{name: "empty", in: `""`, wantZero: true},
		{name: "unknown layout", in: `"02/01/2025"`, wantErr: "invalid timestamp: 02/01/2025"},
		{name: "number", in: `1735787045`, wantErr: "invalid timestamp: 1735787045"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts service.Timestamp
			err := json.Unmarshal([]byte(tt.in), &ts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantZero {
				assert.True(t, ts.IsZero())
				return
			}
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(service.Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(got))

	got, err = json.Marshal(service.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-02T03:04:05Z"`, string(got))
}

func TestRole_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want service.Role
	}{
		{`"admin"`, service.RoleOwner},
		{`"Admin"`, service.RoleOwner},
		{`"Owner"`, service.RoleOwner},
		{`" owner "`, service.RoleOwner},
		{`"member"`, service.RoleMember},
		{`"viewer"`, service.RoleMember},
		{`""`, service.RoleMember},
	}
	for _, tt := range tests {
		var r service.Role
		require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
		assert.Equal(t, tt.want, r, "role %s", tt.in)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    service.Priority
		wantErr bool
	}{
		{"high", service.PriorityHigh, false},
		{" LOW ", service.PriorityLow, false},
		{"Normal", service.PriorityNormal, false},
		{"", service.PriorityNormal, false},
		{"urgent", "", true},
	}
	for _, tt := range tests {
		got, err := service.ParsePriority(tt.in)
		if tt.wantErr {
			assert.EqualError(t, err, "invalid priority: "+tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPriority_Canonical(t *testing.T) {
	assert.Equal(t, service.PriorityHigh, service.Priority("high").Canonical())
	assert.Equal(t, service.PriorityLow, service.Priority("LOW").Canonical())
	assert.Equal(t, service.Priority(""), service.Priority("").Canonical())
	assert.Equal(t, service.Priority("urgent"), service.Priority("urgent").Canonical())
}

func TestDate_JSON(t *testing.T) {
	var d service.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-09"`), &d))
	assert.Equal(t, "2025-03-09", d.String())

	got, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(got))

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())

	assert.EqualError(t, json.Unmarshal([]byte(`"2025-13-01"`), &d), `invalid date "2025-13-01", use YYYY-MM-DD`)
	assert.ErrorContains(t, json.Unmarshal([]byte(`20250309`), &d), "invalid date: 20250309")

	_, err = service.ParseDate("03/09/2025")
	assert.Error(t, err)
}

func TestTask_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want service.Task
	}{
		{
			name: "is_done",
			in:   `{"id": 3, "title": "Read", "priority": "high", "is_done": true}`,
			want: service.Task{ID: "3", Title: "Read", Priority: service.PriorityHigh, Completed: true},
		},
		{
			name: "completed wins over is_done",
			in:   `{"id": 3, "title": "Read", "completed": false, "is_done": true}`,
			want: service.Task{ID: "3", Title: "Read", Priority: service.PriorityNormal},
		},
		{
			name: "unknown priority",
			in:   `{"id": "t-1", "title": "Read", "priority": "urgent"}`,
			want: service.Task{ID: "t-1", Title: "Read", Priority: service.PriorityNormal},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task service.Task
			require.NoError(t, json.Unmarshal([]byte(tt.in), &task))
			assert.Equal(t, tt.want, task)
		})
	}

	var task service.Task
	assert.Error(t, json.Unmarshal([]byte(`{"id": {}}`), &task))
}

func TestFileAsset_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want service.FileAsset
	}{
		{
			name: "current names",
			in:   `{"id": 1, "original_name": "notes.pdf", "download_url": "/f/1", "uploaded_at": "2025-01-02 03:04:05"}`,
			want: service.FileAsset{ID: "1", OriginalName: "notes.pdf", DownloadURL: "/f/1",
				UploadedAt: service.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}},
		},
		{
			name: "older names",
			in:   `{"id": 2, "name": "a.txt", "url": "/f/2", "created_at": "2025-01-02T03:04:05Z"}`,
			want: service.FileAsset{ID: "2", OriginalName: "a.txt", DownloadURL: "/f/2",
				UploadedAt: service.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}},
		},
		{
			name: "current names take precedence",
			in:   `{"id": 3, "original_name": "b.txt", "name": "old.txt", "download_url": "/new", "url": "/old"}`,
			want: service.FileAsset{ID: "3", OriginalName: "b.txt", DownloadURL: "/new"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f service.FileAsset
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want.ID, f.ID)
			assert.Equal(t, tt.want.OriginalName, f.OriginalName)
			assert.Equal(t, tt.want.DownloadURL, f.DownloadURL)
			assert.True(t, tt.want.UploadedAt.Equal(f.UploadedAt.Time), "got %s", f.UploadedAt.Time)
		})
	}

	var f service.FileAsset
	assert.ErrorContains(t, json.Unmarshal([]byte(`{"id": 1, "uploaded_at": "soon"}`), &f), "invalid timestamp")
}

func TestMessage_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want service.ID
	}{
		{name: "author", in: `{"id": 1, "content": "hi", "author": "ana"}`, want: "ana"},
		{name: "author_id", in: `{"id": 1, "content": "hi", "author_id": 7}`, want: "7"},
		{name: "user_id", in: `{"id": 1, "content": "hi", "user_id": "u9"}`, want: "u9"},
		{name: "none", in: `{"id": 1, "content": "hi"}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m service.Message
			require.NoError(t, json.Unmarshal([]byte(tt.in), &m))
			assert.Equal(t, service.ID("1"), m.ID)
			assert.Equal(t, "hi", m.Content)
			assert.Equal(t, tt.want, m.AuthorRef)
		})
	}
}

func TestTaskPatch_MarshalJSON(t *testing.T) {
	done := true
	low := service.Priority("low")
	got, err := json.Marshal(service.TaskPatch{Completed: &done, Priority: &low})
	require.NoError(t, err)
	assert.JSONEq(t, `{"completed": true, "is_done": true, "priority": "Low"}`, string(got))

	title := "Renamed"
	got, err = json.Marshal(service.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Renamed"}`, string(got))
}

func TestTaskInput_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(service.TaskInput{Title: "Read", Priority: "high"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Read", "priority": "High"}`, string(got))
}
