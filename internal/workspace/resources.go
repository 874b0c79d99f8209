package workspace

import (
	"context"

	"syno/internal/service"
)

// MemberResource adds and removes memberships. Members cannot be edited.
var MemberResource = Resource[service.Member, service.MemberInput, NoPatch]{
	Name:       "member",
	Collection: Members,
	Create: func(ctx context.Context, svc service.Service, groupID service.ID, in service.MemberInput) (service.Member, error) {
		return svc.AddMember(ctx, groupID, in)
	},
	Delete: func(ctx context.Context, svc service.Service, groupID, id service.ID) error {
		return svc.RemoveMember(ctx, groupID, id)
	},
	Apply: func(m service.Member, _ NoPatch) service.Member { return m },
}

// TaskResource supports the full create, update and remove cycle.
var TaskResource = Resource[service.Task, service.TaskInput, service.TaskPatch]{
	Name:       "task",
	Collection: Tasks,
	Create: func(ctx context.Context, svc service.Service, groupID service.ID, in service.TaskInput) (service.Task, error) {
		return svc.CreateTask(ctx, groupID, in)
	},
	Update: func(ctx context.Context, svc service.Service, groupID, id service.ID, patch service.TaskPatch) (service.Task, error) {
		return svc.UpdateTask(ctx, groupID, id, patch)
	},
	Delete: func(ctx context.Context, svc service.Service, groupID, id service.ID) error {
		return svc.DeleteTask(ctx, groupID, id)
	},
	Apply: func(t service.Task, patch service.TaskPatch) service.Task { return patch.Apply(t) },
}

// FileResource uploads and removes files.
var FileResource = Resource[service.FileAsset, service.Upload, NoPatch]{
	Name:       "file",
	Collection: Files,
	Create: func(ctx context.Context, svc service.Service, groupID service.ID, up service.Upload) (service.FileAsset, error) {
		return svc.UploadFile(ctx, groupID, up)
	},
	Delete: func(ctx context.Context, svc service.Service, groupID, id service.ID) error {
		return svc.DeleteFile(ctx, groupID, id)
	},
	Apply: func(f service.FileAsset, _ NoPatch) service.FileAsset { return f },
}

// MessageResource posts chat messages. The API has no edit or delete.
var MessageResource = Resource[service.Message, service.MessageInput, NoPatch]{
	Name:       "message",
	Collection: Messages,
	Create: func(ctx context.Context, svc service.Service, groupID service.ID, in service.MessageInput) (service.Message, error) {
		return svc.PostMessage(ctx, groupID, in)
	},
	Apply: func(m service.Message, _ NoPatch) service.Message { return m },
}
