package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
	"github.com/agent-poc-v1/server/internal/data"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

const defaultNotesLimit = 5

type SaveNotesInput struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type SaveNotesOutput struct {
	Success      bool                 `json:"success"`
	NoteID       string               `json:"note_id,omitempty"`
	NoteOverview []model.NoteOverview `json:"note_overview"`
	Error        string               `json:"error,omitempty"`
	Message      string               `json:"message,omitempty"`
}

type FetchNotesInput struct {
	UserID string `json:"user_id"`
	Date   string `json:"date,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type FetchNotesOutput struct {
	NoteOverview []model.NoteOverview `json:"note_overview"`
	TotalCount   int                  `json:"total_count"`
	Error        string               `json:"error,omitempty"`
	Message      string               `json:"message,omitempty"`
}

func createSaveNotesTool(store *data.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSaveNotes,
			Desc: "Save MOM (minutes of meeting) or notes given by the user. Confirms once the note is stored.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"user_id": {
					Type:     "string",
					Desc:     "User ID who is saving the note.",
					Required: true,
				},
				"title": {
					Type:     "string",
					Desc:     "Short title for the note.",
					Required: true,
				},
				"content": {
					Type:     "string",
					Desc:     "Body of the note.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SaveNotesInput) (*SaveNotesOutput, error) {
			if in.UserID == "" || in.Title == "" || in.Content == "" {
				return &SaveNotesOutput{
					NoteOverview: []model.NoteOverview{},
					Error:        ErrCodeInvalidArgument,
					Message:      "user_id, title and content are all required",
				}, nil
			}

			now := time.Now().UTC()
			note := model.NoteOverview{
				ID:        uuid.NewString(),
				UserID:    in.UserID,
				Title:     in.Title,
				Content:   in.Content,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.SaveNote(in.UserID, note); err != nil {
				return nil, fmt.Errorf("%w: save note: %v", errx.ErrToolExecution, err)
			}

			return &SaveNotesOutput{
				Success:      true,
				NoteID:       note.ID,
				NoteOverview: []model.NoteOverview{note},
				Message:      fmt.Sprintf("Note %q saved successfully", in.Title),
			}, nil
		},
	)
}

func createFetchNotesTool(store *data.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolFetchNotes,
			Desc: "Retrieve saved notes for a user, newest first. Supports an optional date filter (YYYY-MM-DD) and a limit for the last N notes.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"user_id": {
					Type:     "string",
					Desc:     "User ID to fetch notes for.",
					Required: true,
				},
				"date": {
					Type: "string",
					Desc: "Optional day filter in YYYY-MM-DD format.",
				},
				"limit": {
					Type: "number",
					Desc: "Maximum number of notes to return (default 5).",
				},
			}),
		},
		func(ctx context.Context, in *FetchNotesInput) (*FetchNotesOutput, error) {
			if in.UserID == "" {
				return &FetchNotesOutput{
					NoteOverview: []model.NoteOverview{},
					Error:        ErrCodeInvalidArgument,
					Message:      "user_id is required",
				}, nil
			}
			if in.Limit <= 0 {
				in.Limit = defaultNotesLimit
			}

			notes, err := store.NotesByUserID(in.UserID)
			if err != nil {
				return nil, fmt.Errorf("%w: fetch notes: %v", errx.ErrToolExecution, err)
			}

			if in.Date != "" {
				filtered := notes[:0]
				for _, n := range notes {
					if n.CreatedAt.Format("2006-01-02") == in.Date {
						filtered = append(filtered, n)
					}
				}
				notes = filtered
			}

			// Newest first, then cap to the requested window.
			sort.SliceStable(notes, func(i, j int) bool {
				return notes[i].CreatedAt.After(notes[j].CreatedAt)
			})
			if len(notes) > in.Limit {
				notes = notes[:in.Limit]
			}

			msg := fmt.Sprintf("Retrieved %d notes for user %s", len(notes), in.UserID)
			if len(notes) == 0 {
				msg = "No notes found for this user"
			}
			return &FetchNotesOutput{
				NoteOverview: notes,
				TotalCount:   len(notes),
				Message:      msg,
			}, nil
		},
	)
}
