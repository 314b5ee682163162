package infrastructure

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Kanban/internal/entity"
	"Kanban/internal/usecase"
)

const internalKeyHeader = "X-Internal-Key"

// IngressHandler lets the CRUD service hand committed changes to the
// realtime layer over HTTP.
type IngressHandler struct {
	APIKey   string
	Notifier *usecase.NotifierUseCase
	Logger   *zap.Logger
}

type boardEventRequest struct {
	Type    entity.EventType `json:"type"`
	Data    json.RawMessage  `json:"data"`
	ActorID int64            `json:"actor_id"`
}

type userEventRequest struct {
	Type    entity.EventType `json:"type"`
	Data    json.RawMessage  `json:"data"`
	BoardID int64            `json:"board_id"`
}

type taskAssignedRequest struct {
	TaskID       int64 `json:"task_id"`
	AssigneeID   int64 `json:"assignee_id"`
	AssignedByID int64 `json:"assigned_by_id"`
	BoardID      int64 `json:"board_id"`
}

type mentionRequest struct {
	TaskID          int64 `json:"task_id"`
	CommentID       int64 `json:"comment_id"`
	MentionedUserID int64 `json:"mentioned_user_id"`
	MentionedByID   int64 `json:"mentioned_by_id"`
	BoardID         int64 `json:"board_id"`
}

func (h *IngressHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authenticate)

	r.Post("/boards/{board_id}/events", h.publishBoardEvent)
	r.Post("/users/{user_id}/events", h.publishUserEvent)
	r.Post("/notifications/task-assigned", h.taskAssigned)
	r.Post("/notifications/task-mentioned", h.taskMentioned)
	r.Post("/notifications/comment-mentioned", h.commentMentioned)

	return r
}

func (h *IngressHandler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(internalKeyHeader)
		if h.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.APIKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid internal key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *IngressHandler) publishBoardEvent(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r, "board_id")
	if !ok {
		return
	}

	var req boardEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.Notifier.PublishBoardEvent(req.Type, boardID, req.ActorID, payload(req.Data))
	h.respond(w, report, err)
}

func (h *IngressHandler) publishUserEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	var req userEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.Notifier.PublishUserEvent(req.Type, userID, req.BoardID, payload(req.Data))
	h.respond(w, report, err)
}

func (h *IngressHandler) taskAssigned(w http.ResponseWriter, r *http.Request) {
	var req taskAssignedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TaskID <= 0 || req.AssigneeID <= 0 {
		writeError(w, http.StatusBadRequest, "task_id and assignee_id are required")
		return
	}

	report, err := h.Notifier.NotifyTaskAssignment(req.TaskID, req.AssigneeID, req.AssignedByID, req.BoardID)
	h.respond(w, report, err)
}

func (h *IngressHandler) taskMentioned(w http.ResponseWriter, r *http.Request) {
	var req mentionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TaskID <= 0 || req.MentionedUserID <= 0 {
		writeError(w, http.StatusBadRequest, "task_id and mentioned_user_id are required")
		return
	}

	report, err := h.Notifier.NotifyTaskMention(req.TaskID, req.MentionedUserID, req.MentionedByID, req.BoardID)
	h.respond(w, report, err)
}

func (h *IngressHandler) commentMentioned(w http.ResponseWriter, r *http.Request) {
	var req mentionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CommentID <= 0 || req.MentionedUserID <= 0 {
		writeError(w, http.StatusBadRequest, "comment_id and mentioned_user_id are required")
		return
	}

	report, err := h.Notifier.NotifyCommentMention(req.CommentID, req.MentionedUserID, req.MentionedByID, req.BoardID)
	h.respond(w, report, err)
}

func (h *IngressHandler) respond(w http.ResponseWriter, report entity.DeliveryReport, err error) {
	if errors.Is(err, usecase.ErrEventScope) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Logger.Error("publish event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "publish failed")
		return
	}
	writeJSON(w, http.StatusAccepted, report.Response())
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// payload turns a missing data field into nil so NewEvent fills in {}.
func payload(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
