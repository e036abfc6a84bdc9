package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/usecase"
	"github.com/harmonix-lab/taskbeat/pkg/utils/errutil"
)

func respond(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// statusOf maps engine errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrAssignmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrAlreadyExtended),
		errors.Is(err, types.ErrAssignmentNotPending),
		errors.Is(err, types.ErrSweepInProgress):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidTaskForRole),
		errors.Is(err, types.ErrInvalidCustomDuration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody tolerates an empty body; all fields keep their zero values
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid duration", goerr.V("value", s))
	}
	return d, nil
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
		Username string `json:"username"`
	}
	if err := decodeBody(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	user, err := s.uc.Onboard(r.Context(), types.MemberID(req.MemberID), req.Username)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusCreated, user)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	profile, err := s.uc.GetProfile(r.Context(), memberID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, profile)
}

func (s *Server) handleAddStrike(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	count, err := s.uc.AddStrike(r.Context(), memberID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, map[string]int{"strikes": count})
}

func (s *Server) handleRemoveStrike(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	count, err := s.uc.RemoveStrike(r.Context(), memberID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, map[string]int{"strikes": count})
}

func (s *Server) handlePauseHiatus(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	user, err := s.uc.PauseForHiatus(r.Context(), memberID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, user)
}

func (s *Server) handleResumeHiatus(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	user, err := s.uc.ResumeFromHiatus(r.Context(), memberID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, user)
}

func (s *Server) handleStrikeBoard(w http.ResponseWriter, r *http.Request) {
	users, err := s.uc.StrikeBoard(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, users)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID        string `json:"member_id"`
		Username        string `json:"username"`
		RoleID          string `json:"role_id"`
		RoleName        string `json:"role_name"`
		TaskType        string `json:"task_type"`
		TaskName        string `json:"task_name"`
		Description     string `json:"description"`
		CustomDuration  string `json:"custom_duration"`
		CustomExtension string `json:"custom_extension"`
	}
	if err := decodeBody(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	customDuration, err := parseDuration(req.CustomDuration)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	customExtension, err := parseDuration(req.CustomExtension)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	created, err := s.uc.AssignTask(r.Context(), usecase.AssignTaskInput{
		MemberID:        types.MemberID(req.MemberID),
		Username:        req.Username,
		RoleID:          types.RoleID(req.RoleID),
		RoleName:        req.RoleName,
		TaskType:        types.TaskType(req.TaskType),
		TaskName:        req.TaskName,
		Description:     req.Description,
		CustomDuration:  customDuration,
		CustomExtension: customExtension,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusCreated, created)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

	assignment, err := s.uc.GetAssignment(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, assignment)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

	updated, err := s.uc.CompleteTask(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, updated)
}

func (s *Server) handleExcuse(w http.ResponseWriter, r *http.Request) {
	id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

	updated, err := s.uc.ExcuseTask(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, updated)
}

func (s *Server) handleExtendRequest(w http.ResponseWriter, r *http.Request) {
	id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	assignment, amount, err := s.uc.RequestExtension(r.Context(), id, req.ChannelID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"assignment": assignment,
		"extension":  amount.String(),
	})
}

func (s *Server) handleExtendApprove(w http.ResponseWriter, r *http.Request) {
	id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

	extended, err := s.uc.ApproveExtension(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, extended)
}

func (s *Server) handleExtendDeny(w http.ResponseWriter, r *http.Request) {
	id := types.AssignmentID(chi.URLParam(r, "assignmentID"))

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	if err := s.uc.DenyExtension(r.Context(), id, req.Reason); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, map[string]string{"result": "denied"})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	memberID := types.MemberID(chi.URLParam(r, "memberID"))

	pending, err := s.uc.PendingAssignments(r.Context(), memberID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, pending)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := s.uc.ListOverdue(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, overdue)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid limit"), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var status types.AssignmentStatus
	if raw := q.Get("status"); raw != "" {
		parsed, err := types.ParseAssignmentStatus(raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
		status = parsed
	}

	listed, err := s.uc.ListHistory(r.Context(), interfaces.AssignmentFilter{
		MemberID: types.MemberID(q.Get("member_id")),
		Status:   status,
		RoleName: q.Get("role"),
		Text:     q.Get("q"),
		Limit:    limit,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, listed)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	result, err := s.uc.Sweep(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	respond(w, http.StatusOK, result)
}
