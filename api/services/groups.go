package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/splitbook/splitbook-services/internal/events"
	"github.com/splitbook/splitbook-services/models"
)

// CreateGroupService creates a group owned by the caller.
func CreateGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {

	log := logger(r.Context())

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		req.Description = &desc
		if desc == "" {
			req.Description = nil
		}
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Group failed validation")
		HandleErrResponse(w, http.StatusBadRequest, errors.New(validationMessage(err)))
		return
	}

	group, err := svc.DB.CreateGroup(r.Context(), &models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   user.ID,
	})
	if err != nil {
		log.Error().Err(err).Msg("Database error creating group")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	svc.publish(r.Context(), events.NewLedgerEvent(events.GroupCreated, group.ID, 0, user.ID))

	log.Info().Int64("group_id", group.ID).Msg("Group created")
	location := fmt.Sprintf("%s/groups/%d", svc.Config.BasePath, group.ID)
	WriteResponse(w, http.StatusCreated, group, location)
}

// GetGroupsService lists the caller's groups with the count and total of
// their expenses.
func GetGroupsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	log := logger(r.Context())

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	groups, err := svc.DB.GetUserGroups(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Database error retrieving groups")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]models.GroupSummary, 0, len(groups))
	for _, group := range groups {
		expenses, err := svc.DB.GetGroupExpenses(r.Context(), group.ID)
		if err != nil {
			log.Error().Err(err).Int64("group_id", group.ID).Msg("Database error retrieving group expenses")
			HandleErrResponse(w, http.StatusInternalServerError, err)
			return
		}
		summaries = append(summaries, models.GroupSummary{
			Group:        group,
			ExpenseCount: len(expenses),
			TotalAmount:  models.SumAmounts(expenses).Rounded(),
		})
	}

	log.Info().Int("group_count", len(summaries)).Msg("Successfully retrieved groups")
	WriteResponse(w, http.StatusOK, models.GroupsResponse{Groups: summaries, Count: len(summaries)})
}

// DeleteGroupService deletes one of the caller's groups and its expenses.
func DeleteGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {

	log := logger(r.Context())

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(r, "group-id")
	if !ok {
		HandleErrResponse(w, http.StatusNotFound, errors.New("group not found"))
		return
	}

	if _, err := svc.Guard.AssertOwnsGroup(r.Context(), user, groupID); err != nil {
		handleGuardError(w, r, err, "group")
		return
	}

	if err := svc.DB.DeleteGroup(r.Context(), groupID, user.ID); err != nil {
		log.Error().Err(err).Int64("group_id", groupID).Msg("Database error deleting group")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	svc.publish(r.Context(), events.NewLedgerEvent(events.GroupDeleted, groupID, 0, user.ID))

	log.Info().Int64("group_id", groupID).Msg("Group deleted")
	WriteResponse(w, http.StatusOK, models.MessageResponse{Message: "Group deleted successfully"})
}

// handleGuardError maps ownership failures to 404 and anything else to 500.
func handleGuardError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	log := logger(r.Context())

	if errors.Is(err, ErrNotFoundOrForbidden) {
		log.Warn().Err(err).Msg("Resource not found or not owned by caller")
		HandleErrResponse(w, http.StatusNotFound, fmt.Errorf("%s not found", resource))
		return
	}
	log.Error().Err(err).Msgf("Database error checking %s ownership", resource)
	HandleErrResponse(w, http.StatusInternalServerError, err)
}
