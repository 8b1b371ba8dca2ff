package handlers

import (
	"net/http"

	services "github.com/splitbook/splitbook-services/api/services"
)

// @Summary Create a group
// @Description Create a group owned by the token owner.
// @Tags groups
// @Accept json
// @Produce json
// @Param group body models.CreateGroupRequest true "Group"
// @Success 201 {object} models.Group
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /groups [post]
func CreateGroup(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateGroupService(svc, w, r)
	}
}

// @Summary List groups
// @Description List the token owner's groups with the number and total of their expenses.
// @Tags groups
// @Produce json
// @Success 200 {object} models.GroupsResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /groups [get]
func GetGroups(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetGroupsService(svc, w, r)
	}
}

// @Summary Delete a group
// @Description Delete one of the token owner's groups together with its expenses.
// @Tags groups
// @Produce json
// @Param group-id path int true "Group ID" example(1)
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /groups/{group-id} [delete]
func DeleteGroup(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteGroupService(svc, w, r)
	}
}
