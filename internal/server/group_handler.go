package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitpot/splitpot/internal/service"
)

// GroupHandler exposes group CRUD endpoints.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// Create handles POST /api/v1/groups.
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), userID(c), req.Name, req.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toGroupResponse(group))
}

// Get handles GET /api/v1/groups/:id.
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.GetGroup(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGroupResponse(group))
}

// List handles GET /api/v1/groups, returning the caller's groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = toGroupResponse(g)
	}
	c.JSON(http.StatusOK, gin.H{"groups": resp})
}

// Update handles PUT /api/v1/groups/:id.
func (h *GroupHandler) Update(c *gin.Context) {
	var req updateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	group, err := h.groups.UpdateGroup(c.Request.Context(), userID(c), c.Param("id"), req.Name, req.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGroupResponse(group))
}

// Delete handles DELETE /api/v1/groups/:id.
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.DeleteGroup(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
