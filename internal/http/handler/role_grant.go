package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

type roleRequest struct {
	// UserID defaults to the caller. Only administrators may name someone else.
	UserID   string              `json:"user_id"`
	Role     model.Role          `json:"role"`
	Metadata model.GrantMetadata `json:"metadata"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RequestRole opens a PENDING role grant.
//
//	@Summary	Request a role
//	@Tags		role-grants
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		roleRequest	true	"Request"
//	@Success	201		{object}	model.RoleGrant
//	@Failure	409		{object}	errorPayload
//	@Router		/role-grants [post]
func RequestRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req roleRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.UserID == "" {
			if a, ok := identity.FromContext(c.UserContext()); ok {
				req.UserID = a.UserID
			}
		}
		role := model.Role(strings.ToUpper(strings.TrimSpace(string(req.Role))))

		g, err := svc.RequestRole(c.UserContext(), req.UserID, role, req.Metadata)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// ListPendingRoleGrants returns pending grants, optionally for one role.
//
//	@Summary	Pending role grants
//	@Tags		role-grants
//	@Produce	json
//	@Security	BearerAuth
//	@Param		role	query		string	false	"Role filter"
//	@Param		limit	query		int		false	"Page size"	default(10)
//	@Param		offset	query		int		false	"Offset"	default(0)
//	@Success	200		{object}	service.RoleGrantListResult
//	@Router		/role-grants/pending [get]
func ListPendingRoleGrants(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := parsePage(c)
		if !ok {
			return nil
		}
		role := model.Role(strings.ToUpper(c.Query("role")))
		res, err := svc.ListPending(c.UserContext(), role, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

//	@Summary	Get role grant
//	@Tags		role-grants
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Grant ID"
//	@Success	200	{object}	model.RoleGrant
//	@Router		/role-grants/{id} [get]
func GetRoleGrant(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		g, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(g)
	}
}

// ListUserRoleGrants returns a user's grant history, newest first.
//
//	@Summary	User role grant history
//	@Tags		role-grants
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	map[string][]model.RoleGrant
//	@Router		/users/{id}/role-grants [get]
func ListUserRoleGrants(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		grants, err := svc.ListByUser(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": grants})
	}
}

// ApproveRoleGrant approves a PENDING grant. FINCA grants are checked
// against the farm's document completeness first.
//
//	@Summary	Approve role grant
//	@Tags		role-grants
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Grant ID"
//	@Success	200	{object}	model.RoleGrant
//	@Failure	412	{object}	errorPayload
//	@Router		/role-grants/{id}/approve [post]
func ApproveRoleGrant(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		g, err := svc.Approve(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(g)
	}
}

//	@Summary	Reject role grant
//	@Tags		role-grants
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Grant ID"
//	@Param		body	body		rejectRequest	false	"Reason"
//	@Success	200		{object}	model.RoleGrant
//	@Router		/role-grants/{id}/reject [post]
func RejectRoleGrant(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req rejectRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		g, err := svc.Reject(c.UserContext(), id, req.Reason)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(g)
	}
}
