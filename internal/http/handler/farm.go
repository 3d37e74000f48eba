package handler

import (
	"github.com/gofiber/fiber/v2"

	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

type activeRequest struct {
	Active *bool `json:"active"`
}

// CreateFarm registers a farm.
//
//	@Summary	Register farm
//	@Tags		farms
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		service.FarmInput	true	"Farm"
//	@Success	201		{object}	model.Farm
//	@Failure	409		{object}	errorPayload
//	@Router		/farms [post]
func CreateFarm(svc service.FarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.FarmInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		f, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// ListFarms returns farms ordered by legal name.
//
//	@Summary	List farms
//	@Tags		farms
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Page size"	default(10)
//	@Param		offset	query		int	false	"Offset"	default(0)
//	@Success	200		{object}	service.FarmListResult
//	@Router		/farms [get]
func ListFarms(svc service.FarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := parsePage(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

//	@Summary	Get farm
//	@Tags		farms
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Farm ID"
//	@Success	200	{object}	model.Farm
//	@Router		/farms/{id} [get]
func GetFarm(svc service.FarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		f, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// UpdateFarm applies a partial update; absent fields are left unchanged.
//
//	@Summary	Update farm
//	@Tags		farms
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Farm ID"
//	@Param		body	body		model.FarmPatch	true	"Changes"
//	@Success	200		{object}	model.Farm
//	@Router		/farms/{id} [patch]
func UpdateFarm(svc service.FarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var patch model.FarmPatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		f, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

//	@Summary	Activate or deactivate farm
//	@Tags		farms
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Farm ID"
//	@Param		body	body		activeRequest	true	"Flag"
//	@Success	200		{object}	model.Farm
//	@Router		/farms/{id}/active [put]
func SetFarmActive(svc service.FarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req activeRequest
		if err := c.BodyParser(&req); err != nil || req.Active == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "active flag is required")
		}
		f, err := svc.SetActive(c.UserContext(), id, *req.Active)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// FarmCompleteness evaluates the farm's mandatory documents at request time.
//
//	@Summary	Farm document completeness
//	@Tags		farms
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Farm ID"
//	@Success	200	{object}	model.Completeness
//	@Failure	404	{object}	errorPayload
//	@Router		/farms/{id}/completeness [get]
func FarmCompleteness(svc service.CompletenessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		res, err := svc.Evaluate(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
