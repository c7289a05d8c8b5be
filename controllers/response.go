package controllers

import (
	"fiber-mes/apperrors"
	"fiber-mes/types"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// RespondError maps a service error to its stable HTTP response. Conflict
// bodies keep the details payload so over-consumption rejections carry the
// data needed to render a confirmation prompt.
func RespondError(ctx *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	body := fiber.Map{
		"success": false,
		"kind":    apperrors.KindOf(err),
		"error":   err.Error(),
	}
	if appErr, ok := err.(*apperrors.Error); ok && appErr.Details != nil {
		body["details"] = appErr.Details
	}
	return ctx.Status(status).JSON(body)
}

func parseIDParam(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	raw := ctx.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Validation("invalid " + name + " parameter")
	}
	return types.SnowflakeID(id), nil
}

func orgFromCtx(ctx *fiber.Ctx) (types.SnowflakeID, int, error) {
	orgID, ok := ctx.Locals("orgID").(types.SnowflakeID)
	if !ok {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "missing org context")
	}
	userID, ok := ctx.Locals("userID").(int)
	if !ok {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "missing user context")
	}
	return orgID, userID, nil
}
