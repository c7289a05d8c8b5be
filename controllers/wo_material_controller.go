package controllers

import (
	"errors"

	"fiber-mes/apperrors"
	"fiber-mes/pkg/logger"
	"fiber-mes/repositories"
	"fiber-mes/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WOMaterialController struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewWOMaterialController(db *gorm.DB, log *logger.Logger) *WOMaterialController {
	return &WOMaterialController{DB: db, Log: log}
}

type generateSnapshotInput struct {
	Mode string `json:"mode" validate:"omitempty,oneof=create refresh"`
}

// GenerateSnapshot freezes the work order's BOM into scaled material lines.
func (c *WOMaterialController) GenerateSnapshot(ctx *fiber.Ctx) error {
	orgID, userID, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	workOrderID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	var input generateSnapshotInput
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&input); err != nil {
			return RespondError(ctx, apperrors.Validation(err.Error()))
		}
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}

	svc := services.NewSnapshotService(c.DB, c.Log)
	result, err := svc.Generate(orgID, workOrderID, input.Mode, userID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": result})
}

func (c *WOMaterialController) ListMaterials(ctx *fiber.Ctx) error {
	orgID, _, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	workOrderID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	woRepo := repositories.NewWorkOrderRepository(c.DB)
	if _, err := woRepo.GetForOrg(orgID, workOrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RespondError(ctx, apperrors.NotFound("work order not found"))
		}
		return RespondError(ctx, apperrors.Internal(err))
	}

	matRepo := repositories.NewMaterialRepository(c.DB)
	lines, err := matRepo.ListByWorkOrder(orgID, workOrderID)
	if err != nil {
		return RespondError(ctx, apperrors.Internal(err))
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"materials": lines}})
}
