package controllers

import (
	"time"

	"fiber-mes/apperrors"
	"fiber-mes/pkg/logger"
	"fiber-mes/repositories"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReservationController struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewReservationController(db *gorm.DB, log *logger.Logger) *ReservationController {
	return &ReservationController{DB: db, Log: log}
}

type reserveInput struct {
	InventoryUnitID types.SnowflakeID `json:"inventory_unit_id" validate:"required"`
	Qty             decimal.Decimal   `json:"qty" validate:"required"`
}

func (c *ReservationController) Reserve(ctx *fiber.Ctx) error {
	orgID, userID, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	woMaterialID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	var input reserveInput
	if err := ctx.BodyParser(&input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}

	svc := services.NewReservationService(c.DB, c.Log)
	reservation, err := svc.Reserve(orgID, woMaterialID, input.InventoryUnitID, input.Qty, userID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": reservation})
}

func (c *ReservationController) Release(ctx *fiber.Ctx) error {
	orgID, userID, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	reservationID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	svc := services.NewReservationService(c.DB, c.Log)
	result, err := svc.Release(orgID, reservationID, userID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": result})
}

func (c *ReservationController) Suggest(ctx *fiber.Ctx) error {
	orgID, _, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	woMaterialID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	filter := repositories.CandidateFilter{
		LotNo:     ctx.Query("lot_no"),
		LotPrefix: ctx.Query("lot_prefix"),
		Search:    ctx.Query("search"),
	}
	if raw := ctx.Query("expiry_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return RespondError(ctx, apperrors.Validation("expiry_from must be YYYY-MM-DD"))
		}
		filter.ExpiryFrom = &t
	}
	if raw := ctx.Query("expiry_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return RespondError(ctx, apperrors.Validation("expiry_to must be YYYY-MM-DD"))
		}
		filter.ExpiryTo = &t
	}

	svc := services.NewReservationService(c.DB, c.Log)
	result, err := svc.Suggest(orgID, woMaterialID, ctx.Query("strategy"), filter, ctx.QueryInt("limit"))
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": result})
}
