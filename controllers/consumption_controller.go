package controllers

import (
	"fmt"
	"net/http"

	"fiber-mes/apperrors"
	"fiber-mes/pkg/logger"
	"fiber-mes/repositories"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ConsumptionController struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewConsumptionController(db *gorm.DB, log *logger.Logger) *ConsumptionController {
	return &ConsumptionController{DB: db, Log: log}
}

type consumeInput struct {
	InventoryUnitID types.SnowflakeID `json:"inventory_unit_id" validate:"required"`
	Qty             decimal.Decimal   `json:"qty" validate:"required"`
	IsFullUnit      bool              `json:"is_full_unit"`
	AllowOverage    bool              `json:"allow_overage"`
}

func (c *ConsumptionController) Consume(ctx *fiber.Ctx) error {
	orgID, userID, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	woMaterialID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	var input consumeInput
	if err := ctx.BodyParser(&input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}

	svc := services.NewConsumptionService(c.DB, c.Log)
	result, err := svc.Consume(orgID, services.ConsumeRequest{
		WOMaterialID:    woMaterialID,
		InventoryUnitID: input.InventoryUnitID,
		Qty:             input.Qty,
		IsFullUnit:      input.IsFullUnit,
		AllowOverage:    input.AllowOverage,
	}, userID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": result})
}

type reverseInput struct {
	Reason string `json:"reason" validate:"required"`
}

func (c *ConsumptionController) Reverse(ctx *fiber.Ctx) error {
	orgID, userID, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	consumptionID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	var input reverseInput
	if err := ctx.BodyParser(&input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return RespondError(ctx, apperrors.Validation(err.Error()))
	}

	svc := services.NewConsumptionService(c.DB, c.Log)
	result, err := svc.Reverse(orgID, consumptionID, input.Reason, userID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": result})
}

func (c *ConsumptionController) historyFilter(ctx *fiber.Ctx) repositories.HistoryFilter {
	filter := repositories.HistoryFilter{
		Status:  ctx.Query("status", "all"),
		SortBy:  ctx.Query("sort_by", "consumed_at"),
		SortDir: ctx.Query("sort_dir", "desc"),
		Page:    ctx.QueryInt("page", 1),
		Limit:   ctx.QueryInt("limit", 20),
	}
	if raw := ctx.QueryInt("wo_material_id"); raw > 0 {
		filter.WOMaterialID = types.SnowflakeID(raw)
	}
	return filter
}

func (c *ConsumptionController) History(ctx *fiber.Ctx) error {
	orgID, _, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	workOrderID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	svc := services.NewConsumptionService(c.DB, c.Log)
	page, err := svc.History(orgID, workOrderID, c.historyFilter(ctx))
	if err != nil {
		return RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": page})
}

// ExportExcel streams the consumption history of a work order as an xlsx.
func (c *ConsumptionController) ExportExcel(ctx *fiber.Ctx) error {
	orgID, _, err := orgFromCtx(ctx)
	if err != nil {
		return err
	}
	workOrderID, err := parseIDParam(ctx, "id")
	if err != nil {
		return RespondError(ctx, err)
	}

	filter := c.historyFilter(ctx)
	filter.Page = 1
	filter.Limit = 10000

	svc := services.NewConsumptionService(c.DB, c.Log)
	page, err := svc.History(orgID, workOrderID, filter)
	if err != nil {
		return RespondError(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Material")
	f.SetCellValue(sheet, "B1", "Item Code")
	f.SetCellValue(sheet, "C1", "Pallet")
	f.SetCellValue(sheet, "D1", "Lot No")
	f.SetCellValue(sheet, "E1", "Qty")
	f.SetCellValue(sheet, "F1", "Uom")
	f.SetCellValue(sheet, "G1", "Status")
	f.SetCellValue(sheet, "H1", "Consumed By")
	f.SetCellValue(sheet, "I1", "Consumed At")
	f.SetCellValue(sheet, "J1", "Reversal Reason")

	for i, row := range page.Rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.MaterialName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.ItemCode)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.Pallet)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), row.LotNo)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), row.ConsumedQty.String())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), row.Uom)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), row.Status)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", i+2), row.ConsumedBy)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", i+2), row.ConsumedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("J%d", i+2), row.ReversalReason)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="consumption_history.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
