package services

import (
	"strings"
	"testing"

	"fiber-mes/apperrors"
	"fiber-mes/models"
	"fiber-mes/repositories"
)

func TestReserveUpdatesCounters(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	res, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("80"), f.env.userID())
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Status != models.ReservationStatusActive {
		t.Fatalf("status = %s, want active", res.Status)
	}

	line := f.env.reloadLine(f.line.ID)
	if !line.ReservedQty.Equal(dec("80")) {
		t.Fatalf("line reserved_qty = %s, want 80", line.ReservedQty)
	}

	u := f.env.reloadUnit(unit.ID)
	if !u.QtyAvailable.Equal(dec("120")) || !u.QtyAllocated.Equal(dec("80")) || !u.QtyOnhand.Equal(dec("200")) {
		t.Fatalf("unit counters available=%s allocated=%s onhand=%s", u.QtyAvailable, u.QtyAllocated, u.QtyOnhand)
	}
}

func TestReserveExceedsOutstanding(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "500", dayOffset(-10), nil, "LOT-A", "PLT-A")

	// required is 131.25; anything above the outstanding part must fail.
	_, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("131.26"), f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindInsufficientQuantity) {
		t.Fatalf("err = %v, want INSUFFICIENT_QUANTITY", err)
	}

	line := f.env.reloadLine(f.line.ID)
	u := f.env.reloadUnit(unit.ID)
	if !line.ReservedQty.IsZero() || !u.QtyAllocated.IsZero() {
		t.Fatalf("failed reserve left residue: reserved=%s allocated=%s", line.ReservedQty, u.QtyAllocated)
	}
}

func TestReserveExactOutstandingSucceeds(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "500", dayOffset(-10), nil, "LOT-A", "PLT-A")

	if _, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("131.25"), f.env.userID()); err != nil {
		t.Fatalf("reserve full outstanding: %v", err)
	}
}

func TestReserveExceedsUnitAvailability(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "30", dayOffset(-10), nil, "LOT-A", "PLT-A")

	_, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("50"), f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindInsufficientQuantity) {
		t.Fatalf("err = %v, want INSUFFICIENT_QUANTITY", err)
	}
}

func TestReserveDuplicatePairConflicts(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	if _, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("40"), f.env.userID()); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	_, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("10"), f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestReserveWrongProduct(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	other := f.env.createProduct("RM-OTHER", "Sugar", "KG")
	unit := f.env.createUnit(other, "200", dayOffset(-10), nil, "LOT-B", "PLT-B")

	_, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("10"), f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestReserveOnTerminalWorkOrder(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusCancelled)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	_, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("10"), f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestReserveCrossTenantIsNotFound(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	_, err := f.env.reservationSvc().Reserve(f.env.org2.ID, f.line.ID, unit.ID, dec("10"), f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestReleaseRestoresCounters(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	res, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("80"), f.env.userID())
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	out, err := f.env.reservationSvc().Release(f.env.org.ID, res.ID, f.env.userID())
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !out.ReleasedQty.Equal(dec("80")) {
		t.Fatalf("released_qty = %s, want 80", out.ReleasedQty)
	}

	line := f.env.reloadLine(f.line.ID)
	u := f.env.reloadUnit(unit.ID)
	if !line.ReservedQty.IsZero() || !u.QtyAllocated.IsZero() || !u.QtyAvailable.Equal(dec("200")) {
		t.Fatalf("release left residue: reserved=%s allocated=%s available=%s", line.ReservedQty, u.QtyAllocated, u.QtyAvailable)
	}

	// Row stays for audit, flipped to released.
	var row models.Reservation
	if err := f.env.db.First(&row, "id = ?", res.ID).Error; err != nil {
		t.Fatalf("reload reservation: %v", err)
	}
	if row.Status != models.ReservationStatusReleased || row.ReleasedAt == nil {
		t.Fatalf("reservation row status=%s released_at=%v", row.Status, row.ReleasedAt)
	}
}

func TestReleaseTwice(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	res, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("80"), f.env.userID())
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := f.env.reservationSvc().Release(f.env.org.ID, res.ID, f.env.userID()); err != nil {
		t.Fatalf("first release: %v", err)
	}

	_, err = f.env.reservationSvc().Release(f.env.org.ID, res.ID, f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindAlreadyReleased) {
		t.Fatalf("err = %v, want ALREADY_RELEASED", err)
	}

	// Idempotent failure: counters untouched by the second call.
	u := f.env.reloadUnit(unit.ID)
	if !u.QtyAvailable.Equal(dec("200")) {
		t.Fatalf("qty_available = %s, want 200", u.QtyAvailable)
	}
}

func TestReleaseOnTerminalWorkOrder(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	unit := f.env.createUnit(f.material, "200", dayOffset(-10), nil, "LOT-A", "PLT-A")

	res, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("80"), f.env.userID())
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	f.env.setWOStatus(f.wo.ID, models.WOStatusCompleted)

	_, err = f.env.reservationSvc().Release(f.env.org.ID, res.ID, f.env.userID())
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestSuggestFIFOOrdersByReceipt(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	newer := f.env.createUnit(f.material, "100", dayOffset(-5), nil, "LOT-NEW", "PLT-1")
	oldest := f.env.createUnit(f.material, "100", dayOffset(-30), nil, "LOT-OLD", "PLT-2")
	f.env.createUnit(f.material, "100", dayOffset(-15), nil, "LOT-MID", "PLT-3")

	res, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, StrategyFIFO, repositories.CandidateFilter{}, 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Top == nil || res.Top.Unit.ID != oldest.ID {
		t.Fatalf("top = %+v, want oldest receipt %s", res.Top, oldest.ID)
	}
	if len(res.Alternatives) != 2 {
		t.Fatalf("alternatives = %d, want 2", len(res.Alternatives))
	}
	if res.Alternatives[1].Unit.ID != newer.ID {
		t.Fatalf("last alternative = %s, want newest receipt", res.Alternatives[1].Unit.ID)
	}
	if !strings.Contains(res.Reason, "oldest receipt") {
		t.Fatalf("reason %q does not explain FIFO pick", res.Reason)
	}
}

func TestSuggestFEFOOrdersByExpiryNullsLast(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	noExpiry := f.env.createUnit(f.material, "100", dayOffset(-60), nil, "LOT-NOEXP", "PLT-1")
	soonest := f.env.createUnit(f.material, "100", dayOffset(-5), expiryIn(7), "LOT-SOON", "PLT-2")
	f.env.createUnit(f.material, "100", dayOffset(-10), expiryIn(30), "LOT-LATER", "PLT-3")

	res, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, StrategyFEFO, repositories.CandidateFilter{}, 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Top == nil || res.Top.Unit.ID != soonest.ID {
		t.Fatalf("top unit = %+v, want soonest expiry", res.Top)
	}
	last := res.Alternatives[len(res.Alternatives)-1]
	if last.Unit.ID != noExpiry.ID {
		t.Fatalf("unit without expiry ranked %s, want last", last.Unit.ID)
	}
	if !strings.Contains(res.Reason, "expires first") {
		t.Fatalf("reason %q does not explain FEFO pick", res.Reason)
	}
}

func TestSuggestFEFOTieBreaksByReceipt(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	exp := expiryIn(14)
	f.env.createUnit(f.material, "100", dayOffset(-5), exp, "LOT-A", "PLT-1")
	older := f.env.createUnit(f.material, "100", dayOffset(-20), exp, "LOT-B", "PLT-2")

	res, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, StrategyFEFO, repositories.CandidateFilter{}, 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Top == nil || res.Top.Unit.ID != older.ID {
		t.Fatalf("top = %+v, want older receipt on equal expiry", res.Top)
	}
}

func TestSuggestSkipsExhaustedUnits(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	f.env.createUnit(f.material, "0", dayOffset(-90), nil, "LOT-EMPTY", "PLT-1")
	stocked := f.env.createUnit(f.material, "100", dayOffset(-10), nil, "LOT-A", "PLT-2")

	res, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, StrategyFIFO, repositories.CandidateFilter{}, 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Top == nil || res.Top.Unit.ID != stocked.ID {
		t.Fatalf("top = %+v, want the stocked unit", res.Top)
	}
	if len(res.Alternatives) != 0 {
		t.Fatalf("alternatives = %d, want 0 (exhausted unit must be skipped)", len(res.Alternatives))
	}
}

func TestSuggestFiltersByLotPrefix(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)
	match := f.env.createUnit(f.material, "100", dayOffset(-10), nil, "LOT-X1", "PLT-1")
	f.env.createUnit(f.material, "100", dayOffset(-20), nil, "LOT-Y1", "PLT-2")

	res, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, StrategyFIFO,
		repositories.CandidateFilter{LotPrefix: "LOT-X"}, 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Top == nil || res.Top.Unit.ID != match.ID {
		t.Fatalf("top = %+v, want lot-filtered unit", res.Top)
	}
	if len(res.Alternatives) != 0 {
		t.Fatalf("alternatives = %d, want 0", len(res.Alternatives))
	}
}

func TestSuggestEmptyResult(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)

	res, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, StrategyFIFO, repositories.CandidateFilter{}, 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Top != nil || len(res.Alternatives) != 0 {
		t.Fatalf("expected empty suggestion, got %+v", res)
	}
	if res.Reason == "" {
		t.Fatal("empty suggestion must still carry a reason")
	}
}

func TestSuggestRejectsUnknownStrategy(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusReleased)

	_, err := f.env.reservationSvc().Suggest(f.env.org.ID, f.line.ID, "LIFO", repositories.CandidateFilter{}, 10)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestReleaseAfterPartialDrawDoesNotMintStock(t *testing.T) {
	f := newStandardFixture(t, models.WOStatusInProgress)
	unit := f.env.createUnit(f.material, "10", dayOffset(-10), nil, "LOT-A", "PLT-A")

	res, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("10"), f.env.userID())
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	mustConsume(t, f, unit.ID, "4")

	if _, err := f.env.reservationSvc().Release(f.env.org.ID, res.ID, f.env.userID()); err != nil {
		t.Fatalf("release: %v", err)
	}

	// 4 of the 10 reserved units were consumed; releasing must only give
	// back the 6 still sitting in the allocated bucket.
	u := f.env.reloadUnit(unit.ID)
	if u.QtyAvailable.GreaterThan(u.QtyOnhand) {
		t.Fatalf("available %s exceeds onhand %s", u.QtyAvailable, u.QtyOnhand)
	}
	if !u.QtyOnhand.Equal(dec("6")) || !u.QtyAvailable.Equal(dec("6")) || !u.QtyAllocated.IsZero() {
		t.Fatalf("unit onhand=%s available=%s allocated=%s, want 6/6/0", u.QtyOnhand, u.QtyAvailable, u.QtyAllocated)
	}

	// Real stock is 6: re-reserving the original 10 must fail, 6 must work.
	if _, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("10"), f.env.userID()); !apperrors.IsKind(err, apperrors.KindInsufficientQuantity) {
		t.Fatalf("err = %v, want INSUFFICIENT_QUANTITY", err)
	}
	if _, err := f.env.reservationSvc().Reserve(f.env.org.ID, f.line.ID, unit.ID, dec("6"), f.env.userID()); err != nil {
		t.Fatalf("reserve remaining stock: %v", err)
	}
}
