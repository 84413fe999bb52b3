package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/api/dto"
	"github.com/mapease/checkin-service/internal/checkin"
	"github.com/mapease/checkin-service/internal/ledger"
	apperrors "github.com/mapease/checkin-service/pkg/util/errorutil"
)

// CheckinHandler is the scanner front-end.
type CheckinHandler struct {
	validator *checkin.Validator
}

// NewCheckinHandler constructs handler.
func NewCheckinHandler(validator *checkin.Validator) *CheckinHandler {
	return &CheckinHandler{validator: validator}
}

// Scan handles POST /checkin/scan. Every tagged outcome is a 200; only a
// ledger failure is an error.
func (h *CheckinHandler) Scan(c *fiber.Ctx) error {
	var req dto.ScanRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.validator.Scan(c.UserContext(), *req.Raw, req.Station)
	if err != nil {
		return unavailable(err)
	}
	return data(c, http.StatusOK, scanResponse(res))
}

// Status handles GET /checkin/:registrationId.
func (h *CheckinHandler) Status(c *fiber.Ctx) error {
	st, err := h.validator.Status(c.UserContext(), c.Params("registrationId"))
	if err != nil {
		return unavailable(err)
	}
	resp := dto.CheckinStatusResponse{RegistrationID: st.RegistrationID, Consumed: st.Consumed}
	if st.Record != nil {
		resp.Record = &dto.ConsumptionResponse{
			EventID:    st.Record.EventID,
			UserID:     st.Record.UserID,
			Station:    st.Record.Station,
			ConsumedAt: st.Record.ConsumedAt,
		}
	}
	return data(c, http.StatusOK, resp)
}

func unavailable(err error) error {
	if errors.Is(err, ledger.ErrUnavailable) {
		return apperrors.NewUnavailable("LEDGER_UNAVAILABLE", checkin.MessageRetry, err)
	}
	return err
}

func scanResponse(res checkin.Result) dto.ScanResponse {
	return dto.ScanResponse{
		Status:         string(res.Status),
		Message:        res.Message,
		Admitted:       res.Admitted(),
		RegistrationID: res.RegistrationID,
		EventID:        res.EventID,
		UserID:         res.UserID,
		Station:        res.Station,
		IssuedAt:       res.IssuedAt,
		ExpiresAt:      res.ExpiresAt,
		ConsumedAt:     res.ConsumedAt,
	}
}
