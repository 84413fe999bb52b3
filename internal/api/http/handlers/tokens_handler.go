package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/api/dto"
	"github.com/mapease/checkin-service/internal/service"
)

// TokensHandler issues tokens outside the approval flow, e.g. to reissue a lost code.
type TokensHandler struct {
	issuance *service.IssuanceService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(issuance *service.IssuanceService) *TokensHandler {
	return &TokensHandler{issuance: issuance}
}

// Issue handles POST /tokens.
func (h *TokensHandler) Issue(c *fiber.Ctx) error {
	var req dto.IssueTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issued, err := h.issuance.Issue(c.UserContext(), service.IssueInput{
		RegistrationID: req.RegistrationID,
		EventID:        req.EventID,
		UserID:         req.UserID,
		OperatorID:     operatorID(c),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, issuedResponse(issued))
}

func issuedResponse(issued *service.IssuedToken) dto.IssueTokenResponse {
	return dto.IssueTokenResponse{
		Token: dto.TokenPayload{
			RegistrationID: issued.Token.RegistrationID,
			EventID:        issued.Token.EventID,
			UserID:         issued.Token.UserID,
			Timestamp:      issued.Token.IssuedAt,
		},
		Text:      issued.Text,
		Image:     issued.Image(),
		ImageURL:  issued.ImageURL,
		ExpiresAt: issued.ExpiresAt,
	}
}
