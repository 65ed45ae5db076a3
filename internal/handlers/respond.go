package handlers

import (
	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// serviceError maps a billing service error onto the standard response
// envelope. Anything without a billing kind is a server error.
func serviceError(c *gin.Context, err error) {
	switch billing.KindOf(err) {
	case billing.KindNotFound:
		utils.NotFound(c, err.Error())
	case billing.KindInvalidState:
		utils.UnprocessableEntity(c, err.Error())
	case billing.KindConflict:
		utils.Conflict(c, err.Error())
	case billing.KindInsufficientFunds:
		utils.PaymentRequired(c, err.Error())
	case billing.KindValidation:
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
