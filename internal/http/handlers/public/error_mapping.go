package public

import (
	"errors"

	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a business error onto an API error response.
type mappedHandlerError struct {
	target  error
	code    int
	message string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.message, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var designerAuthErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, message: "invalid email or password"},
	{target: service.ErrDesignerEmailTaken, code: response.CodeBadRequest, message: "email already registered"},
	{target: service.ErrDesignerSlugTaken, code: response.CodeBadRequest, message: "brand name already taken"},
	{target: service.ErrDesignerStatusInvalid, code: response.CodeBadRequest, message: "designer account not eligible"},
	{target: service.ErrDesignerNotFound, code: response.CodeNotFound, message: "designer not found"},
}

var productWriteErrorRules = []mappedHandlerError{
	{target: service.ErrDesignerNotApproved, code: response.CodeForbidden, message: "designer not approved"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, message: "product not found"},
	{target: service.ErrProductNotOwned, code: response.CodeForbidden, message: "product belongs to another designer"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, message: "product price invalid"},
	{target: service.ErrProductSlugTaken, code: response.CodeBadRequest, message: "product name already taken"},
	{target: service.ErrProductInvalid, code: response.CodeBadRequest, message: "product input invalid"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderEmpty, code: response.CodeBadRequest, message: "order has no items"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, message: "product not found"},
	{target: service.ErrProductNotActive, code: response.CodeBadRequest, message: "product not available"},
	{target: service.ErrProductOutOfStock, code: response.CodeBadRequest, message: "product out of stock"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, message: "order cannot be created"},
}

var orderCheckoutErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, message: "order not found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, message: "order not awaiting payment"},
	{target: service.ErrPaymentSessionCreateFailed, code: response.CodeInternal, message: "payment session create failed"},
}

var withdrawalRequestErrorRules = []mappedHandlerError{
	{target: service.ErrWalletInvalidAmount, code: response.CodeBadRequest, message: "withdrawal amount invalid"},
	{target: service.ErrWithdrawalBelowMinimum, code: response.CodeBadRequest, message: "withdrawal amount below minimum"},
	{target: service.ErrWithdrawalAccountMissing, code: response.CodeBadRequest, message: "payout account missing"},
	{target: service.ErrWalletInsufficientBalance, code: response.CodeBadRequest, message: "balance insufficient"},
	{target: service.ErrWalletBalanceConflict, code: response.CodeConflict, message: "balance changed, retry the request"},
	{target: service.ErrWalletAccountNotFound, code: response.CodeNotFound, message: "wallet account not found"},
	{target: service.ErrDesignerNotApproved, code: response.CodeForbidden, message: "designer not approved"},
}

func respondDesignerAuthError(c *gin.Context, err error) {
	respondWithMappedError(c, err, designerAuthErrorRules, response.CodeInternal, "request failed")
}

func respondProductWriteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, productWriteErrorRules, response.CodeInternal, "product save failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
}

func respondOrderCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCreateErrorRules, orderCheckoutErrorRules), response.CodeInternal, "checkout failed")
}

func respondWithdrawalRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, withdrawalRequestErrorRules, response.CodeInternal, "withdrawal request failed")
}
