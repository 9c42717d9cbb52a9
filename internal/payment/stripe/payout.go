package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/models"
)

const payoutTimeout = 15 * time.Second

// PayoutSender pushes approved withdrawals through the Stripe payout API.
// Bank-transfer withdrawals are paid manually and skipped here.
type PayoutSender struct {
	cfg      *Config
	currency string
}

// NewPayoutSender builds a payout sender.
func NewPayoutSender(cfg *Config, currency string) *PayoutSender {
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	return &PayoutSender{cfg: cfg, currency: currency}
}

// Payout sends the withdrawal amount and returns the provider reference.
func (p *PayoutSender) Payout(request *models.WithdrawalRequest) (string, error) {
	if request == nil {
		return "", fmt.Errorf("%w: withdrawal is nil", ErrConfigInvalid)
	}
	if request.Channel != constants.WithdrawalChannelStripe {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), payoutTimeout)
	defer cancel()

	reference := fmt.Sprintf("withdrawal:%d", request.ID)
	result, err := CreatePayout(ctx, p.cfg, request.Amount.String(), p.currency, reference)
	if err != nil {
		return "", err
	}
	return result.PayoutID, nil
}
