package services

import (
	"context"

	"resqlink/interfaces"
	"resqlink/models"
	"resqlink/utils"

	"github.com/sirupsen/logrus"
)

// PushService is the delivery boundary in front of the push provider. It
// never returns an error to callers: provider failures are logged and folded
// into the failure count so a broken push path cannot break the operation
// that triggered it.
type PushService struct {
	sender interfaces.MulticastSender
}

func NewPushService(sender interfaces.MulticastSender) *PushService {
	return &PushService{sender: sender}
}

// Dispatch sends one multicast push to the given device tokens. Empty tokens
// are filtered out first; an empty set is a successful no-op.
func (ps *PushService) Dispatch(ctx context.Context, tokens []string, msg utils.PushMessage) *models.DispatchResult {
	valid := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token != "" {
			valid = append(valid, token)
		}
	}

	if len(valid) == 0 {
		return &models.DispatchResult{SuccessCount: 0, FailureCount: 0}
	}

	if ps.sender == nil {
		logrus.Warn("Push sender not configured, skipping dispatch")
		return &models.DispatchResult{SuccessCount: 0, FailureCount: len(valid)}
	}

	result, err := ps.sender.SendMulticast(ctx, valid, msg)
	if err != nil {
		logrus.Errorf("Push dispatch failed for %d tokens: %v", len(valid), err)
		return &models.DispatchResult{SuccessCount: 0, FailureCount: len(valid)}
	}

	if result.FailureCount > 0 {
		logrus.Warnf("Push dispatch partial failure: %d sent, %d failed",
			result.SuccessCount, result.FailureCount)
	}

	return result
}
