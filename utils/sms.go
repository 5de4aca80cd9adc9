package utils

import (
	"context"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSClient wraps the Twilio REST client for escalation messages.
type SMSClient struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewSMSClient(accountSID, authToken, fromNumber string) *SMSClient {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &SMSClient{
		client:     client,
		fromNumber: fromNumber,
	}
}

func (sc *SMSClient) SendSMS(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(sc.fromNumber)
	params.SetBody(body)

	_, err := sc.client.Api.CreateMessage(params)
	if err != nil {
		return NewDependencyError("Twilio", err)
	}
	return nil
}
