package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/onlyfriends-app/backend/internal/config"
	"github.com/onlyfriends-app/backend/internal/utils"
)

// Dispatcher hands a verification code to a delivery channel.
type Dispatcher interface {
	SendVerificationCode(phone, code string) (*SMSResult, error)
}

// SMSResult is the outcome of a successful dispatch.
type SMSResult struct {
	MessageID string
	// DevCode carries the code back to the caller when delivery was skipped
	// in development mode, so it can be surfaced in the API response.
	DevCode string
}

// SMSService sends verification codes through Twilio. Without credentials it
// runs in development mode and skips delivery entirely; in production missing
// credentials are a configuration error.
type SMSService struct {
	client  *twilio.RestClient
	from    string
	devMode bool
}

// NewSMSService builds the dispatcher from configuration.
func NewSMSService(cfg *config.Config) (*SMSService, error) {
	if !cfg.TwilioConfigured() {
		if cfg.Production() {
			return nil, fmt.Errorf("missing Twilio credentials in production")
		}
		log.Println("⚠️  Twilio credentials not set - SMS delivery disabled (development mode)")
		return &SMSService{devMode: true}, nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &SMSService{client: client, from: cfg.TwilioPhoneNumber}, nil
}

// SendVerificationCode delivers the code to phone via SMS. No retries; retry
// policy belongs to the caller.
func (s *SMSService) SendVerificationCode(phone, code string) (*SMSResult, error) {
	if s.devMode {
		log.Printf("📱 Dev mode: skipping SMS to %s, code returned to caller", utils.FormatPhoneForDisplay(phone))
		return &SMSResult{MessageID: "dev-mode", DevCode: code}, nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("Your Only Friends verification code is: %s", code))

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		var restErr *twilioClient.TwilioRestError
		if errors.As(err, &restErr) {
			return nil, &DispatchError{Code: restErr.Code, Message: restErr.Message, Err: err}
		}
		return nil, &DispatchError{Message: err.Error(), Err: err}
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return nil, &DispatchError{Code: *resp.ErrorCode, Message: msg}
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("✅ Verification SMS sent to %s! SID: %s", utils.FormatPhoneForDisplay(phone), sid)
	return &SMSResult{MessageID: sid}, nil
}
