// Package receptionist wraps the Twilio API for the RenoFlow voice line.
//
// It answers incoming calls with TwiML, captures what the caller says about
// their project, and follows up by SMS with a link to the quote chat.
package receptionist

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
)

// Sender is the outbound messaging surface used by the voice webhook.
type Sender interface {
	SendSMS(ctx context.Context, to string, body string) error
}

// Opts holds configuration options for the Twilio voice client.
type Opts struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Option defines a configuration option for the Twilio voice client.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the number calls and texts originate from.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.FromNumber = from }
}

// Client wraps the Twilio REST API for voice follow-ups.
type Client struct {
	client     *twilio.RestClient
	validator  twilioclient.RequestValidator
	fromNumber string
}

// NewClient creates a Twilio voice client. Options fall back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and TWILIO_FROM_NUMBER environment
// variables.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("Twilio voice client config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &Client{
		client:     client,
		validator:  twilioclient.NewRequestValidator(cfg.AuthToken),
		fromNumber: cfg.FromNumber,
	}, nil
}

// SendSMS sends a text message using the Twilio API.
func (c *Client) SendSMS(ctx context.Context, to string, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.fromNumber)
	params.SetBody(body)

	_, err := c.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio SendSMS failed", "to", to, "error", err)
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}

	slog.Debug("Twilio SMS sent", "to", to)
	return nil
}

// ValidateSignature checks the X-Twilio-Signature header against the request
// URL and form parameters, so the webhook only accepts requests Twilio signed.
func (c *Client) ValidateSignature(url string, params map[string]string, signature string) bool {
	return c.validator.Validate(url, params, signature)
}

// GreetingTwiML builds the TwiML that answers an incoming call: a greeting
// from the receptionist persona and a speech gather that posts the caller's
// description back to the webhook.
func GreetingTwiML(actionURL string) (string, error) {
	say := &twiml.VoiceSay{
		Message: "Thanks for calling Oak and Beam Renovations. " +
			"After the tone, tell me a little about your project, like the room you want to renovate and when you'd like to start.",
	}
	gather := &twiml.VoiceGather{
		Input:         "speech",
		Action:        actionURL,
		Method:        "POST",
		SpeechTimeout: "auto",
	}
	fallback := &twiml.VoiceSay{
		Message: "Sorry, I didn't catch that. We'll text you a link to get started instead. Goodbye.",
	}
	return twiml.Voice([]twiml.Element{say, gather, fallback})
}

// ThanksTwiML builds the TwiML played after the caller has described their
// project. A non-empty acknowledgment tailored to what the caller said is
// spoken first; otherwise a stock line is used.
func ThanksTwiML(acknowledgment string) (string, error) {
	if acknowledgment == "" {
		acknowledgment = "Got it, thank you."
	}
	say := &twiml.VoiceSay{
		Message: acknowledgment + " Our office will call you back within one business day, " +
			"and we're texting you a link to our quote assistant right now. Goodbye.",
	}
	return twiml.Voice([]twiml.Element{say})
}

// FollowUpSMS is the text sent to a caller after they leave a project
// description.
func FollowUpSMS(quoteURL string) string {
	return fmt.Sprintf("Thanks for calling Oak & Beam Renovations! Start your free estimate here: %s", quoteURL)
}

// MockClient records outbound SMS for tests.
type MockClient struct {
	SentSMS []SentSMS
}

// SentSMS is one recorded outbound text message.
type SentSMS struct {
	To   string
	Body string
}

// NewMockClient creates an empty mock sender.
func NewMockClient() *MockClient {
	return &MockClient{SentSMS: []SentSMS{}}
}

func (m *MockClient) SendSMS(ctx context.Context, to string, body string) error {
	m.SentSMS = append(m.SentSMS, SentSMS{To: to, Body: body})
	return nil
}
