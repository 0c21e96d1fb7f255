package chatbot

import (
	"fmt"

	"github.com/imroc/req/v3"

	"github.com/planlane/planlane/dao/model"
)

// requiredCredentials lists the credential keys each channel protocol
// needs. Verification checks presence only, never a live call.
var requiredCredentials = map[model.IntegrationType][]string{
	model.IntegrationWhatsApp: {"apiUrl", "apiToken", "phoneNumber"},
	model.IntegrationEmail:    {"recipient"},
}

// VerifyCredentials reports whether the stored credential set contains
// every field the integration's protocol requires.
func VerifyCredentials(t model.IntegrationType, creds model.IntegrationCredentials) error {
	required, ok := requiredCredentials[t]
	if !ok {
		return fmt.Errorf("unknown integration type %q", t)
	}
	for _, key := range required {
		if creds[key] == "" {
			return fmt.Errorf("missing credential field %q", key)
		}
	}
	return nil
}

// WhatsAppSender pushes messages through a WhatsApp-gateway HTTP API
// using the credentials of the configured integration.
type WhatsAppSender struct {
	client *req.Client
}

func NewWhatsAppSender() *WhatsAppSender {
	return &WhatsAppSender{
		client: req.C(),
	}
}

type whatsAppMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (s *WhatsAppSender) Send(creds model.IntegrationCredentials, body string) error {
	if err := VerifyCredentials(model.IntegrationWhatsApp, creds); err != nil {
		return err
	}

	resp, err := s.client.R().
		SetBearerAuthToken(creds["apiToken"]).
		SetBody(&whatsAppMessage{To: creds["phoneNumber"], Body: body}).
		Post(creds["apiUrl"])
	if err != nil {
		return err
	}
	if resp.IsErrorState() {
		return fmt.Errorf("whatsapp gateway returned %s", resp.Status)
	}
	return nil
}
