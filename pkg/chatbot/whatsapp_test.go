package chatbot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/planlane/planlane/dao/model"
)

func TestVerifyCredentials(t *testing.T) {
	full := model.IntegrationCredentials{
		"apiUrl":      "https://gateway.example.com/send",
		"apiToken":    "secret",
		"phoneNumber": "+3712000000",
	}
	assert.NoError(t, VerifyCredentials(model.IntegrationWhatsApp, full))

	missing := model.IntegrationCredentials{
		"apiUrl":   "https://gateway.example.com/send",
		"apiToken": "secret",
	}
	err := VerifyCredentials(model.IntegrationWhatsApp, missing)
	assert.ErrorContains(t, err, "phoneNumber")

	// Empty values count as missing.
	missing["phoneNumber"] = ""
	assert.Error(t, VerifyCredentials(model.IntegrationWhatsApp, missing))

	assert.NoError(t, VerifyCredentials(model.IntegrationEmail,
		model.IntegrationCredentials{"recipient": "pm@example.com"}))

	assert.ErrorContains(t, VerifyCredentials("telegram", nil), "unknown integration type")
}

func TestBuildDigest(t *testing.T) {
	due := time.Date(2025, 8, 12, 9, 30, 0, 0, time.UTC)
	tasks := []model.Task{
		{Name: "Order fittings", DueDate: &due},
		{Name: "Confirm delivery", DueDate: &due},
	}

	digest := BuildDigest(tasks)
	assert.Contains(t, digest, "2 task(s) due within 24 hours")
	assert.Contains(t, digest, "Order fittings")
	assert.Contains(t, digest, "2025-08-12 09:30")
}
