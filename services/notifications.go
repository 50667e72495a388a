package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"estately-server/logger"
	"estately-server/models"
	"estately-server/storage"
)

const expoPushEndpoint = "https://exp.host/--/api/v2/push/send"

// NotificationService handles push notification delivery for appointment and
// listing events.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData is the deep-linking payload attached to every push.
type NotificationData struct {
	Type          string `json:"type"`
	PropertyID    string `json:"propertyId,omitempty"`
	AppointmentID string `json:"appointmentId,omitempty"`
	Screen        string `json:"screen"`
}

func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user %d has notifications disabled or no tokens", userID)
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("parse push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("user %d has no push tokens", userID)
	}
	return tokens, nil
}

// SendNotificationToUser fans the message out to every registered device.
// A user without tokens is not an error worth surfacing to callers.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		logger.S().Debugw("push skipped", "userID", userID, "reason", err)
		return nil
	}

	var lastError error
	for _, token := range tokens {
		if err := sendExpoPush(token, title, body, data); err != nil {
			logger.S().Warnw("push delivery failed", "userID", userID, "error", err)
			lastError = err
		}
	}
	return lastError
}

// SendAppointmentRequestToAgent notifies the listing agent of a new viewing request.
func (ns *NotificationService) SendAppointmentRequestToAgent(apt *models.Appointment, visitorName, propertyTitle string) error {
	return ns.SendNotificationToUser(
		apt.AgentID,
		"New viewing request",
		fmt.Sprintf("%s requested a viewing of %s on %s at %02d:00.", visitorName, propertyTitle, apt.Date.Format("Jan 2"), apt.Hour),
		NotificationData{
			Type:          "appointment_request",
			PropertyID:    fmt.Sprintf("%d", apt.PropertyID),
			AppointmentID: fmt.Sprintf("%d", apt.ID),
			Screen:        "AgentAppointments",
		},
	)
}

// SendAppointmentStatusToVisitor notifies the visitor after the agent responds.
func (ns *NotificationService) SendAppointmentStatusToVisitor(apt *models.Appointment, propertyTitle string) error {
	return ns.SendNotificationToUser(
		apt.VisitorID,
		"Viewing "+apt.Status,
		fmt.Sprintf("Your viewing of %s on %s at %02d:00 is %s.", propertyTitle, apt.Date.Format("Jan 2"), apt.Hour, apt.Status),
		NotificationData{
			Type:          "appointment_status",
			PropertyID:    fmt.Sprintf("%d", apt.PropertyID),
			AppointmentID: fmt.Sprintf("%d", apt.ID),
			Screen:        "MyAppointments",
		},
	)
}

// SendAppointmentReminder nudges the visitor the day before a confirmed viewing.
func (ns *NotificationService) SendAppointmentReminder(apt *models.Appointment, propertyTitle string) error {
	return ns.SendNotificationToUser(
		apt.VisitorID,
		"Viewing tomorrow",
		fmt.Sprintf("Reminder: %s tomorrow at %02d:00.", propertyTitle, apt.Hour),
		NotificationData{
			Type:          "appointment_reminder",
			PropertyID:    fmt.Sprintf("%d", apt.PropertyID),
			AppointmentID: fmt.Sprintf("%d", apt.ID),
			Screen:        "MyAppointments",
		},
	)
}

// SendModerationResultToAgent notifies the agent after an admin decision.
func (ns *NotificationService) SendModerationResultToAgent(agentID, propertyID uint, propertyTitle, status string) error {
	return ns.SendNotificationToUser(
		agentID,
		"Listing "+status,
		fmt.Sprintf("Your listing %s was %s.", propertyTitle, status),
		NotificationData{
			Type:       "moderation",
			PropertyID: fmt.Sprintf("%d", propertyID),
			Screen:     "MyListings",
		},
	)
}

func sendExpoPush(token, title, body string, data NotificationData) error {
	message := map[string]interface{}{
		"to":    token,
		"title": title,
		"body":  body,
		"sound": "default",
		"data":  data,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	res, err := http.Post(expoPushEndpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push status %d", res.StatusCode)
	}
	return nil
}
