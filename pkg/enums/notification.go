package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeApplicationSubmitted NotificationType = "application_submitted"
	NotificationTypeApplicationApproved  NotificationType = "application_approved"
	NotificationTypeApplicationRejected  NotificationType = "application_rejected"
	NotificationTypeApplicationOnHold    NotificationType = "application_on_hold"
	NotificationTypeInfoRequested        NotificationType = "info_requested"
	NotificationTypeDocumentVerified     NotificationType = "document_verified"
	NotificationTypeCommissionAssigned   NotificationType = "commission_assigned"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeApplicationSubmitted,
	NotificationTypeApplicationApproved,
	NotificationTypeApplicationRejected,
	NotificationTypeApplicationOnHold,
	NotificationTypeInfoRequested,
	NotificationTypeDocumentVerified,
	NotificationTypeCommissionAssigned,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
