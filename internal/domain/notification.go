package domain

import "time"

type NotificationType string

const (
	NotificationAppointment    NotificationType = "appointment"
	NotificationPatientArrival NotificationType = "patient_arrival"
	NotificationExamResult     NotificationType = "exam_result"
	NotificationPharmacy       NotificationType = "pharmacy"
	NotificationGeneral        NotificationType = "general"
	NotificationBilling        NotificationType = "billing"
)

// Notification запись ленты уведомлений персонала
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	RelatedID string           `json:"related_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
