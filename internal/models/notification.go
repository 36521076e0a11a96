package models

// NotificationType groups notifications by origin.
type NotificationType string

const (
	NotificationAppointment NotificationType = "appointment"
	NotificationReminder    NotificationType = "reminder"
	NotificationSystem      NotificationType = "system"
)

// Notification is a message shown to one user. Rows are never edited except for IsRead.
type Notification struct {
	BaseModel
	UserID           string           `gorm:"size:36;not null;index" json:"userId"`
	NotificationType NotificationType `gorm:"size:20;not null" json:"notificationType"`
	Title            string           `gorm:"size:200;not null" json:"title"`
	Message          string           `gorm:"type:text;not null" json:"message"`
	IsRead           bool             `gorm:"default:false;index" json:"isRead"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
