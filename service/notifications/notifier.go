package notifications

import (
	"fmt"
	"log"
	"time"

	"github.com/eakwetey/Wavely-server/cmd/models"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"gorm.io/gorm"
)

// Notifier records notification history and fans out Expo push messages
// for social events (new follower, like, comment, reply). Fanout never
// fails the originating request: errors are logged and the history row
// keeps the delivery status.
type Notifier struct {
	db         *gorm.DB
	expoClient *expo.PushClient
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db:         db,
		expoClient: expo.NewPushClient(nil),
	}
}

// Notify persists the event for userID and pushes to their registered
// devices in the background. Self-notifications are dropped.
func (n *Notifier) Notify(userID, actorID uint, eventType, title, body string) {
	if userID == actorID {
		return
	}

	notification := models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    eventType,
		Title:   title,
		Body:    body,
		Status:  "sent",
		SentAt:  time.Now(),
	}

	go func() {
		var devices []models.Device
		if err := n.db.Where("user_id = ?", userID).Find(&devices).Error; err != nil {
			log.Printf("Error loading devices for user %d: %v", userID, err)
		}

		if len(devices) > 0 {
			tokens := make([]string, 0, len(devices))
			for _, device := range devices {
				tokens = append(tokens, device.Token)
			}
			if err := n.push(tokens, title, body); err != nil {
				log.Printf("Push delivery failed for user %d: %v", userID, err)
				notification.Status = "failed"
			}
		}

		if err := n.db.Create(&notification).Error; err != nil {
			log.Printf("Error recording notification for user %d: %v", userID, err)
		}
	}()
}

func (n *Notifier) push(tokenStrings []string, title, body string) error {
	var validTokens []expo.ExponentPushToken
	var invalidTokens []string

	for _, tokenString := range tokenStrings {
		pushToken, err := expo.NewExponentPushToken(tokenString)
		if err != nil {
			invalidTokens = append(invalidTokens, tokenString)
			continue
		}
		validTokens = append(validTokens, pushToken)
	}

	defer n.cleanupInvalidTokens(invalidTokens)

	if len(validTokens) == 0 {
		return fmt.Errorf("no valid push tokens found")
	}

	pushMessage := &expo.PushMessage{
		To:       validTokens,
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
	}

	response, err := n.expoClient.Publish(pushMessage)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %v", err)
	}
	if validationErr := response.ValidateResponse(); validationErr != nil {
		return fmt.Errorf("notification validation failed: %v", validationErr)
	}
	return nil
}

func (n *Notifier) cleanupInvalidTokens(tokens []string) {
	for _, token := range tokens {
		if err := n.db.Where("token = ?", token).Delete(&models.Device{}).Error; err != nil {
			log.Printf("Error cleaning up invalid token %s: %v", token, err)
		}
	}
}
