package notify

import (
	"context"
	"log"

	"urgentsales/server/internal/email"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
	"urgentsales/server/internal/utils"
)

// Enqueuer hands messages to the background delivery queue.
type Enqueuer interface {
	EnqueueEmail(msg email.Message) error
	EnqueueWhatsApp(to, body string) error
}

// Notifier resolves the owner behind a listing and queues decision
// notifications for them.
type Notifier struct {
	appName string
	users   services.IUserService
	queue   Enqueuer
}

func NewNotifier(appName string, users services.IUserService, queue Enqueuer) *Notifier {
	return &Notifier{appName: appName, users: users, queue: queue}
}

// NotifyDecision implements services.DecisionNotifier. Any failure is
// logged and dropped; the decision already happened.
func (n *Notifier) NotifyDecision(ctx context.Context, l listing.Listing, note listing.Notification) {
	emailTo, phone, wantsEmail, wantsWhatsApp := n.recipient(ctx, l)

	if wantsEmail && emailTo != "" {
		msg := ComposeDecisionEmail(n.appName, emailTo, note)
		if err := n.queue.EnqueueEmail(msg); err != nil {
			log.Printf("WARN: could not queue decision email for %s: %v", l.Key(), err)
		}
	}
	if wantsWhatsApp && phone != "" {
		if err := n.queue.EnqueueWhatsApp(phone, ComposeDecisionWhatsApp(note)); err != nil {
			log.Printf("WARN: could not queue decision whatsapp for %s: %v", l.Key(), err)
		}
	}
}

// recipient finds where to reach the owner. Primary listings go through
// the account and its channel preferences; free listings only have the
// contact details on the row.
func (n *Notifier) recipient(ctx context.Context, l listing.Listing) (emailTo, phone string, wantsEmail, wantsWhatsApp bool) {
	if l.Origin == listing.OriginFree {
		if l.Contact == nil {
			return "", "", false, false
		}
		return l.Contact.Email, l.Contact.Phone, true, true
	}

	userID, err := utils.ParseSixID(l.UserID)
	if err != nil {
		log.Printf("WARN: listing %s has malformed owner id %q", l.Key(), l.UserID)
		return "", "", false, false
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("WARN: could not resolve owner of %s: %v", l.Key(), err)
		return "", "", false, false
	}
	return user.Email, user.Phone, user.WantsEmail(), user.WantsWhatsApp()
}
