// Package notify turns approval outcomes into owner-facing messages
// and hands them to the background queue. Notification failures are
// logged and never bubble back into the approval flow.
package notify

import (
	"fmt"
	"strings"

	"urgentsales/server/internal/email"
	"urgentsales/server/internal/listing"
)

// ComposeDecisionEmail renders the owner email for an approval outcome.
func ComposeDecisionEmail(appName, to string, n listing.Notification) email.Message {
	var subject, body string
	switch n.Outcome {
	case listing.StatusApproved:
		subject = fmt.Sprintf("Your listing %q is now live", n.Title)
		body = fmt.Sprintf(
			"Good news!\n\nYour listing %q in %s (price %s) has been approved and is now visible to buyers.\n\nThe %s team",
			n.Title, n.City, formatPrice(n.Price), appName)
	default:
		subject = fmt.Sprintf("Your listing %q was not approved", n.Title)
		body = fmt.Sprintf(
			"Unfortunately your listing %q in %s was rejected.\n\nReason: %s\n\nYou can fix the issue and resubmit at any time.\n\nThe %s team",
			n.Title, n.City, n.Reason, appName)
	}
	return email.Message{To: to, Subject: subject, Body: body}
}

// ComposeDecisionWhatsApp renders the short-form variant.
func ComposeDecisionWhatsApp(n listing.Notification) string {
	if n.Outcome == listing.StatusApproved {
		return fmt.Sprintf("Your listing %q is approved and live. Price: %s.", n.Title, formatPrice(n.Price))
	}
	return fmt.Sprintf("Your listing %q was rejected. Reason: %s", n.Title, n.Reason)
}

// ComposeInquiryEmail renders the owner email for a buyer inquiry.
func ComposeInquiryEmail(appName, to, listingTitle, buyerEmail, buyerPhone, message string) email.Message {
	var contact strings.Builder
	contact.WriteString(buyerEmail)
	if buyerPhone != "" {
		contact.WriteString(", ")
		contact.WriteString(buyerPhone)
	}
	return email.Message{
		To:      to,
		Subject: fmt.Sprintf("New inquiry about %q", listingTitle),
		Body: fmt.Sprintf("A buyer asked about your listing %q:\n\n%s\n\nReply to: %s\n\nThe %s team",
			listingTitle, message, contact.String(), appName),
	}
}

// ComposeOwnershipCodeEmail renders the claim code email for a free
// listing.
func ComposeOwnershipCodeEmail(appName, to, listingTitle, code string) email.Message {
	return email.Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s verification code", appName),
		Body: fmt.Sprintf("Someone asked to manage the listing %q using this email address.\n\nYour code: %s\n\nIf that was not you, ignore this message.\n\nThe %s team",
			listingTitle, code, appName),
	}
}

// formatPrice renders in Indian grouping (12,34,56,789).
func formatPrice(price float64) string {
	whole := fmt.Sprintf("%.0f", price)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		whole = strings.Join(append(groups, tail), ",")
	}
	if neg {
		whole = "-" + whole
	}
	return "₹" + whole
}
