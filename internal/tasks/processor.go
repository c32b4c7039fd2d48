package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"urgentsales/server/internal/email"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/models"
	"urgentsales/server/internal/notify"
	"urgentsales/server/internal/services"
	"urgentsales/server/internal/storage"
	"urgentsales/server/internal/store/mongostore"
	"urgentsales/server/internal/utils"
)

// Processor consumes background tasks. It runs in the bg and all run
// modes.
type Processor struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler

	appName  string
	maxDim   int
	sender   email.Sender
	whatsapp *notify.WhatsAppClient
	images   *storage.Client
	primary  *mongostore.Store
	db       *mongo.Database
	merger   *listing.Merger
	users    services.IUserService
	billing  services.ISubscriptionService
}

func NewProcessor(redisAddr, redisPassword string, redisDB int, appName string, maxDim int,
	sender email.Sender, whatsapp *notify.WhatsAppClient, images *storage.Client,
	primary *mongostore.Store, database *mongo.Database, merger *listing.Merger,
	users services.IUserService, billing services.ISubscriptionService) *Processor {

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB}
	return &Processor{
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 8,
			Queues:      map[string]int{"default": 1},
		}),
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC}),
		appName:   appName,
		maxDim:    maxDim,
		sender:    sender,
		whatsapp:  whatsapp,
		images:    images,
		primary:   primary,
		db:        database,
		merger:    merger,
		users:     users,
		billing:   billing,
	}
}

// Start runs the worker and the periodic billing schedule. Blocks until
// Shutdown.
func (p *Processor) Start() error {
	if _, err := p.scheduler.Register("0 2 1 * *", asynq.NewTask(TypeBillingRun, nil)); err != nil {
		return fmt.Errorf("registering billing schedule: %w", err)
	}
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDeliver, p.handleEmail)
	mux.HandleFunc(TypeWhatsAppDeliver, p.handleWhatsApp)
	mux.HandleFunc(TypeInquiryDeliver, p.handleInquiry)
	mux.HandleFunc(TypeImageResize, p.handleImageResize)
	mux.HandleFunc(TypeBillingRun, p.handleBillingRun)
	return p.server.Run(mux)
}

func (p *Processor) Shutdown() {
	p.scheduler.Shutdown()
	p.server.Shutdown()
}

func (p *Processor) handleEmail(ctx context.Context, t *asynq.Task) error {
	var msg email.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("bad email payload: %w", err)
	}
	return p.sender.Send(msg)
}

func (p *Processor) handleWhatsApp(ctx context.Context, t *asynq.Task) error {
	var payload WhatsAppPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad whatsapp payload: %w", err)
	}
	if !p.whatsapp.Enabled() {
		log.Printf("whatsapp gateway not configured, dropping message to %s", payload.To)
		return nil
	}
	return p.whatsapp.SendMessage(ctx, payload.To, payload.Body)
}

// handleInquiry forwards a stored inquiry to the listing owner and
// marks it sent.
func (p *Processor) handleInquiry(ctx context.Context, t *asynq.Task) error {
	var payload InquiryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad inquiry payload: %w", err)
	}
	inquiryID, err := utils.ParseSixID(payload.InquiryID)
	if err != nil {
		return fmt.Errorf("bad inquiry id %q: %w", payload.InquiryID, err)
	}

	coll := p.db.Collection("inquiries")
	var inquiry models.Inquiry
	if err := coll.FindOne(ctx, bson.M{"_id": inquiryID, "deleted": false}).Decode(&inquiry); err != nil {
		return fmt.Errorf("loading inquiry %s: %w", inquiryID, err)
	}
	if inquiry.Sent {
		return nil
	}

	key := listing.Key{Origin: listing.Origin(inquiry.ListingOrigin), ID: inquiry.ListingID}
	l, err := p.merger.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("loading listing %s for inquiry %s: %w", key, inquiryID, err)
	}

	var ownerEmail string
	if l.Contact != nil {
		ownerEmail = l.Contact.Email
	}
	if l.Origin == listing.OriginPrimary {
		ownerID, parseErr := utils.ParseSixID(l.UserID)
		if parseErr != nil {
			return fmt.Errorf("listing %s has malformed owner id %q", key, l.UserID)
		}
		owner, userErr := p.users.GetByID(ctx, ownerID)
		if userErr != nil {
			return fmt.Errorf("resolving owner of %s: %w", key, userErr)
		}
		ownerEmail = owner.Email
	}
	if ownerEmail == "" {
		log.Printf("inquiry %s: listing %s has no owner email, dropping", inquiryID, key)
		return nil
	}

	msg := notify.ComposeInquiryEmail(p.appName, ownerEmail, l.Title, inquiry.Email, inquiry.Phone, inquiry.Message)
	if err := p.sender.Send(msg); err != nil {
		return err
	}

	_, err = coll.UpdateOne(ctx, bson.M{"_id": inquiryID}, bson.M{"$set": bson.M{"sent": true}})
	return err
}

// handleImageResize pulls the raw upload, shrinks it and attaches the
// processed key to the listing.
func (p *Processor) handleImageResize(ctx context.Context, t *asynq.Task) error {
	var payload ImageResizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad image payload: %w", err)
	}

	raw, err := p.images.Download(ctx, payload.Key)
	if err != nil {
		return err
	}
	shrunk, err := ShrinkImage(raw, p.maxDim)
	if err != nil {
		// Not retryable, the upload itself is broken.
		log.Printf("image %s for listing %s is not decodable: %v", payload.Key, payload.ListingID, err)
		return nil
	}
	if err := p.images.Upload(ctx, payload.Key, "image/jpeg", shrunk); err != nil {
		return err
	}
	return p.primary.AddImage(ctx, payload.ListingID, payload.Key)
}

// handleBillingRun invoices every account whose live listings exceed
// the free tier, once per period.
func (p *Processor) handleBillingRun(ctx context.Context, t *asynq.Task) error {
	periodStart := time.Now().UTC().Truncate(24 * time.Hour)

	cursor, err := p.db.Collection("users").Find(ctx, bson.M{"deleted": false, "suspended": false})
	if err != nil {
		return fmt.Errorf("listing users for billing: %w", err)
	}
	defer cursor.Close(ctx)

	var billed, failed int
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return fmt.Errorf("decoding user: %w", err)
		}
		invoice, err := p.billing.GenerateInvoice(ctx, user.ID, periodStart)
		if err != nil {
			log.Printf("WARN: billing user %s failed: %v", user.ID, err)
			failed++
			continue
		}
		if invoice == nil {
			continue
		}
		billed++
		if user.WantsEmail() && user.Email != "" {
			msg := email.Message{
				To:      user.Email,
				Subject: fmt.Sprintf("Invoice %s from %s", invoice.InvoiceNumber, p.appName),
				Body: fmt.Sprintf("Invoice %s for ₹%.2f is due by %s.\n\nThe %s team",
					invoice.InvoiceNumber, invoice.Total, invoice.DueAt.Format("2 Jan 2006"), p.appName),
			}
			if err := p.sender.Send(msg); err != nil {
				log.Printf("WARN: could not send invoice %s: %v", invoice.InvoiceNumber, err)
				continue
			}
			_, _ = p.db.Collection("invoices").UpdateOne(ctx,
				bson.M{"_id": invoice.ID}, bson.M{"$set": bson.M{"sent": true}})
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("iterating users for billing: %w", err)
	}

	log.Printf("billing run complete: %d invoiced, %d failed", billed, failed)
	return nil
}
