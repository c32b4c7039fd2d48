// Package tasks is the background side of the system: email and
// WhatsApp delivery, inquiry forwarding, image processing and the
// periodic billing run, all on asynq over Redis.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"urgentsales/server/internal/email"
	"urgentsales/server/internal/utils"
)

const (
	TypeEmailDeliver    = "email:deliver"
	TypeWhatsAppDeliver = "whatsapp:deliver"
	TypeInquiryDeliver  = "inquiry:deliver"
	TypeImageResize     = "image:resize"
	TypeBillingRun      = "billing:run"
)

type WhatsAppPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type InquiryPayload struct {
	InquiryID string `json:"inquiry_id"`
}

type ImageResizePayload struct {
	ListingID string `json:"listing_id"`
	Key       string `json:"key"`
}

// Client enqueues background work. It satisfies notify.Enqueuer and
// services.InquiryDispatcher.
type Client struct {
	asynq *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{asynq: asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})}
}

func (c *Client) Close() error {
	return c.asynq.Close()
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", taskType, err)
	}
	if _, err := c.asynq.Enqueue(asynq.NewTask(taskType, data), opts...); err != nil {
		return fmt.Errorf("enqueuing %s: %w", taskType, err)
	}
	return nil
}

func (c *Client) EnqueueEmail(msg email.Message) error {
	return c.enqueue(TypeEmailDeliver, msg, asynq.MaxRetry(5))
}

func (c *Client) EnqueueWhatsApp(to, body string) error {
	return c.enqueue(TypeWhatsAppDeliver, WhatsAppPayload{To: to, Body: body}, asynq.MaxRetry(5))
}

func (c *Client) DispatchInquiry(inquiryID utils.SixID) error {
	return c.enqueue(TypeInquiryDeliver, InquiryPayload{InquiryID: inquiryID.String()}, asynq.MaxRetry(5))
}

func (c *Client) EnqueueImageResize(listingID, key string) error {
	return c.enqueue(TypeImageResize, ImageResizePayload{ListingID: listingID, Key: key}, asynq.MaxRetry(3))
}
