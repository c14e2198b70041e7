package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/storeops/store-management-api/config"
	app "github.com/storeops/store-management-api/internal/application"
	"github.com/storeops/store-management-api/pkg/mailer"
)

// notify_worker consumes order events from RabbitMQ and sends the
// customer a confirmation email through Mailgun.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; notify worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQOrdersQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQOrdersQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQOrdersQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev app.OrderEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if ev.UserEmail == "" {
				// nothing to notify
				_ = msg.Ack(false)
				continue
			}

			subject, text := composeEmail(ev)

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, ev.UserEmail, subject, text, ""); err != nil {
				cancel()
				log.Printf("send failed: %v", err)
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("notify worker listening on queue=%s", cfg.RabbitMQOrdersQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func composeEmail(ev app.OrderEvent) (subject, text string) {
	switch ev.Type {
	case "created":
		subject = fmt.Sprintf("Order %s confirmed", ev.OrderID)
		text = fmt.Sprintf("Thanks for your order!\n\nOrder ID: %s\nStatus: %s\nTotal: %s\n", ev.OrderID, ev.Status, ev.Subtotal)
	case "updated":
		subject = fmt.Sprintf("Order %s updated", ev.OrderID)
		text = fmt.Sprintf("Your order was updated.\n\nOrder ID: %s\nStatus: %s\nTotal: %s\n", ev.OrderID, ev.Status, ev.Subtotal)
	case "deleted":
		subject = fmt.Sprintf("Order %s cancelled", ev.OrderID)
		text = fmt.Sprintf("Your order %s has been cancelled.\n", ev.OrderID)
	default:
		subject = fmt.Sprintf("Order %s", ev.OrderID)
		text = fmt.Sprintf("Order ID: %s\nStatus: %s\n", ev.OrderID, ev.Status)
	}
	return subject, text
}
