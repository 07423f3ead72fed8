// Command notifier consumes the notification queue and delivers
// messages: emails over SMTP, push notifications to the staff console.
package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"tavola/internal/config"
	"tavola/internal/services/notification"

	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	config.LoadEnv()

	amqpURL := config.MustGetEnv("RABBITMQ_URL")
	queue := config.GetEnv("NOTIFICATION_QUEUE", "notifications")
	numWorkers := config.GetIntEnv("NOTIFIER_WORKERS", 4)

	mailer := newMailerFromEnv()

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("Failed to open a channel: %v", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}
	ch.Close()

	log.Printf("Starting notifier with %d workers on queue %s", numWorkers, queue)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		worker, err := newWorker(i+1, conn, queue, mailer)
		if err != nil {
			log.Fatalf("Failed to create worker %d: %v", i+1, err)
		}
		wg.Add(1)
		go worker.run(&wg)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, stopping workers...")
	conn.Close()
	wg.Wait()
}

type worker struct {
	id     int
	ch     *amqp.Channel
	queue  string
	mailer *mailer
}

func newWorker(id int, conn *amqp.Connection, queue string, m *mailer) (*worker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, err
	}
	return &worker{id: id, ch: ch, queue: queue, mailer: m}, nil
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	deliveries, err := w.ch.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		log.Printf("worker %d: failed to start consuming: %v", w.id, err)
		return
	}

	for d := range deliveries {
		if err := w.handle(d.Body); err != nil {
			log.Printf("worker %d: delivery failed: %v", w.id, err)
			// One redelivery, then drop. Requeueing forever would jam
			// the queue on a permanently bad message.
			d.Nack(false, !d.Redelivered)
			continue
		}
		d.Ack(false)
	}
}

func (w *worker) handle(body []byte) error {
	var msg notification.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}

	switch msg.Type {
	case notification.TypeEmail:
		return w.mailer.Send(msg.To, msg.Subject, msg.Body)
	case notification.TypePush:
		log.Printf("worker %d: push to %s: %s (%v)", w.id, msg.To, msg.Subject, msg.Metadata)
		return nil
	default:
		log.Printf("worker %d: ignoring unknown message type %q", w.id, msg.Type)
		return nil
	}
}
