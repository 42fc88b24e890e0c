package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hris/internal/certificate"
	"hris/internal/cloudinary"
	"hris/internal/config"
	"hris/internal/employee"
	"hris/internal/mailer"
	"hris/internal/metrics"
	"hris/internal/queue"
	"hris/internal/store"
	"hris/internal/training"
)

// Worker consumes completed-training jobs: it renders and stores the
// certificates for everyone marked present, then mails each of them a link.
// The attendance save has already happened by the time a job arrives; the
// certificate and mail phases fail independently of it and of each other.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "hris:jobs")
	}

	trainRepo := training.NewRepository(db.Client)
	empRepo := employee.NewRepository(db.Client)
	certRepo := certificate.NewRepository(db.Client)

	var certSvc *certificate.Service
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdn := cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		certSvc = certificate.NewService(certRepo, cdn, empRepo, cfg.InstitutionName)
	} else {
		log.Println("WARNING: cloudinary not configured, certificate jobs will be dropped")
	}

	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.MailFromName)
	if mail == nil {
		log.Println("smtp not configured, certificate mail disabled")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for jobs...")
	for msg := range messages {
		if msg.Type != queue.TypeTrainingCompleted {
			continue
		}

		id := string(msg.Body)
		log.Printf("processing completed training %s", id)

		t, err := trainRepo.Get(ctx, id)
		if err != nil {
			log.Printf("fetch training %s failed: %v", id, err)
			continue
		}
		if certSvc == nil {
			log.Printf("training %s: no certificate storage, job dropped", id)
			continue
		}

		report := certSvc.IssueForTraining(ctx, t, "worker")
		log.Printf("training %s: %d certificates issued, %d failed", id, len(report.Issued), len(report.Failed))
		for _, f := range report.Failed {
			log.Printf("training %s: certificate for %s failed: %s", id, f.Name, f.Reason)
		}

		if mail == nil {
			continue
		}
		for _, issued := range report.Issued {
			if issued.Email == "" {
				log.Printf("training %s: no address for %s, mail skipped", id, issued.Name)
				continue
			}
			if err := mail.SendCertificate(issued.Email, issued.Name, t.Title, issued.URL); err != nil {
				metrics.MailsFailed.Inc()
				log.Printf("certificate mail to %s failed: %v", issued.Email, err)
			} else {
				metrics.MailsSent.Inc()
			}
			time.Sleep(cfg.MailDelay)
		}
	}

	log.Println("worker stopped")
}
