package services

import (
	"fmt"
	"net/smtp"

	"vkmod/internal/config"
	"vkmod/internal/logger"
	"vkmod/internal/utils"

	"go.uber.org/zap"
)

type EmailService struct {
	auth smtp.Auth
	from string
	host string
	port string
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth: auth,
		from: cfg.SMTPUser,
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
	}
}

func (s *EmailService) Enabled() bool { return s.host != "" && s.from != "" }

func (s *EmailService) send(to []string, subject, body string, isHTML bool) error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, to, utils.BuildMessage(s.from, to, subject, body, isHTML))
}

func (s *EmailService) Send(to []string, subject, body string) error {
	return s.send(to, subject, body, false)
}

func (s *EmailService) SendHTML(to []string, subject, body string) error {
	return s.send(to, subject, body, true)
}

type EmailJob struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

type EmailSender interface {
	Send(to []string, subject, body string) error
	SendHTML(to []string, subject, body string) error
}

var EmailQueue = make(chan EmailJob, 100) // глобальная очередь на 100 писем

// enqueueEmail не блокирует вызывающего: при переполненной очереди письмо теряется.
func enqueueEmail(job EmailJob) bool {
	select {
	case EmailQueue <- job:
		return true
	default:
		logger.Log.Warn("Очередь писем переполнена, письмо отброшено", zap.String("subject", job.Subject))
		return false
	}
}

func StartEmailWorker(sender EmailSender) {
	go func() {
		for job := range EmailQueue {
			var err error
			if job.IsHTML {
				err = sender.SendHTML(job.To, job.Subject, job.Body)
			} else {
				err = sender.Send(job.To, job.Subject, job.Body)
			}
			if err != nil {
				logger.Log.Error("Не удалось отправить письмо", zap.Error(err), zap.Strings("to", job.To))
			}
		}
	}()
}
