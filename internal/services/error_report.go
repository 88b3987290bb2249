package services

import (
	"context"
	"strings"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/models"
	"vkmod/internal/utils/helpers"

	"go.uber.org/zap"
)

type ErrorReportRepo interface {
	Create(ctx context.Context, e *models.ErrorReport) (*models.ErrorReport, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.ErrorReport, int, error)
	Resolve(ctx context.Context, id int64) (*models.ErrorReport, error)
}

const maxErrorMessageLen = 4000

type ErrorReportService struct {
	repo        ErrorReportRepo
	alertEmails []string
	notify      func(EmailJob) bool
}

func NewErrorReportService(repo ErrorReportRepo, alertEmails []string) *ErrorReportService {
	return &ErrorReportService{repo: repo, alertEmails: alertEmails, notify: enqueueEmail}
}

// DisableAlerts отключает письма администраторам: без SMTP их некому разбирать из очереди.
func (s *ErrorReportService) DisableAlerts() {
	s.notify = nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Report сохраняет ошибку. Об ошибках сбора администраторам уходит письмо.
func (s *ErrorReportService) Report(ctx context.Context, source, code, message string, details map[string]any) (*models.ErrorReport, error) {
	e := &models.ErrorReport{
		Source:  source,
		Code:    truncate(strings.TrimSpace(code), 100),
		Message: truncate(message, maxErrorMessageLen),
		Context: details,
		Status:  models.ErrorStatusOpen,
	}
	saved, err := s.repo.Create(ctx, e)
	if err != nil {
		logger.Log.Error("Не удалось сохранить отчёт об ошибке", zap.Error(err), zap.String("source", source))
		return nil, err
	}
	logger.Log.Warn("Зарегистрирована ошибка",
		zap.Int64("id", saved.ID), zap.String("source", source), zap.String("code", saved.Code))

	if s.notify != nil && len(s.alertEmails) > 0 &&
		(source == models.ErrorSourceScraper || source == models.ErrorSourceVK) {
		s.notify(EmailJob{
			To:      s.alertEmails,
			Subject: "Ошибка сбора данных: " + saved.Code,
			Body:    helpers.BuildErrorAlertHTML(source, saved.Code, saved.Message, saved.Context, time.Now()),
			IsHTML:  true,
		})
	}
	return saved, nil
}

// ReportClient сохраняет отчёт, присланный фронтендом.
func (s *ErrorReportService) ReportClient(ctx context.Context, userID int, req *models.ErrorReportRequest) (*models.ErrorReport, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, validationf("пустое сообщение об ошибке")
	}
	details := map[string]any{}
	for k, v := range req.Context {
		details[k] = v
	}
	details["user_id"] = userID
	code := req.Code
	if code == "" {
		code = "client_error"
	}
	return s.Report(ctx, models.ErrorSourceClient, code, req.Message, details)
}

func (s *ErrorReportService) List(ctx context.Context, status string, limit, offset int) (*models.Page[*models.ErrorReport], error) {
	if status != "" && status != models.ErrorStatusOpen && status != models.ErrorStatusResolved {
		return nil, validationf("неизвестный статус %q", status)
	}
	items, total, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return pageOf(items, total, limit, offset), nil
}

func (s *ErrorReportService) Resolve(ctx context.Context, id int64) (*models.ErrorReport, error) {
	return s.repo.Resolve(ctx, id)
}
