// Package sync реализует одностороннюю выгрузку подписок в Google Sheets.
//
// Лист — производная проекция базы: каждая подписка занимает одну строку,
// строки без соответствующей подписки помечаются как inactive, но не удаляются.
// Ошибки отдельных строк логируются и не прерывают выгрузку.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/models"
	"github.com/magabrotheeeer/grocery-share/internal/sheets"
)

// Раскладка колонок листа. Колонка статуса должна существовать в каждой
// строке, которую мы переписываем, поэтому её индекс используется для паддинга.
const (
	userIDColumn = 0
	emailColumn  = 1
	statusColumn = 5
	totalColumns = 11
)

// SubscriptionRepository определяет методы чтения подписок и отметок о входе.
type SubscriptionRepository interface {
	// ListAllSubscriptions возвращает все подписки, новые первыми.
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	// CountCheckInsByUser возвращает количество входов по каждому пользователю.
	CountCheckInsByUser(ctx context.Context) (map[string]int, error)
}

// Result содержит итоги одной выгрузки.
type Result struct {
	Synced         int // Количество выгруженных подписок
	MarkedInactive int // Количество строк, помеченных как inactive
}

// Service реализует логику сверки базы и листа.
type Service struct {
	repo  SubscriptionRepository
	sheet sheets.Api
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo SubscriptionRepository, sheet sheets.Api, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		sheet: sheet,
		log:   log,
	}
}

// Run выполняет одну полную сверку: читает подписки и лист, помечает
// осиротевшие строки, обновляет совпавшие и дописывает новые.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	const op = "sync.Run"

	subs, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("fetched subscriptions for sync", slog.Int("count", len(subs)))

	checkIns, err := s.repo.CountCheckInsByUser(ctx)
	if err != nil {
		s.log.Warn("failed to count check-ins, continuing without them", sl.Err(err))
		checkIns = map[string]int{}
	}

	existingRows, err := s.sheet.Read(ctx)
	if err != nil {
		// Пустой или недоступный лист не останавливает выгрузку,
		// но ошибка доступа к таблице — останавливает.
		if hint := ClassifyError(err); hint != "" {
			return nil, fmt.Errorf("%s: %s: %w", op, hint, err)
		}
		s.log.Info("no existing rows in sheet", sl.Err(err))
		existingRows = nil
	}
	s.log.Info("fetched existing sheet rows", slog.Int("count", len(existingRows)))

	knownIDs := make(map[string]struct{}, len(subs))
	emailToUID := make(map[string]string, len(subs))
	for _, sub := range subs {
		id := subscriptionKey(sub)
		knownIDs[id] = struct{}{}
		if sub.Email != "" {
			emailToUID[strings.ToLower(sub.Email)] = id
		}
	}

	markedInactive := s.markOrphanedRows(ctx, existingRows, knownIDs, emailToUID)

	today := Midnight(time.Now())
	var rowsToAppend [][]string
	claimed := make(map[int]bool, len(existingRows))
	for _, sub := range subs {
		row := BuildRow(sub, checkIns[sub.UserUID], today)
		idx := findExistingRow(existingRows, claimed, row)
		if idx >= 0 {
			claimed[idx] = true
			if err := s.sheet.UpdateRow(ctx, idx, row); err != nil {
				s.log.Error("failed to update sheet row",
					slog.Int("row", idx), slog.String("user_uid", row[userIDColumn]), sl.Err(err))
			}
			continue
		}
		rowsToAppend = append(rowsToAppend, row)
	}

	if len(rowsToAppend) > 0 {
		if err := s.sheet.Write(ctx, rowsToAppend, len(existingRows)); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, ClassifyError(err), err)
		}
		s.log.Info("appended new sheet rows", slog.Int("count", len(rowsToAppend)))
	}

	return &Result{
		Synced:         len(subs),
		MarkedInactive: markedInactive,
	}, nil
}

// markOrphanedRows помечает строки без подписки в базе как inactive,
// попутно приводя строки старой раскладки (почта в первой колонке)
// к текущей. Возвращает количество помеченных строк.
func (s *Service) markOrphanedRows(ctx context.Context, rows [][]string, knownIDs map[string]struct{}, emailToUID map[string]string) int {
	marked := 0
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}

		rowUserID := strings.TrimSpace(row[userIDColumn])
		legacy := rowUserID == "" || strings.Contains(rowUserID, "@")
		if legacy {
			rowEmail := rowUserID
			if rowEmail == "" && len(row) > emailColumn {
				rowEmail = strings.TrimSpace(row[emailColumn])
			}
			if rowEmail == "" {
				continue
			}
			rowUserID = emailToUID[strings.ToLower(rowEmail)]
		}
		if rowUserID != "" {
			if _, ok := knownIDs[rowUserID]; ok {
				continue
			}
		}

		updated := make([]string, len(row))
		copy(updated, row)
		if strings.Contains(updated[0], "@") {
			// Старая раскладка: почта первой колонкой, uid отсутствует.
			// Без приведения к текущей раскладке статус попал бы в чужую
			// колонку, поэтому uid подставляется даже пустым.
			updated = append([]string{rowUserID}, updated...)
		}
		for len(updated) <= statusColumn {
			updated = append(updated, "")
		}
		updated[statusColumn] = models.StatusInactive

		if err := s.sheet.UpdateRow(ctx, i, updated); err != nil {
			s.log.Error("failed to mark row inactive", slog.Int("row", i), sl.Err(err))
			continue
		}
		rows[i] = updated
		marked++
		s.log.Info("marked orphaned row inactive", slog.Int("row", i))
	}
	return marked
}

// rowView — нормализованное представление строки листа. В старой раскладке
// почта стоит первой колонкой и даты сдвинуты на одну позицию влево.
type rowView struct {
	userID string
	email  string
	start  string
	end    string
}

func viewRow(row []string) rowView {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	first := cell(0)
	if strings.Contains(first, "@") {
		return rowView{email: strings.ToLower(first), start: cell(1), end: cell(2)}
	}
	return rowView{userID: first, email: strings.ToLower(cell(1)), start: cell(2), end: cell(3)}
}

// findExistingRow ищет строку листа для подписки. Сначала точное совпадение
// по (uid, даты), затем по (почта, даты). Голое совпадение по uid принимается
// только для строк без пригодных дат, каждая строка занимается один раз.
func findExistingRow(rows [][]string, claimed map[int]bool, target []string) int {
	userID := target[userIDColumn]
	email := strings.ToLower(target[emailColumn])
	start, end := target[2], target[3]

	for i, row := range rows {
		if claimed[i] || len(row) == 0 {
			continue
		}
		v := viewRow(row)
		if v.userID == userID && v.start == start && v.end == end {
			return i
		}
	}
	for i, row := range rows {
		if claimed[i] || len(row) == 0 {
			continue
		}
		v := viewRow(row)
		if v.email != "" && v.email == email && v.start == start && v.end == end {
			return i
		}
	}
	for i, row := range rows {
		if claimed[i] || len(row) == 0 {
			continue
		}
		v := viewRow(row)
		if v.userID == userID && v.start == "" && v.end == "" {
			return i
		}
	}
	return -1
}

// BuildRow формирует строку листа для подписки в текущей раскладке.
func BuildRow(sub *models.Subscription, checkIns int, today time.Time) []string {
	row := make([]string, 0, totalColumns)
	row = append(row,
		subscriptionKey(sub),
		sub.Email,
		sub.StartDate.Format("2006-01-02"),
		formatDate(sub.EndDate),
		formatDate(sub.RenewalDate),
		sub.Status,
	)
	planType := ""
	if sub.PlanType != nil {
		planType = *sub.PlanType
	}
	row = append(row,
		planType,
		DaysRemaining(sub.EndDate, today),
		strconv.Itoa(checkIns),
		sub.CreatedAt.Format("2006-01-02 15:04:05"),
		sub.UpdatedAt.Format("2006-01-02 15:04:05"),
	)
	return row
}

// DaysRemaining возвращает число оставшихся дней подписки строкой.
// Для истекшей подписки — "Expired", для бессрочной — "Unlimited".
func DaysRemaining(endDate *time.Time, today time.Time) string {
	if endDate == nil {
		return "Unlimited"
	}
	days := int(math.Ceil(Midnight(*endDate).Sub(Midnight(today)).Hours() / 24))
	if days < 0 {
		return "Expired"
	}
	return strconv.Itoa(days)
}

// Midnight обнуляет время суток, сохраняя дату.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ClassifyError переводит типичные ошибки Google Sheets API в подсказку
// для оператора. Возвращает пустую строку для нераспознанных ошибок.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "PERMISSION_DENIED") || strings.Contains(msg, "does not have permission"):
		return "service account has no access to the spreadsheet"
	case strings.Contains(msg, "Unable to parse range"):
		return "sheet name or range is invalid"
	case strings.Contains(msg, "Requested entity was not found") || strings.Contains(msg, "notFound"):
		return "spreadsheet not found, check the spreadsheet id"
	case strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "Invalid JWT"):
		return "invalid service account credentials"
	default:
		return ""
	}
}

// subscriptionKey возвращает идентификатор подписки для листа:
// uid пользователя, для старых записей без uid — числовой id.
func subscriptionKey(sub *models.Subscription) string {
	if sub.UserUID != "" {
		return sub.UserUID
	}
	return strconv.Itoa(sub.ID)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
