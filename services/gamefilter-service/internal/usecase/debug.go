package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
)

// AllCategories selects every log category in a pull.
const AllCategories = "ALL"

// DebugUsecase stores and queries client debug logs.
type DebugUsecase interface {
	Push(ctx context.Context, user *model.User, params PushParams) error
	Pull(ctx context.Context, params PullParams) ([]UserLogs, error)
}

// PushParams is a single log submitted by a client.
type PushParams struct {
	Category string
	Message  string
}

// PullParams filters a pull. No emails means every user; no categories, or
// AllCategories first, means every category.
type PullParams struct {
	Emails     []string
	Categories []string
}

// UserLogs groups the logs of one user.
type UserLogs struct {
	User string    `json:"user"`
	Logs []LogLine `json:"logs"`
}

// LogLine is a log without its owner.
type LogLine struct {
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Message  string    `json:"message"`
}

var (
	ErrBadCategory = errors.New("bad log category")
	ErrBadMessage  = errors.New("empty log message")
)

type debugUsecase struct {
	userRepo     repository.UserRepository
	logEntryRepo repository.LogEntryRepository
	now          func() time.Time
}

func NewDebugUsecase(userRepo repository.UserRepository, logEntryRepo repository.LogEntryRepository) DebugUsecase {
	return &debugUsecase{
		userRepo:     userRepo,
		logEntryRepo: logEntryRepo,
		now:          time.Now,
	}
}

func (u *debugUsecase) Push(ctx context.Context, user *model.User, params PushParams) error {
	if !slices.Contains(model.LogCategories, params.Category) {
		return ErrBadCategory
	}
	if strings.TrimSpace(params.Message) == "" {
		return ErrBadMessage
	}

	_, err := u.logEntryRepo.CreateLogEntry(ctx, &model.LogEntry{
		User:     user.Email,
		Date:     u.now(),
		Category: params.Category,
		Message:  params.Message,
	})
	return err
}

func (u *debugUsecase) Pull(ctx context.Context, params PullParams) ([]UserLogs, error) {
	categories := pullCategories(params.Categories)
	if len(categories) == 0 {
		return []UserLogs{}, nil
	}

	emails := make([]string, 0, len(params.Emails))
	for _, email := range params.Emails {
		if email = strings.TrimSpace(email); email != "" {
			emails = append(emails, email)
		}
	}
	if len(emails) == 0 {
		all, err := u.userRepo.ListEmails(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return []UserLogs{}, nil
		}
		emails = all
	}

	entries, err := u.logEntryRepo.ListLogEntries(ctx, repository.LogEntryFilter{
		Users:      emails,
		Categories: categories,
	})
	if err != nil {
		return nil, err
	}

	return groupLogs(entries), nil
}

func pullCategories(requested []string) []string {
	if len(requested) == 0 || requested[0] == AllCategories {
		return model.LogCategories
	}

	categories := make([]string, 0, len(requested))
	for _, c := range requested {
		if slices.Contains(model.LogCategories, c) {
			categories = append(categories, c)
		}
	}
	return categories
}

// groupLogs keeps the order of entries within each user.
func groupLogs(entries []model.LogEntry) []UserLogs {
	byUser := map[string]*UserLogs{}
	for _, e := range entries {
		group, ok := byUser[e.User]
		if !ok {
			group = &UserLogs{User: e.User}
			byUser[e.User] = group
		}
		group.Logs = append(group.Logs, LogLine{Category: e.Category, Date: e.Date, Message: e.Message})
	}

	result := make([]UserLogs, 0, len(byUser))
	for _, group := range byUser {
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].User < result[j].User })

	return result
}
