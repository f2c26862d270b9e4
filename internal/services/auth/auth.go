// Package auth содержит бизнес-логику учетных записей: регистрацию,
// вход с отметкой о посещении, подтверждение почты и смену пароля.
// Письма не отправляются напрямую — задания публикуются в RabbitMQ.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/grocery-share/internal/lib/password"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/lib/token"
	"github.com/magabrotheeeer/grocery-share/internal/models"
	"github.com/magabrotheeeer/grocery-share/internal/rabbitmq"
	"github.com/magabrotheeeer/grocery-share/internal/storage"
)

// Срок действия токена сброса пароля.
const resetTokenTTL = time.Hour

// Ошибки бизнес-логики учетных записей.
var (
	// ErrEmailTaken — пользователь с такой почтой уже существует.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials — неверная пара почта/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified — почта пользователя не подтверждена.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrTokenInvalid — неизвестный или уже использованный токен.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истек.
	ErrTokenExpired = errors.New("token expired")
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, userUID string) error
	SetResetToken(ctx context.Context, userUID, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
	CreateCheckIn(ctx context.Context, userUID, email string) (int, error)
}

// Cache описывает методы для кэширования данных пользователя.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Publisher публикует задания на отправку писем.
type Publisher interface {
	Publish(exchange, routingkey string, message any) error
}

// AuthService реализует бизнес-логику учетных записей.
type AuthService struct {
	repo      UserRepository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo UserRepository, cache Cache, publisher Publisher, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Register создает неподтвержденного пользователя и публикует задание
// на письмо с подтверждением почты.
func (s *AuthService) Register(ctx context.Context, email, pass string) (string, error) {
	email = strings.ToLower(email)
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	hash, err := password.GetHash(pass)
	if err != nil {
		return "", err
	}
	verificationToken, err := token.New()
	if err != nil {
		return "", err
	}

	uid, err := s.repo.CreateUser(ctx, models.User{
		Email:             email,
		PasswordHash:      hash,
		VerificationToken: &verificationToken,
	})
	if err != nil {
		return "", err
	}
	s.log.Info("registered new user", slog.String("user_uid", uid))

	job := models.MailJob{
		Kind:  models.MailKindVerification,
		Email: email,
		Token: verificationToken,
	}
	if err := s.publisher.Publish(rabbitmq.MailExchange, rabbitmq.VerificationQueue, job); err != nil {
		s.log.Error("failed to publish verification mail job", sl.Err(err))
	}
	return uid, nil
}

// Login проверяет пару почта/пароль. Вход разрешен только с подтвержденной
// почтой; успешный вход записывает отметку о посещении.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if _, err := s.repo.CreateCheckIn(ctx, user.UID, user.Email); err != nil {
		s.log.Error("failed to record check-in", sl.Err(err))
	}
	s.log.Info("user logged in", slog.String("user_uid", user.UID))
	return user, nil
}

// VerifyEmail помечает почту пользователя подтвержденной по токену
// из письма. Повторный вызов с тем же токеном безопасен.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if err := s.repo.MarkEmailVerified(ctx, user.UID); err != nil {
		return err
	}
	s.log.Info("email verified", slog.String("user_uid", user.UID))
	return nil
}

// ForgotPassword сохраняет токен сброса пароля и публикует задание на письмо.
// Для неизвестной почты не возвращает ошибку, чтобы не раскрывать
// существование учетной записи.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	resetToken, err := token.New()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.UID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	job := models.MailJob{
		Kind:  models.MailKindPasswordReset,
		Email: user.Email,
		Token: resetToken,
	}
	if err := s.publisher.Publish(rabbitmq.MailExchange, rabbitmq.VerificationQueue, job); err != nil {
		s.log.Error("failed to publish password reset mail job", sl.Err(err))
	}
	s.log.Info("password reset token issued", slog.String("user_uid", user.UID))
	return nil
}

// ResetPassword меняет пароль по токену из письма и очищает токен.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.repo.GetUserByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		return ErrTokenExpired
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.UID, hash); err != nil {
		return err
	}
	s.invalidateUserCache(user.UID)
	s.log.Info("password reset completed", slog.String("user_uid", user.UID))
	return nil
}

// ChangePassword меняет пароль авторизованного пользователя
// после проверки текущего пароля.
func (s *AuthService) ChangePassword(ctx context.Context, userUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return err
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userUID, hash); err != nil {
		return err
	}
	s.invalidateUserCache(userUID)
	s.log.Info("password changed", slog.String("user_uid", userUID))
	return nil
}

// CurrentUser возвращает пользователя по uid сессии, используя кеш.
func (s *AuthService) CurrentUser(ctx context.Context, userUID string) (*models.User, error) {
	var cached models.User
	cacheKey := userCacheKey(userUID)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read user from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, user, 15*time.Minute); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), sl.Err(err))
	}
	return user, nil
}

func (s *AuthService) invalidateUserCache(userUID string) {
	if err := s.cache.Invalidate(userCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.Err(err))
	}
}

func userCacheKey(userUID string) string {
	return fmt.Sprintf("user:%s", userUID)
}
