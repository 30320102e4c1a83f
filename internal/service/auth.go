package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shestoi/GoShop/internal/repository"
	"github.com/shestoi/GoShop/internal/token"
)

// Ключи настроек авторизации
const (
	SettingOTPResendInterval       = "auth.otp_resend_interval"
	SettingGlobalTokenRotateBefore = "auth.global_token_rotate_before"
)

const otpDigits = 6

// AuthOptions параметры из конфигурации
type AuthOptions struct {
	SessionTTL        time.Duration
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendInterval time.Duration
	RotateBefore      time.Duration
	AdminPhones       []string
}

// AuthService вход по телефону и одноразовому коду, сессии и GLOBAL токен
type AuthService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	sessions repository.SessionRepository
	otps     repository.OTPRepository
	orders   repository.OrderRepository
	catalog  repository.CatalogRepository
	sms      SMSSender
	tokens   *token.Manager
	settings Settings
	opts     AuthOptions
	admins   map[string]struct{}
	now      func() time.Time
	genCode  func() (string, error)
}

// NewAuthService создаёт новый экземпляр AuthService
func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	otps repository.OTPRepository,
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	sms SMSSender,
	tokens *token.Manager,
	settings Settings,
	opts AuthOptions,
) *AuthService {
	admins := make(map[string]struct{}, len(opts.AdminPhones))
	for _, p := range opts.AdminPhones {
		if phone, err := NormalizePhone(p); err == nil {
			admins[phone] = struct{}{}
		} else {
			logger.Warn("skip invalid admin phone", zap.String("phone", p))
		}
	}
	return &AuthService{
		logger:   logger,
		users:    users,
		sessions: sessions,
		otps:     otps,
		orders:   orders,
		catalog:  catalog,
		sms:      sms,
		tokens:   tokens,
		settings: settings,
		opts:     opts,
		admins:   admins,
		now:      time.Now,
		genCode:  generateCode,
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// RequestOTP отправляет одноразовый код; повторный запрос раньше интервала: ErrOTPTooFrequent
func (s *AuthService) RequestOTP(ctx context.Context, rawPhone string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return err
	}

	// Блокировка переживает удаление кода: сброс после лимита попыток
	// не открывает повторную отправку раньше интервала
	resend := s.settings.Duration(SettingOTPResendInterval, s.opts.OTPResendInterval)
	acquired, err := s.otps.AcquireResendLock(ctx, phone, resend)
	if err != nil {
		return fmt.Errorf("acquire otp resend lock: %w", err)
	}
	if !acquired {
		return ErrOTPTooFrequent
	}

	if err := s.issueOTP(ctx, phone); err != nil {
		// код не доставлен, повторный запрос не должен упираться в интервал
		if relErr := s.otps.ReleaseResendLock(ctx, phone); relErr != nil {
			s.logger.Warn("failed to release otp resend lock", zap.Error(relErr))
		}
		return err
	}

	s.logger.Info("otp sent", zap.String("phone", maskPhone(phone)))
	return nil
}

// issueOTP генерирует код, сохраняет его хеш и отправляет SMS
func (s *AuthService) issueOTP(ctx context.Context, phone string) error {
	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	if err := s.otps.Save(ctx, repository.OTPCode{
		Phone:     phone,
		CodeHash:  string(hash),
		CreatedAt: s.now(),
	}, s.opts.OTPTTL); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	if err := s.sms.Send(ctx, phone, fmt.Sprintf("GoShop code: %s", code)); err != nil {
		if delErr := s.otps.Delete(ctx, phone); delErr != nil {
			s.logger.Warn("failed to delete undelivered otp", zap.Error(delErr))
		}
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// LoginOutput результат успешного входа
type LoginOutput struct {
	User        repository.User
	SessionID   string
	GlobalToken string
	Claims      token.Claims
}

// VerifyOTP проверяет код, находит или создаёт пользователя и открывает сессию
func (s *AuthService) VerifyOTP(ctx context.Context, rawPhone, code string) (*LoginOutput, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	if len(code) != otpDigits {
		return nil, ErrOTPInvalid
	}

	otp, err := s.otps.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, fmt.Errorf("get otp: %w", err)
	}
	if otp.Attempts >= s.opts.OTPMaxAttempts {
		_ = s.otps.Delete(ctx, phone)
		return nil, ErrOTPTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		attempts, err := s.otps.IncrementAttempts(ctx, phone)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrOTPInvalid
			}
			return nil, fmt.Errorf("increment otp attempts: %w", err)
		}
		s.logger.Warn("invalid otp attempt", zap.String("phone", maskPhone(phone)), zap.Int("attempts", attempts))
		if attempts >= s.opts.OTPMaxAttempts {
			_ = s.otps.Delete(ctx, phone)
			return nil, ErrOTPTooManyAttempts
		}
		return nil, ErrOTPInvalid
	}

	if err := s.otps.Delete(ctx, phone); err != nil {
		return nil, fmt.Errorf("delete otp: %w", err)
	}

	user, err := s.findOrCreateUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := repository.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, session, s.opts.SessionTTL); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	raw, claims, _, err := s.EnsureGlobalToken(ctx, user, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return &LoginOutput{
		User:        user,
		SessionID:   session.ID,
		GlobalToken: raw,
		Claims:      claims,
	}, nil
}

func (s *AuthService) findOrCreateUser(ctx context.Context, phone string) (repository.User, error) {
	_, isAdmin := s.admins[phone]

	user, err := s.users.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		role := repository.RoleUser
		if isAdmin {
			role = repository.RoleAdmin
		}
		err = s.users.CreateUser(ctx, repository.User{Phone: phone, Role: role, CreatedAt: s.now()})
		if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			return repository.User{}, fmt.Errorf("create user: %w", err)
		}
		user, err = s.users.GetByPhone(ctx, phone)
		if err == nil {
			s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
		}
	}
	if err != nil {
		return repository.User{}, fmt.Errorf("get user: %w", err)
	}

	if isAdmin && user.Role != repository.RoleAdmin {
		if err := s.users.UpdateRole(ctx, user.ID, repository.RoleAdmin); err != nil {
			return repository.User{}, fmt.Errorf("promote admin: %w", err)
		}
		user.Role = repository.RoleAdmin
	}
	return user, nil
}

// Authenticate проверяет сессию, продлевает её TTL и возвращает пользователя
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (repository.User, error) {
	if sessionID == "" {
		return repository.User{}, ErrUnauthorized
	}
	if err := s.sessions.Touch(ctx, sessionID, s.opts.SessionTTL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, ErrUnauthorized
		}
		return repository.User{}, fmt.Errorf("touch session: %w", err)
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, ErrUnauthorized
		}
		return repository.User{}, fmt.Errorf("get session: %w", err)
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.sessions.Delete(ctx, sessionID)
			return repository.User{}, ErrUnauthorized
		}
		return repository.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// EnsureGlobalToken возвращает текущий токен, если он валиден для пользователя и не истекает
// в ближайшее время; иначе выпускает новый со свежими счётчиками (rotated == true)
func (s *AuthService) EnsureGlobalToken(ctx context.Context, user repository.User, current string) (string, token.Claims, bool, error) {
	rotateBefore := s.settings.Duration(SettingGlobalTokenRotateBefore, s.opts.RotateBefore)
	if claims, err := s.tokens.Parse(current); err == nil &&
		claims.Subject == user.ID &&
		claims.Role == string(user.Role) &&
		!s.tokens.ExpiresWithin(claims, rotateBefore) {
		return current, claims, false, nil
	}

	counts, err := s.Counts(ctx, user)
	if err != nil {
		return "", token.Claims{}, false, err
	}
	raw, claims, err := s.tokens.Issue(user.ID, string(user.Role), counts)
	if err != nil {
		return "", token.Claims{}, false, err
	}
	s.logger.Debug("global token rotated", zap.String("user_id", user.ID))
	return raw, claims, true, nil
}

// Counts счётчики для GLOBAL токена: открытые заказы, для админа ещё и товары с низким остатком
func (s *AuthService) Counts(ctx context.Context, user repository.User) (token.Counts, error) {
	var counts token.Counts
	orders, err := s.orders.CountOpenByUser(ctx, user.ID)
	if err != nil {
		return token.Counts{}, fmt.Errorf("count open orders: %w", err)
	}
	counts.Orders = orders
	if user.Role == repository.RoleAdmin {
		threshold := s.settings.Int(SettingLowStockThreshold, DefaultLowStockThreshold)
		low, err := s.catalog.CountLowStock(ctx, threshold)
		if err != nil {
			return token.Counts{}, fmt.Errorf("count low stock: %w", err)
		}
		counts.LowStock = low
	}
	return counts, nil
}

// Logout удаляет сессию; отсутствующая сессия не ошибка
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// maskPhone оставляет последние 4 цифры
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
