package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shestoi/GoShop/internal/repository"
	repoMocks "github.com/shestoi/GoShop/internal/repository/mocks"
	"github.com/shestoi/GoShop/internal/service/mocks"
	"github.com/shestoi/GoShop/internal/token"
)

type authDeps struct {
	users    *repoMocks.UserRepository
	sessions *repoMocks.SessionRepository
	otps     *repoMocks.OTPRepository
	orders   *repoMocks.OrderRepository
	catalog  *repoMocks.CatalogRepository
	sms      *mocks.SMSSender
	tokens   *token.Manager
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestAuthService(t *testing.T) (*AuthService, authDeps) {
	d := authDeps{
		users:    repoMocks.NewUserRepository(t),
		sessions: repoMocks.NewSessionRepository(t),
		otps:     repoMocks.NewOTPRepository(t),
		orders:   repoMocks.NewOrderRepository(t),
		catalog:  repoMocks.NewCatalogRepository(t),
		sms:      mocks.NewSMSSender(t),
		tokens:   token.NewManager("0123456789abcdef-test", time.Hour),
	}
	svc := NewAuthService(zap.NewNop(), d.users, d.sessions, d.otps, d.orders, d.catalog, d.sms, d.tokens,
		defaultSettings(t, nil), AuthOptions{
			SessionTTL:        720 * time.Hour,
			OTPTTL:            5 * time.Minute,
			OTPMaxAttempts:    3,
			OTPResendInterval: time.Minute,
			RotateBefore:      5 * time.Minute,
			AdminPhones:       []string{"+7 (999) 000-00-01"},
		})
	svc.now = func() time.Time { return testNow }
	svc.genCode = func() (string, error) { return "123456", nil }
	return svc, d
}

func hashCode(t *testing.T, code string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_RequestOTP(t *testing.T) {
	ctx := context.Background()
	const phone = "+79990001122"

	t.Run("sends new code", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("AcquireResendLock", ctx, phone, time.Minute).Return(true, nil).Once()
		d.otps.On("Save", ctx, mock.MatchedBy(func(c repository.OTPCode) bool {
			return c.Phone == phone && c.Attempts == 0 &&
				bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte("123456")) == nil
		}), 5*time.Minute).Return(nil).Once()
		d.sms.On("Send", ctx, phone, "GoShop code: 123456").Return(nil).Once()

		require.NoError(t, svc.RequestOTP(ctx, "+7 (999) 000-11-22"))
	})

	t.Run("too frequent", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("AcquireResendLock", ctx, phone, time.Minute).Return(false, nil).Once()

		err := svc.RequestOTP(ctx, phone)
		require.ErrorIs(t, err, ErrOTPTooFrequent)
	})

	t.Run("lock error", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("AcquireResendLock", ctx, phone, time.Minute).Return(false, errors.New("redis down")).Once()

		err := svc.RequestOTP(ctx, phone)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrOTPTooFrequent)
	})

	t.Run("sms failure drops the code and the lock", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("AcquireResendLock", ctx, phone, time.Minute).Return(true, nil).Once()
		d.otps.On("Save", ctx, mock.Anything, 5*time.Minute).Return(nil).Once()
		d.sms.On("Send", ctx, phone, mock.Anything).Return(errors.New("gateway down")).Once()
		d.otps.On("Delete", ctx, phone).Return(nil).Once()
		d.otps.On("ReleaseResendLock", ctx, phone).Return(nil).Once()

		err := svc.RequestOTP(ctx, phone)
		require.Error(t, err)
		require.Contains(t, err.Error(), "gateway down")
	})

	t.Run("save failure releases the lock", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("AcquireResendLock", ctx, phone, time.Minute).Return(true, nil).Once()
		d.otps.On("Save", ctx, mock.Anything, 5*time.Minute).Return(errors.New("redis down")).Once()
		d.otps.On("ReleaseResendLock", ctx, phone).Return(nil).Once()

		require.Error(t, svc.RequestOTP(ctx, phone))
	})

	t.Run("interval from settings", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		svc.settings = defaultSettings(t, map[string]any{SettingOTPResendInterval: 90 * time.Second})
		d.otps.On("AcquireResendLock", ctx, phone, 90*time.Second).Return(true, nil).Once()
		d.otps.On("Save", ctx, mock.Anything, 5*time.Minute).Return(nil).Once()
		d.sms.On("Send", ctx, phone, mock.Anything).Return(nil).Once()

		require.NoError(t, svc.RequestOTP(ctx, phone))
	})

	t.Run("invalid phone", func(t *testing.T) {
		svc, _ := newTestAuthService(t)
		require.ErrorIs(t, svc.RequestOTP(ctx, "12ab"), ErrValidation)
	})
}

// После исчерпания попыток код удаляется, но повторная отправка
// всё равно ждёт интервал
func TestAuthService_RequestOTP_AfterLockout(t *testing.T) {
	ctx := context.Background()
	const phone = "+79990001122"
	svc, d := newTestAuthService(t)

	d.otps.On("Get", ctx, phone).Return(repository.OTPCode{Phone: phone, CodeHash: hashCode(t, "123456"), Attempts: 2}, nil).Once()
	d.otps.On("IncrementAttempts", ctx, phone).Return(3, nil).Once()
	d.otps.On("Delete", ctx, phone).Return(nil).Once()
	_, err := svc.VerifyOTP(ctx, phone, "000000")
	require.ErrorIs(t, err, ErrOTPTooManyAttempts)

	d.otps.On("AcquireResendLock", ctx, phone, time.Minute).Return(false, nil).Once()
	err = svc.RequestOTP(ctx, phone)
	require.ErrorIs(t, err, ErrOTPTooFrequent)

	d.otps.AssertNotCalled(t, "ReleaseResendLock", mock.Anything, mock.Anything)
	d.otps.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	d.sms.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_VerifyOTP(t *testing.T) {
	ctx := context.Background()
	const phone = "+79990001122"

	t.Run("creates user and session", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("Get", ctx, phone).Return(repository.OTPCode{Phone: phone, CodeHash: hashCode(t, "123456")}, nil).Once()
		d.otps.On("Delete", ctx, phone).Return(nil).Once()
		d.users.On("GetByPhone", ctx, phone).Return(repository.User{}, repository.ErrNotFound).Once()
		d.users.On("CreateUser", ctx, mock.MatchedBy(func(u repository.User) bool {
			return u.Phone == phone && u.Role == repository.RoleUser
		})).Return(nil).Once()
		d.users.On("GetByPhone", ctx, phone).Return(repository.User{ID: "u-1", Phone: phone, Role: repository.RoleUser}, nil).Once()
		d.sessions.On("Create", ctx, mock.MatchedBy(func(s repository.Session) bool {
			return s.UserID == "u-1" && s.ID != ""
		}), 720*time.Hour).Return(nil).Once()
		d.orders.On("CountOpenByUser", ctx, "u-1").Return(int64(2), nil).Once()

		out, err := svc.VerifyOTP(ctx, phone, "123456")
		require.NoError(t, err)
		require.Equal(t, "u-1", out.User.ID)
		require.NotEmpty(t, out.SessionID)

		claims, err := d.tokens.Parse(out.GlobalToken)
		require.NoError(t, err)
		require.Equal(t, "u-1", claims.Subject)
		require.Equal(t, "USER", claims.Role)
		require.Equal(t, int64(2), claims.Counts.Orders)
		require.Zero(t, claims.Counts.LowStock)
	})

	t.Run("admin phone is promoted", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		const admin = "+79990000001"
		d.otps.On("Get", ctx, admin).Return(repository.OTPCode{Phone: admin, CodeHash: hashCode(t, "123456")}, nil).Once()
		d.otps.On("Delete", ctx, admin).Return(nil).Once()
		d.users.On("GetByPhone", ctx, admin).Return(repository.User{ID: "u-9", Phone: admin, Role: repository.RoleUser}, nil).Once()
		d.users.On("UpdateRole", ctx, "u-9", repository.RoleAdmin).Return(nil).Once()
		d.sessions.On("Create", ctx, mock.Anything, 720*time.Hour).Return(nil).Once()
		d.orders.On("CountOpenByUser", ctx, "u-9").Return(int64(0), nil).Once()
		d.catalog.On("CountLowStock", ctx, int64(DefaultLowStockThreshold)).Return(int64(4), nil).Once()

		out, err := svc.VerifyOTP(ctx, admin, "123456")
		require.NoError(t, err)
		require.Equal(t, repository.RoleAdmin, out.User.Role)
		require.Equal(t, int64(4), out.Claims.Counts.LowStock)
	})

	t.Run("wrong code increments attempts", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("Get", ctx, phone).Return(repository.OTPCode{Phone: phone, CodeHash: hashCode(t, "123456")}, nil).Once()
		d.otps.On("IncrementAttempts", ctx, phone).Return(1, nil).Once()

		_, err := svc.VerifyOTP(ctx, phone, "654321")
		require.ErrorIs(t, err, ErrOTPInvalid)
	})

	t.Run("last wrong attempt deletes code", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("Get", ctx, phone).Return(repository.OTPCode{Phone: phone, CodeHash: hashCode(t, "123456"), Attempts: 2}, nil).Once()
		d.otps.On("IncrementAttempts", ctx, phone).Return(3, nil).Once()
		d.otps.On("Delete", ctx, phone).Return(nil).Once()

		_, err := svc.VerifyOTP(ctx, phone, "000000")
		require.ErrorIs(t, err, ErrOTPTooManyAttempts)
	})

	t.Run("exhausted attempts", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("Get", ctx, phone).Return(repository.OTPCode{Phone: phone, CodeHash: hashCode(t, "123456"), Attempts: 3}, nil).Once()
		d.otps.On("Delete", ctx, phone).Return(nil).Once()

		_, err := svc.VerifyOTP(ctx, phone, "123456")
		require.ErrorIs(t, err, ErrOTPTooManyAttempts)
	})

	t.Run("no code", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.otps.On("Get", ctx, phone).Return(repository.OTPCode{}, repository.ErrNotFound).Once()

		_, err := svc.VerifyOTP(ctx, phone, "123456")
		require.ErrorIs(t, err, ErrOTPInvalid)
	})

	t.Run("malformed code", func(t *testing.T) {
		svc, _ := newTestAuthService(t)
		_, err := svc.VerifyOTP(ctx, phone, "12")
		require.ErrorIs(t, err, ErrOTPInvalid)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.sessions.On("Touch", ctx, "s-1", 720*time.Hour).Return(nil).Once()
		d.sessions.On("Get", ctx, "s-1").Return(repository.Session{ID: "s-1", UserID: "u-1"}, nil).Once()
		d.users.On("GetByID", ctx, "u-1").Return(repository.User{ID: "u-1", Role: repository.RoleUser}, nil).Once()

		u, err := svc.Authenticate(ctx, "s-1")
		require.NoError(t, err)
		require.Equal(t, "u-1", u.ID)
	})

	t.Run("expired session", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.sessions.On("Touch", ctx, "s-1", 720*time.Hour).Return(repository.ErrNotFound).Once()

		_, err := svc.Authenticate(ctx, "s-1")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("deleted user drops session", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.sessions.On("Touch", ctx, "s-1", 720*time.Hour).Return(nil).Once()
		d.sessions.On("Get", ctx, "s-1").Return(repository.Session{ID: "s-1", UserID: "u-1"}, nil).Once()
		d.users.On("GetByID", ctx, "u-1").Return(repository.User{}, repository.ErrNotFound).Once()
		d.sessions.On("Delete", ctx, "s-1").Return(nil).Once()

		_, err := svc.Authenticate(ctx, "s-1")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("empty session id", func(t *testing.T) {
		svc, _ := newTestAuthService(t)
		_, err := svc.Authenticate(ctx, "")
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_EnsureGlobalToken(t *testing.T) {
	ctx := context.Background()
	user := repository.User{ID: "u-1", Role: repository.RoleUser}

	t.Run("keeps fresh token", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		current, _, err := d.tokens.Issue("u-1", "USER", token.Counts{Orders: 1})
		require.NoError(t, err)

		raw, _, rotated, err := svc.EnsureGlobalToken(ctx, user, current)
		require.NoError(t, err)
		require.False(t, rotated)
		require.Equal(t, current, raw)
	})

	t.Run("rotates missing token", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		d.orders.On("CountOpenByUser", ctx, "u-1").Return(int64(3), nil).Once()

		raw, claims, rotated, err := svc.EnsureGlobalToken(ctx, user, "")
		require.NoError(t, err)
		require.True(t, rotated)
		require.NotEmpty(t, raw)
		require.Equal(t, int64(3), claims.Counts.Orders)
	})

	t.Run("rotates token of another user", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		foreign, _, err := d.tokens.Issue("u-2", "USER", token.Counts{})
		require.NoError(t, err)
		d.orders.On("CountOpenByUser", ctx, "u-1").Return(int64(0), nil).Once()

		_, claims, rotated, err := svc.EnsureGlobalToken(ctx, user, foreign)
		require.NoError(t, err)
		require.True(t, rotated)
		require.Equal(t, "u-1", claims.Subject)
	})

	t.Run("rotates token close to expiry", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		short := token.NewManager("0123456789abcdef-test", 2*time.Minute)
		current, _, err := short.Issue("u-1", "USER", token.Counts{})
		require.NoError(t, err)
		d.orders.On("CountOpenByUser", ctx, "u-1").Return(int64(0), nil).Once()

		raw, _, rotated, err := svc.EnsureGlobalToken(ctx, user, current)
		require.NoError(t, err)
		require.True(t, rotated)
		require.NotEqual(t, current, raw)
	})

	t.Run("rotates token after role change", func(t *testing.T) {
		svc, d := newTestAuthService(t)
		current, _, err := d.tokens.Issue("u-1", "USER", token.Counts{})
		require.NoError(t, err)
		admin := repository.User{ID: "u-1", Role: repository.RoleAdmin}
		d.orders.On("CountOpenByUser", ctx, "u-1").Return(int64(0), nil).Once()
		d.catalog.On("CountLowStock", ctx, int64(DefaultLowStockThreshold)).Return(int64(1), nil).Once()

		_, claims, rotated, err := svc.EnsureGlobalToken(ctx, admin, current)
		require.NoError(t, err)
		require.True(t, rotated)
		require.Equal(t, "ADMIN", claims.Role)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, d := newTestAuthService(t)
	d.sessions.On("Delete", ctx, "s-1").Return(nil).Once()

	require.NoError(t, svc.Logout(ctx, "s-1"))
	require.NoError(t, svc.Logout(ctx, ""))
}

func TestMaskPhone(t *testing.T) {
	require.Equal(t, "****1122", maskPhone("+79990001122"))
	require.Equal(t, "****", maskPhone("+12"))
}
