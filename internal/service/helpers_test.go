package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/shestoi/GoShop/internal/service/mocks"
	platformkafka "github.com/shestoi/GoShop/platform/kafka"
)

var (
	adminActor = Actor{UserID: "admin-1", Role: "ADMIN"}
	userActor  = Actor{UserID: "user-1", Role: "USER"}
	topics     = platformkafka.DefaultConfig()
)

// defaultSettings мок настроек, который всегда отдаёт дефолт; overrides подменяют значения по ключу
func defaultSettings(t mock.TestingT, overrides map[string]any) *mocks.Settings {
	s := &mocks.Settings{}
	s.Mock.Test(t)
	s.On("String", mock.Anything, mock.Anything).Return(func(key string, def string) string {
		if v, ok := overrides[key].(string); ok {
			return v
		}
		return def
	}).Maybe()
	s.On("Int", mock.Anything, mock.Anything).Return(func(key string, def int64) int64 {
		if v, ok := overrides[key].(int64); ok {
			return v
		}
		return def
	}).Maybe()
	s.On("Bool", mock.Anything, mock.Anything).Return(func(key string, def bool) bool {
		if v, ok := overrides[key].(bool); ok {
			return v
		}
		return def
	}).Maybe()
	s.On("Decimal", mock.Anything, mock.Anything).Return(func(key string, def decimal.Decimal) decimal.Decimal {
		if v, ok := overrides[key].(decimal.Decimal); ok {
			return v
		}
		return def
	}).Maybe()
	s.On("Duration", mock.Anything, mock.Anything).Return(func(key string, def time.Duration) time.Duration {
		if v, ok := overrides[key].(time.Duration); ok {
			return v
		}
		return def
	}).Maybe()
	return s
}

// quietAuditor принимает любые записи аудита
func quietAuditor(t mock.TestingT) *mocks.Auditor {
	a := &mocks.Auditor{}
	a.Mock.Test(t)
	a.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	return a
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
