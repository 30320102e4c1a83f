package repository

import (
	"context"
	"time"
)

// SettingType тип значения настройки
type SettingType string

const (
	SettingString   SettingType = "string"
	SettingInt      SettingType = "int"
	SettingBool     SettingType = "bool"
	SettingDecimal  SettingType = "decimal"
	SettingDuration SettingType = "duration"
)

// Setting типизированная настройка; Value хранится строкой
type Setting struct {
	Key         string
	Type        SettingType
	Value       string
	Description string
	UpdatedAt   time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SettingRepository --dir=. --output=./mocks --outpkg=mocks

// SettingRepository хранилище настроек
type SettingRepository interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (Setting, error)
	Upsert(ctx context.Context, s Setting) (Setting, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SettingsBroadcaster --dir=. --output=./mocks --outpkg=mocks

// SettingsBroadcaster рассылает сигнал перечитать настройки всем инстансам
type SettingsBroadcaster interface {
	Publish(ctx context.Context) error
	// Subscribe вызывает onReload на каждое сообщение до отмены ctx
	Subscribe(ctx context.Context, onReload func()) error
}
