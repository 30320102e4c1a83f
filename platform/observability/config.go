package observability

// Config конфигурация OpenTelemetry (traces + metrics + propagator).
// Теги env читаются caarlos0/env в internal/config.
type Config struct {
	// Enabled включить экспорт в OTLP collector
	Enabled bool `env:"OTEL_ENABLED" envDefault:"false"`
	// OTLPEndpoint адрес OTLP gRPC, например "127.0.0.1:4317"; пусто: дефолт по APP_ENV
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// SamplingRatio доля трасс для семплирования (0..1)
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1.0"`
	// ServiceName проставляется бинарём (shop, notifier)
	ServiceName string `env:"-"`
	// DeploymentEnvironment окружение (local, docker)
	DeploymentEnvironment string `env:"-"`
	// ServiceVersion опционально, из build
	ServiceVersion string `env:"SERVICE_VERSION"`
}
