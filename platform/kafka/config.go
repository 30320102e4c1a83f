package kafka

import "strings"

// Config содержит конфигурацию подключения к Kafka.
// Доменные топики строятся из TopicPrefix: "<prefix>.order.created" и т.д.
type Config struct {
	// Brokers список брокеров через запятую; пусто: дефолт по APP_ENV
	// (local: localhost:19092, docker: kafka:9092)
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// TopicPrefix общий префикс доменных топиков
	TopicPrefix string `env:"KAFKA_TOPIC_PREFIX" envDefault:"shop"`
	// GroupID consumer group для notifier
	GroupID string `env:"KAFKA_GROUP_ID" envDefault:"shop-notifier"`
}

// DefaultConfig возвращает конфигурацию для локальной разработки
func DefaultConfig() Config {
	return Config{
		Brokers:     []string{"localhost:19092"},
		TopicPrefix: "shop",
		GroupID:     "shop-notifier",
	}
}

// Topic возвращает полное имя топика для типа события ("order.created" -> "shop.order.created")
func (c Config) Topic(eventType string) string {
	prefix := strings.TrimSuffix(c.TopicPrefix, ".")
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// DLQTopic топик для сообщений, которые notifier не смог обработать
func (c Config) DLQTopic() string {
	return c.Topic("notifier.dlq")
}
