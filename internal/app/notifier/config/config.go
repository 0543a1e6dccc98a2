package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки приложения Notifier Service
// Notifier слушает события заказов из Kafka, рассылает уведомления
// и прибирает брошенные корзины по расписанию
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Mongo        MongoConfig
	Kafka        KafkaConfig
	CronSchedule CronScheduleConfig
	Notify       NotifyConfig
}

// ServerConfig - настройки healthcheck HTTP сервера
type ServerConfig struct {
	Port string // Порт для /health и /metrics
}

// DatabaseConfig - настройки подключения к PostgreSQL магазина
// Используется для чистки залежавшихся позиций корзин
type DatabaseConfig struct {
	Host     string // Хост PostgreSQL
	Port     string // Порт PostgreSQL
	User     string // Имя пользователя БД
	Password string // Пароль БД
	DBName   string // Имя базы данных
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

// MongoConfig - настройки MongoDB для журнала доставки уведомлений
type MongoConfig struct {
	URI      string // URI подключения (mongodb://host:port)
	Database string // Имя базы данных
}

// KafkaConfig - настройки Kafka для подписки на события заказов
type KafkaConfig struct {
	Brokers  []string // Список брокеров Kafka (формат: host:port)
	Topic    string   // Топик для прослушивания (order_events)
	GroupID  string   // ID группы потребителей для распределения нагрузки
	MinBytes int      // Минимум байт для fetch запроса
	MaxBytes int      // Максимум байт для fetch запроса
}

// CronScheduleConfig - настройки расписания cron задач
type CronScheduleConfig struct {
	PurgeCarts string // Расписание чистки брошенных корзин
}

// NotifyConfig - настройки рассылки уведомлений
type NotifyConfig struct {
	AdminChatIDs []int64       // Чаты администраторов для уведомлений о новых заказах
	StaleCartAge time.Duration // Возраст, после которого позиция корзины считается брошенной
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	adminIDs, err := parseChatIDs(getEnv("ADMIN_CHAT_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_CHAT_IDS value: %w", err)
	}

	staleAge, err := time.ParseDuration(getEnv("STALE_CART_AGE", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_CART_AGE value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lavka"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "lavka_notifications"),
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:    getEnv("KAFKA_TOPIC", "order_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "notifier-group"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		CronSchedule: CronScheduleConfig{
			// По умолчанию чистим брошенные корзины раз в сутки ночью
			PurgeCarts: getEnv("CRON_PURGE_CARTS", "0 4 * * *"),
		},
		Notify: NotifyConfig{
			AdminChatIDs: adminIDs,
			StaleCartAge: staleAge,
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// parseChatIDs разбирает список идентификаторов чатов через запятую
func parseChatIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q is not numeric", part)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
