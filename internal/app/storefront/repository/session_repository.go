package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lavka/internal/app/storefront/entity"

	"github.com/redis/go-redis/v9"
)

type sessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository создает Redis репозиторий состояний диалогов
// TTL ограничивает время жизни брошенного диалога: состояние не накапливается
// бесконечно, протухшая сессия просто исчезает
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &sessionRepository{client: client, ttl: ttl}
}

func checkoutKey(chatID int64) string {
	return fmt.Sprintf("checkout_session:%d", chatID)
}

func adminKey(chatID int64) string {
	return fmt.Sprintf("admin_session:%d", chatID)
}

// SaveCheckout сохраняет состояние диалога оформления заказа с TTL
func (r *sessionRepository) SaveCheckout(ctx context.Context, session *entity.CheckoutSession) error {
	return r.save(ctx, checkoutKey(session.ChatID), session)
}

// GetCheckout получает состояние диалога оформления заказа
func (r *sessionRepository) GetCheckout(ctx context.Context, chatID int64) (*entity.CheckoutSession, error) {
	var session entity.CheckoutSession
	if err := r.load(ctx, checkoutKey(chatID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteCheckout удаляет состояние диалога оформления заказа
func (r *sessionRepository) DeleteCheckout(ctx context.Context, chatID int64) error {
	return r.delete(ctx, checkoutKey(chatID))
}

// SaveAdmin сохраняет состояние админского диалога с TTL
func (r *sessionRepository) SaveAdmin(ctx context.Context, session *entity.AdminSession) error {
	return r.save(ctx, adminKey(session.ChatID), session)
}

// GetAdmin получает состояние админского диалога
func (r *sessionRepository) GetAdmin(ctx context.Context, chatID int64) (*entity.AdminSession, error) {
	var session entity.AdminSession
	if err := r.load(ctx, adminKey(chatID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteAdmin удаляет состояние админского диалога
func (r *sessionRepository) DeleteAdmin(ctx context.Context, chatID int64) error {
	return r.delete(ctx, adminKey(chatID))
}

func (r *sessionRepository) save(ctx context.Context, key string, session interface{}) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}

	return nil
}

func (r *sessionRepository) load(ctx context.Context, key string, session interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session from redis: %w", err)
	}

	if err := json.Unmarshal(data, session); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return nil
}

func (r *sessionRepository) delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
