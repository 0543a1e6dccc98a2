//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"lavka/internal/app/storefront/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// BaseURL - адрес запущенного storefront
	// Для E2E тестов сервис должен быть запущен через docker-compose
	BaseURL = "http://localhost:8080"
)

// adminToken берётся из окружения: секрет подписи знает только запущенный сервис
func adminToken(t *testing.T) string {
	token := os.Getenv("E2E_ADMIN_TOKEN")
	if token == "" {
		t.Skip("E2E_ADMIN_TOKEN is not set, skipping admin steps")
	}
	return token
}

func postJSON(t *testing.T, client *http.Client, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// TestFullPurchaseFlow тестирует полный путь покупателя:
// 1. Просмотр каталога
// 2. Добавление товара в корзину
// 3. Просмотр корзины с пересчитанным итогом
// 4. Пошаговый диалог оформления заказа
// 5. Проверка, что корзина опустела
func TestFullPurchaseFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	chatID := time.Now().UnixNano() % 1_000_000_000

	// ==================== Step 1: Browse Catalog ====================
	t.Log("Step 1: Browsing catalog")

	resp, err := client.Get(BaseURL + "/catalog/products?limit=10")
	require.NoError(t, err)

	var products entity.ProductListResponse
	decodeInto(t, resp, &products)
	require.GreaterOrEqual(t, products.Total, 1, "catalog must be seeded for e2e run")

	product := products.Products[0]
	t.Logf("Picked product: %s (%.2f)", product.Name, product.Price)

	// ==================== Step 2: Add To Cart ====================
	t.Log("Step 2: Adding product to cart")

	resp = postJSON(t, client, fmt.Sprintf("%s/chats/%d/cart/items", BaseURL, chatID),
		entity.AddToCartRequest{ProductID: product.ID, Qty: 2})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// ==================== Step 3: View Cart ====================
	t.Log("Step 3: Viewing cart")

	resp, err = client.Get(fmt.Sprintf("%s/chats/%d/cart", BaseURL, chatID))
	require.NoError(t, err)

	var cart entity.Cart
	decodeInto(t, resp, &cart)
	require.Len(t, cart.Items, 1)
	assert.InDelta(t, product.Price*2, cart.Total, 0.001)

	// ==================== Step 4: Checkout Dialogue ====================
	t.Log("Step 4: Walking through checkout dialogue")

	resp = postJSON(t, client, fmt.Sprintf("%s/chats/%d/checkout/start", BaseURL, chatID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var reply entity.FlowReply
	for _, text := range []string{"Ivan Petrov", "+7 900 000-00-00", "courier", "Lenina 1, apt 2", "yes"} {
		resp = postJSON(t, client, fmt.Sprintf("%s/chats/%d/checkout/input", BaseURL, chatID),
			entity.FlowInputRequest{Text: text})
		require.Equal(t, http.StatusOK, resp.StatusCode, "input %q", text)
		decodeInto(t, resp, &reply)
	}

	require.True(t, reply.Done)
	require.NotNil(t, reply.Order, "checkout must end with an order")
	assert.NotEqual(t, uuid.Nil, reply.Order.ID)
	assert.Regexp(t, `-\d{6}-[0-9A-F]{4}$`, reply.Order.OrderNumber)

	t.Logf("Order placed: %s, total %.2f", reply.Order.OrderNumber, reply.Order.Total)

	// ==================== Step 5: Cart Is Empty ====================
	t.Log("Step 5: Verifying cart is empty")

	resp, err = client.Get(fmt.Sprintf("%s/chats/%d/cart", BaseURL, chatID))
	require.NoError(t, err)
	decodeInto(t, resp, &cart)
	assert.Empty(t, cart.Items)
}

// TestAdminOrderFlow тестирует админскую часть жизненного цикла заказа:
// смену статуса и CSV выгрузку. Требует E2E_ADMIN_TOKEN в окружении
func TestAdminOrderFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	token := adminToken(t)

	// ==================== Step 1: List Orders ====================
	t.Log("Step 1: Listing orders")

	req, _ := http.NewRequest(http.MethodGet, BaseURL+"/admin/orders?status=all&limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	require.NoError(t, err)

	var orders entity.OrderListResponse
	decodeInto(t, resp, &orders)
	require.GreaterOrEqual(t, orders.Total, 1, "run TestFullPurchaseFlow first")

	orderID := orders.Orders[0].ID

	// ==================== Step 2: Update Status ====================
	t.Log("Step 2: Updating order status")

	body, _ := json.Marshal(entity.UpdateOrderStatusRequest{Status: entity.OrderStatusPaid})
	req, _ = http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/admin/orders/%s/status", BaseURL, orderID), bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err = client.Do(req)
	require.NoError(t, err)

	var order entity.Order
	decodeInto(t, resp, &order)
	assert.Equal(t, entity.OrderStatusPaid, order.Status)

	// ==================== Step 3: Export CSV ====================
	t.Log("Step 3: Exporting orders CSV")

	req, _ = http.NewRequest(http.MethodGet, BaseURL+"/admin/export/orders?days=30", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}
