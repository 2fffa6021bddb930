package submitorder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/services/ordersvc"
)

type stubService struct {
	submitted *order.Order
	err       error
}

func (s *stubService) Submit(_ context.Context, o order.Order) (order.Order, error) {
	s.submitted = &o
	if s.err != nil {
		return order.Order{}, s.err
	}

	o.OrderNumber = "ORD-PROD-PHENOMS-20250810-000042"
	o.ShortOrderNumber = "000042"

	return o, nil
}

func validBody() map[string]any {
	return map[string]any{
		"contactInfo": map[string]any{
			"email":     "Jordan@Example.com",
			"firstName": "Jordan",
			"lastName":  "Smith",
			"phone":     "+1 555-0100",
		},
		"items": []map[string]any{{
			"productId":   "tee",
			"productName": "Team Tee",
			"size":        "M",
			"itemPrice":   15.00,
			"quantity":    2,
			"designOptions": []map[string]any{{
				"optionNumber": 1,
				"title":        "Front crest",
				"price":        5.00,
			}},
			"customizationOptions": []map[string]any{{
				"optionNumber": 1,
				"title":        "Name and number",
				"price":        3.00,
				"customName":   "Jordan",
				"customNumber": "23",
			}},
			"totalPrice": 23.00,
		}},
		"totalAmount": 46.00,
		"storeSlug":   "Phenoms",
	}
}

func doSubmit(t *testing.T, svc service, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/orders/submit", strings.NewReader(string(raw)))
	w := httptest.NewRecorder()
	SubmitOrder(w, r, svc)

	return w
}

func TestSubmitOrderSuccess(t *testing.T) {
	svc := &stubService{}

	w := doSubmit(t, svc, validBody())

	require.Equal(t, http.StatusOK, w.Code)

	var resp submitOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ORD-PROD-PHENOMS-20250810-000042", resp.OrderNumber)
	assert.Equal(t, "000042", resp.ShortOrderNumber)

	// Normalization happened before the service saw the order.
	require.NotNil(t, svc.submitted)
	assert.Equal(t, "jordan@example.com", svc.submitted.ContactInfo.Email)
	assert.Equal(t, "phenoms", svc.submitted.StoreSlug)
}

func TestSubmitOrderReportsAllViolations(t *testing.T) {
	body := validBody()
	contact := body["contactInfo"].(map[string]any)
	delete(contact, "email")
	items := body["items"].([]map[string]any)
	custom := items[0]["customizationOptions"].([]map[string]any)
	custom[0]["customName"] = strings.Repeat("x", 31)

	svc := &stubService{}
	w := doSubmit(t, svc, body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.submitted, "invalid submissions never reach the service")

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	require.Len(t, resp.Details, 2)

	fields := []string{resp.Details[0].Field, resp.Details[1].Field}
	assert.Contains(t, fields, "contactInfo.email")
	assert.Contains(t, fields, "items[0].customizationOptions[0].customName")
}

func TestSubmitOrderValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{
			name: "empty item list",
			mutate: func(body map[string]any) {
				body["items"] = []map[string]any{}
			},
		},
		{
			name: "malformed email",
			mutate: func(body map[string]any) {
				body["contactInfo"].(map[string]any)["email"] = "not-an-email"
			},
		},
		{
			name: "malformed phone",
			mutate: func(body map[string]any) {
				body["contactInfo"].(map[string]any)["phone"] = "call me"
			},
		},
		{
			name: "quantity above limit",
			mutate: func(body map[string]any) {
				body["items"].([]map[string]any)[0]["quantity"] = 101
			},
		},
		{
			name: "custom number with letters",
			mutate: func(body map[string]any) {
				items := body["items"].([]map[string]any)
				items[0]["customizationOptions"].([]map[string]any)[0]["customNumber"] = "2a"
			},
		},
		{
			name: "store slug with path characters",
			mutate: func(body map[string]any) {
				body["storeSlug"] = "../etc"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			tt.mutate(body)

			w := doSubmit(t, &stubService{}, body)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "validation failed", resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestSubmitOrderSanitizesMarkup(t *testing.T) {
	body := validBody()
	body["contactInfo"].(map[string]any)["firstName"] = "<script>alert(1)</script>Jordan"

	svc := &stubService{}
	w := doSubmit(t, svc, body)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.submitted)
	assert.Equal(t, "Jordan", svc.submitted.ContactInfo.FirstName)
}

func TestSubmitOrderTamperIsGeneric(t *testing.T) {
	w := doSubmit(t, &stubService{err: ordersvc.ErrPriceTamper}, validBody())

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order verification failed", resp.Error)
	assert.Empty(t, resp.Details, "no catalog detail leaks to the client")
}

func TestSubmitOrderInternalError(t *testing.T) {
	w := doSubmit(t, &stubService{err: errors.New("ledger unavailable")}, validBody())

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed to process order", resp.Error)
}

func TestSubmitOrderMalformedJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/orders/submit", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	SubmitOrder(w, r, &stubService{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
