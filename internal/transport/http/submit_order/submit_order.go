package submitorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
	"github.com/teamthreads/storefront/order/internal/service/services/ordersvc"
)

// service is an interface for the service layer.
type service interface {
	Submit(ctx context.Context, o order.Order) (order.Order, error)
}

var (
	phoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9\-\s().]{5,19}$`)

	// stripPolicy neutralizes markup in free-text fields before they can
	// reach downstream HTML emails.
	stripPolicy = bluemonday.StrictPolicy()

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Errors must carry the JSON field names the client submitted.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(fl.Field().String())
	})

	return v
}

// optionInSubmitRequest is one selected design or customization option.
type optionInSubmitRequest struct {
	OptionNumber int     `json:"optionNumber" validate:"gte=0"`
	Title        string  `json:"title"        validate:"max=120"`
	Price        float64 `json:"price"        validate:"gte=0"`
	CustomName   string  `json:"customName"   validate:"max=30"`
	CustomNumber string  `json:"customNumber" validate:"omitempty,numeric,max=4"`
}

func (r *optionInSubmitRequest) toModel() orderitem.OptionSelection {
	return orderitem.OptionSelection{
		OptionNumber: r.OptionNumber,
		Title:        sanitize(r.Title),
		Price:        r.Price,
		CustomName:   sanitize(r.CustomName),
		CustomNumber: strings.TrimSpace(r.CustomNumber),
	}
}

// itemInSubmitRequest represents an item in a submit order request.
type itemInSubmitRequest struct {
	ProductID            string                  `json:"productId"            validate:"required,max=64"`
	ProductName          string                  `json:"productName"          validate:"required,max=120"`
	Size                 string                  `json:"size"                 validate:"required,max=20"`
	SizeUpcharge         float64                 `json:"sizeUpcharge"         validate:"gte=0"`
	ItemPrice            float64                 `json:"itemPrice"            validate:"gte=0"`
	Quantity             int                     `json:"quantity"             validate:"gte=1,lte=100"`
	DesignOptions        []optionInSubmitRequest `json:"designOptions"        validate:"max=10,dive"`
	CustomizationOptions []optionInSubmitRequest `json:"customizationOptions" validate:"max=10,dive"`
	TotalPrice           float64                 `json:"totalPrice"           validate:"gte=0"`
}

func (r *itemInSubmitRequest) toModel() orderitem.OrderItem {
	design := make([]orderitem.OptionSelection, len(r.DesignOptions))
	for i := range r.DesignOptions {
		design[i] = r.DesignOptions[i].toModel()
	}
	custom := make([]orderitem.OptionSelection, len(r.CustomizationOptions))
	for i := range r.CustomizationOptions {
		custom[i] = r.CustomizationOptions[i].toModel()
	}

	return orderitem.OrderItem{
		ProductID:            strings.TrimSpace(r.ProductID),
		ProductName:          sanitize(r.ProductName),
		Size:                 strings.TrimSpace(r.Size),
		SizeUpcharge:         r.SizeUpcharge,
		ItemPrice:            r.ItemPrice,
		Quantity:             r.Quantity,
		DesignOptions:        design,
		CustomizationOptions: custom,
		TotalPrice:           r.TotalPrice,
	}
}

// contactInSubmitRequest represents the customer contact block.
type contactInSubmitRequest struct {
	Email     string `json:"email"     validate:"required,email,max=254"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName"  validate:"required,max=50"`
	Phone     string `json:"phone"     validate:"required,phone"`
}

func (r *contactInSubmitRequest) toModel() order.ContactInfo {
	return order.ContactInfo{
		Email:     strings.ToLower(strings.TrimSpace(r.Email)),
		FirstName: sanitize(r.FirstName),
		LastName:  sanitize(r.LastName),
		Phone:     strings.TrimSpace(r.Phone),
	}
}

// submitOrderRequest represents a submit order request. TotalAmount is only
// a hint: the server recomputes it and discards this value.
type submitOrderRequest struct {
	ContactInfo contactInSubmitRequest `json:"contactInfo" validate:"required"`
	Items       []itemInSubmitRequest  `json:"items"       validate:"required,min=1,max=50,dive"`
	TotalAmount float64                `json:"totalAmount" validate:"gte=0"`
	StoreSlug   string                 `json:"storeSlug"   validate:"omitempty,max=40,alphanum"`
}

func (r *submitOrderRequest) toModel() order.Order {
	items := make([]orderitem.OrderItem, len(r.Items))
	for i := range r.Items {
		items[i] = r.Items[i].toModel()
	}

	return order.Order{
		ContactInfo: r.ContactInfo.toModel(),
		Items:       items,
		StoreSlug:   strings.ToLower(strings.TrimSpace(r.StoreSlug)),
	}
}

func sanitize(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

// fieldError is one reported validation violation.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate reports every violation found, not just the first.
func (r *submitOrderRequest) Validate() []fieldError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return []fieldError{{Field: "", Message: "invalid payload"}}
	}

	result := make([]fieldError, 0, len(violations))
	for _, violation := range violations {
		path := violation.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		result = append(result, fieldError{
			Field:   path,
			Message: messageFor(violation),
		})
	}

	return result
}

func messageFor(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "numeric":
		return "must contain digits only"
	case "min":
		return "must have at least " + violation.Param() + " entries"
	case "max":
		if violation.Kind() == reflect.String {
			return "must be at most " + violation.Param() + " characters"
		}

		return "must have at most " + violation.Param() + " entries"
	case "gte":
		return "must be at least " + violation.Param()
	case "lte":
		return "must be at most " + violation.Param()
	case "alphanum":
		return "must contain letters and digits only"
	default:
		return "is invalid"
	}
}

type submitOrderResponse struct {
	Success          bool   `json:"success"`
	OrderNumber      string `json:"orderNumber"`
	ShortOrderNumber string `json:"shortOrderNumber"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Details []fieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error sending response for submit order", "error", err)
	}
}

// SubmitOrder handles the order submission request.
func SubmitOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := submitOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		slog.Error("Error decoding request body for submit order", "error", err)

		return
	}

	if details := req.Validate(); details != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation failed",
			Details: details,
		})
		slog.Info("Rejected invalid order submission", "violations", len(details))

		return
	}

	submitted, err := service.Submit(r.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, ordersvc.ErrPriceTamper) {
			// Generic message only: the discrepancy detail would reveal
			// catalog internals useful for crafting a successful tamper.
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "order verification failed"})

			return
		}

		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process order"})
		slog.Error("Error processing order submission", "error", err)

		return
	}

	writeJSON(w, http.StatusOK, submitOrderResponse{
		Success:          true,
		OrderNumber:      submitted.OrderNumber,
		ShortOrderNumber: submitted.ShortOrderNumber,
	})
}
