package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/orders"
	"github.com/harry1917/basalto-web/internal/pricing"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/pkg/errors"
)

// Country is the only shipping destination.
const Country = "El Salvador"

// DefaultItemTitle names items submitted without a title.
const DefaultItemTitle = "Camisa cuello chino"

// OrderNumberPrefix starts every order number (BAS-YYYYMMDD-NNNN).
const OrderNumberPrefix = "BAS"

// ShippingFlat is charged once per order.
var ShippingFlat = decimal.RequireFromString("3.00")

// PreorderNotice is returned with every order and quoted in the chat message.
const PreorderNotice = "Pre-order — producción por lote.\n" +
	"Tu pedido se confecciona especialmente para vos.\n" +
	"Producción: 10–15 días.\n" +
	"Envío: San Salvador 3 días · departamentos 4–5 días hábiles.\n"

const transferInfo = "Transferencia bancaria:\n" +
	"Banco: BANCO AGRICOLA\n" +
	"Cuenta de ahorro: 3550507559\n" +
	"A nombre de: WILDER DIAZ\n" +
	"Referencia: %s\n" +
	"Enviá tu comprobante por este chat para confirmar tu pre-order.\n"

const numberAttempts = 10

// PaymentLinker issues card payment links for orders.
type PaymentLinker interface {
	CreatePaymentLink(ctx context.Context, orderNumber string, amount decimal.Decimal) (string, error)
}

// OrderService validates and stores storefront orders.
type OrderService struct {
	repos          *repository.Repositories
	links          PaymentLinker
	whatsAppNumber string
	now            func() time.Time
	logger         *zap.Logger

	// rand is shared by concurrent requests; draw through numberSuffix.
	randMu sync.Mutex
	rand   *rand.Rand
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithClock overrides the clock used for order numbers.
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

// WithRandSource makes order number suffixes deterministic.
func WithRandSource(src rand.Source) OrderServiceOption {
	return func(s *OrderService) { s.rand = rand.New(src) }
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, links PaymentLinker, whatsAppNumber string, logger *zap.Logger, opts ...OrderServiceOption) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		repos:          repos,
		links:          links,
		whatsAppNumber: whatsAppNumber,
		now:            time.Now,
		rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type cleanItem struct {
	sku      string
	title    string
	sleeve   string
	color    string
	size     string
	fabric   string
	img      string
	qty      int
	rawPrice string
}

// CreateOrder validates a submission, takes stock and stores the order. Card
// orders get a payment link. A payment provider failure leaves the order
// pending and returns *errors.ErrPaymentLink.
func (s *OrderService) CreateOrder(ctx context.Context, req *orders.CreateOrderRequest) (*orders.CreateOrderResponse, error) {
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = Country
	}
	if !strings.EqualFold(country, Country) {
		return nil, &errors.ErrValidation{Message: "Solo enviamos a El Salvador"}
	}

	method := domain.ParsePaymentMethod(string(req.PaymentMethod))
	if !method.IsValid() {
		return nil, &errors.ErrValidation{Message: "Método de pago inválido"}
	}

	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)
	address := strings.TrimSpace(req.AddressLine1)
	if fullName == "" || phone == "" || address == "" {
		return nil, &errors.ErrValidation{Message: "Faltan datos de envío"}
	}

	if len(req.Items) == 0 {
		return nil, &errors.ErrValidation{Message: "Carrito vacío"}
	}

	cleaned := make([]cleanItem, 0, len(req.Items))
	needed := make(map[string]int)
	for _, it := range req.Items {
		size := strings.ToUpper(strings.TrimSpace(it.Size))
		if !validSize(size) {
			return nil, &errors.ErrValidation{Message: "Talla inválida"}
		}
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		sku := strings.TrimSpace(it.SKU)
		if sku != "" {
			needed[sku] += qty
		}
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = DefaultItemTitle
		}
		cleaned = append(cleaned, cleanItem{
			sku:      sku,
			title:    title,
			sleeve:   strings.TrimSpace(it.Sleeve),
			color:    strings.TrimSpace(it.Color),
			size:     size,
			fabric:   strings.TrimSpace(it.Fabric),
			img:      strings.TrimSpace(it.Img),
			qty:      qty,
			rawPrice: it.UnitPrice,
		})
	}

	variants, err := s.checkStock(ctx, needed)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	items := make([]*domain.OrderItem, 0, len(cleaned))
	for _, row := range cleaned {
		item := &domain.OrderItem{
			SKU:    row.sku,
			Title:  row.title,
			Sleeve: row.sleeve,
			Color:  row.color,
			Size:   row.size,
			Fabric: row.fabric,
			Img:    row.img,
			Qty:    row.qty,
		}
		if v, ok := variants[row.sku]; ok {
			// Catalog data wins over what the client sent.
			id := v.ID
			item.VariantID = &id
			item.UnitPrice = v.Price
			item.Title = v.Title
			item.Sleeve = v.Sleeve
			item.Color = v.Color
			item.Fabric = v.Fabric
			item.Img = v.Img
		} else {
			item.UnitPrice = cleanMoney(row.rawPrice)
		}
		if !item.UnitPrice.IsPositive() {
			return nil, &errors.ErrValidation{Message: "Precio inválido"}
		}
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty)))
		subtotal = subtotal.Add(item.LineTotal)
		items = append(items, item)
	}

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNumber:   number,
		Status:        domain.OrderStatusPending,
		PaymentMethod: method,
		Country:       Country,
		FullName:      fullName,
		Phone:         phone,
		AddressLine1:  address,
		AddressLine2:  strings.TrimSpace(req.AddressLine2),
		Department:    strings.TrimSpace(req.Department),
		City:          strings.TrimSpace(req.City),
		Notes:         strings.TrimSpace(req.Notes),
		Subtotal:      subtotal,
		Shipping:      ShippingFlat,
		Total:         subtotal.Add(ShippingFlat),
	}

	s.logger.Info("Creating order",
		zap.String("order_number", number),
		zap.String("payment_method", string(method)),
		zap.Int("item_count", len(items)),
	)
	if err := s.repos.Order.Place(ctx, order, items, needed); err != nil {
		s.logger.Error("Failed to place order", zap.String("order_number", number), zap.Error(err))
		return nil, err
	}
	s.recordEvent(ctx, order.ID, "order_created", map[string]interface{}{
		"status":         order.Status,
		"payment_method": order.PaymentMethod,
		"total":          pricing.Format(order.Total),
	})

	if method == domain.PaymentMethodCard {
		if err := s.attachPaymentLink(ctx, order); err != nil {
			return nil, err
		}
	}

	return s.Response(order, items), nil
}

func (s *OrderService) checkStock(ctx context.Context, needed map[string]int) (map[string]*domain.Variant, error) {
	if len(needed) == 0 {
		return map[string]*domain.Variant{}, nil
	}
	skus := make([]string, 0, len(needed))
	for sku := range needed {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	variants, err := s.repos.Variant.GetActiveBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	var missing []string
	for _, sku := range skus {
		if _, ok := variants[sku]; !ok {
			missing = append(missing, sku)
		}
	}
	if len(missing) > 0 {
		return nil, &errors.ErrValidation{Message: "SKU no existe o inactivo: " + strings.Join(missing, ", ")}
	}

	for _, sku := range skus {
		v := variants[sku]
		if v.Inventory < needed[sku] {
			return nil, &errors.ErrValidation{
				Message: fmt.Sprintf("Sin stock para %s (stock %d, requerido %d)", sku, v.Inventory, needed[sku]),
			}
		}
	}
	return variants, nil
}

func (s *OrderService) attachPaymentLink(ctx context.Context, order *domain.Order) error {
	link, err := s.links.CreatePaymentLink(ctx, order.OrderNumber, order.Total)
	if err != nil {
		s.logger.Warn("Payment link failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return &errors.ErrPaymentLink{OrderNumber: order.OrderNumber, Detail: err.Error()}
	}

	status := domain.OrderStatusPending
	if link != "" {
		status = domain.OrderStatusPaymentLinkCreated
	}
	if err := s.repos.Order.UpdatePayment(ctx, order.ID, link, status); err != nil {
		return fmt.Errorf("store payment link: %w", err)
	}
	order.PaymentLink = link
	order.Status = status
	if link != "" {
		s.recordEvent(ctx, order.ID, "payment_link_created", map[string]interface{}{"payment_link": link})
	}
	return nil
}

func (s *OrderService) nextOrderNumber(ctx context.Context) (string, error) {
	day := s.now().Format("20060102")
	for i := 0; i < numberAttempts; i++ {
		n := fmt.Sprintf("%s-%s-%04d", OrderNumberPrefix, day, s.numberSuffix())
		exists, err := s.repos.Order.NumberExists(ctx, n)
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !exists {
			return n, nil
		}
	}
	return "", &errors.ErrConflict{Message: "could not allocate an order number for " + day}
}

func (s *OrderService) numberSuffix() int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return 1000 + s.rand.Intn(9000)
}

// Response rebuilds the client answer for a stored order; replays of the
// same submission get the same body.
func (s *OrderService) Response(order *domain.Order, items []*domain.OrderItem) *orders.CreateOrderResponse {
	ok := true
	return &orders.CreateOrderResponse{
		OK:             &ok,
		OrderNumber:    order.OrderNumber,
		PaymentMethod:  order.PaymentMethod,
		Subtotal:       pricing.Format(order.Subtotal),
		Shipping:       pricing.Format(order.Shipping),
		Total:          pricing.Format(order.Total),
		PaymentLink:    order.PaymentLink,
		WhatsAppURL:    WhatsAppURL(s.whatsAppNumber, BuildMessage(order, items)),
		PreorderNotice: PreorderNotice,
	}
}

// UpdateStatus moves an order along its lifecycle. A nil trackingCode keeps
// the stored one. Re-applying the current status only updates tracking.
func (s *OrderService) UpdateStatus(ctx context.Context, number string, to domain.OrderStatus, trackingCode *string) (*domain.Order, error) {
	if !to.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid status", Fields: map[string]string{"status": string(to)}}
	}
	order, err := s.repos.Order.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.Status != to && !order.Status.CanTransitionTo(to) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: to}
	}

	if err := s.repos.Order.UpdateStatus(ctx, order.ID, to, trackingCode); err != nil {
		return nil, err
	}

	data := map[string]interface{}{"from": order.Status, "to": to}
	if trackingCode != nil {
		data["tracking_code"] = *trackingCode
		order.TrackingCode = *trackingCode
	}
	s.recordEvent(ctx, order.ID, "status_change", data)

	order.Status = to
	return order, nil
}

// ConfirmPayment marks an order paid when it is still waiting for payment.
// It reports whether anything changed.
func (s *OrderService) ConfirmPayment(ctx context.Context, number string) (bool, error) {
	order, err := s.repos.Order.GetByNumber(ctx, number)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return false, nil
		}
		return false, err
	}
	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusPaymentLinkCreated {
		return false, nil
	}
	if err := s.repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid, nil); err != nil {
		return false, err
	}
	s.recordEvent(ctx, order.ID, "payment_confirmed", map[string]interface{}{"from": order.Status})
	s.logger.Info("Order paid", zap.String("order_number", number))
	return true, nil
}

func (s *OrderService) recordEvent(ctx context.Context, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{OrderID: orderID, EventType: eventType, EventData: data}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func validSize(size string) bool {
	for _, s := range catalog.DefaultSizeLadder {
		if s == size {
			return true
		}
	}
	return false
}

// cleanMoney reads a client price such as "$30", "Q30" or "30,00".
func cleanMoney(raw string) decimal.Decimal {
	s := pricing.CleanUnitPrice(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// BuildMessage renders the chat message summarizing an order.
func BuildMessage(order *domain.Order, items []*domain.OrderItem) string {
	var lines []string
	lines = append(lines, "Pedido BASALTO: "+order.OrderNumber, "")
	for _, it := range items {
		skuText := ""
		if it.VariantID != nil && it.SKU != "" {
			skuText = " | SKU " + it.SKU
		}
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | Talla %s | x%d — $%s%s",
			it.Title, it.Sleeve, it.Color, it.Size, it.Qty, pricing.Format(it.UnitPrice), skuText))
	}
	lines = append(lines,
		"",
		"Subtotal: $"+pricing.Format(order.Subtotal),
		"Envío (El Salvador): $"+pricing.Format(order.Shipping),
		"Total: $"+pricing.Format(order.Total),
		"",
		"Datos de envío:",
		"Nombre: "+order.FullName,
		"Tel: "+order.Phone,
		"Dirección: "+strings.TrimSpace(order.AddressLine1+" "+order.AddressLine2),
	)
	if order.City != "" {
		lines = append(lines, "Ciudad/Municipio: "+order.City)
	}
	if order.Department != "" {
		lines = append(lines, "Departamento: "+order.Department)
	}
	lines = append(lines,
		"",
		"Método de pago: "+strings.ToUpper(string(order.PaymentMethod)),
		"",
		strings.TrimSpace(PreorderNotice),
	)
	if order.PaymentMethod == domain.PaymentMethodTransfer {
		lines = append(lines, "", strings.TrimSpace(fmt.Sprintf(transferInfo, order.OrderNumber)))
	}
	if order.PaymentLink != "" {
		lines = append(lines, "", "Link de pago: "+order.PaymentLink)
	}
	return strings.Join(lines, "\n")
}

// WhatsAppURL builds the chat deep link carrying message.
func WhatsAppURL(number, message string) string {
	// QueryEscape leaves only unreserved characters; spaces must be %20 here.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + number + "?text=" + text
}
