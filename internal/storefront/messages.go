package storefront

import (
	"errors"
	"strings"

	"github.com/harry1917/basalto-web/internal/domain"
	pkgerrors "github.com/harry1917/basalto-web/pkg/errors"
)

// Shopper-facing copy.
const (
	MsgSoldOut        = "Sold out — pronto re-stock."
	MsgUnavailable    = "Esta talla no está disponible en este momento."
	MsgCartEmpty      = "Tu carrito está vacío."
	MsgOrderEmpty     = "Tu pedido está vacío. Seleccioná al menos un producto."
	MsgMissingFields  = "Completa nombre, teléfono y dirección."
	MsgCardNoLink     = "Orden creada, pero no se pudo generar el link de Wompi. Intentá de nuevo."
	MsgTransferNoLink = "Orden creada. No se pudo abrir WhatsApp automáticamente."
	MsgOrderCreated   = "Orden creada."
	MsgFailurePrefix  = "No se pudo crear la orden: "

	LabelSubmit = "Confirmar y enviar"
	LabelBusy   = "Generando orden…"
	LabelAdd    = "Agregar al pedido"
	LabelAdded  = "Agregado ✓"

	TransferRefHint        = "Se genera al confirmar"
	OrderNumberPlaceholder = "Tu número de orden"
)

// PartialSuccessMessage is the notice for an order created without a
// redirect target, or "" when err is not a partial success.
func PartialSuccessMessage(err error) string {
	var partial *pkgerrors.ErrPartialSuccess
	if !errors.As(err, &partial) {
		return ""
	}
	if partial.PaymentMethod == domain.PaymentMethodTransfer {
		return MsgTransferNoLink
	}
	return MsgCardNoLink
}

// failureMessage is the notice shown when an order could not be created.
func failureMessage(err error) string {
	var remote *pkgerrors.ErrRemote
	if errors.As(err, &remote) && strings.TrimSpace(remote.Body) == "" {
		return MsgFailurePrefix + "Error creando orden"
	}
	var rejected *pkgerrors.ErrOrderRejected
	if errors.As(err, &rejected) && rejected.Detail == "" {
		return MsgFailurePrefix + "No se pudo crear la orden"
	}
	return MsgFailurePrefix + err.Error()
}
