package handlers

import (
	"net/http"
	"time"

	"github.com/satheeshds/cashpilot/models"
)

const dateLayout = "2006-01-02"

type transferBody struct {
	Datos models.TransferInput `json:"datosTransferencia"`
}

type paymentBody struct {
	Datos models.PaymentInput `json:"datosPago"`
}

type receiveBody struct {
	Datos models.ReceiveInput `json:"datosRecepcion"`
}

// CreateTransfer records a transfer of any kind
// @Summary      Create transfer
// @Description  Validate and atomically record a transfer, payment or receipt, applying balance changes.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        transfer  body      transferBody  true  "Transfer contents"
// @Success      201       {object}  Response{data=models.Transfer}
// @Failure      400       {object}  Response{error=string}
// @Failure      404       {object}  Response{error=string}
// @Router       /transferencia [post]
// @Security     BearerAuth
func CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var body transferBody
	if !decodeJSON(w, r, &body) {
		return
	}
	createTransfer(w, r, body.Datos)
}

// CreatePayment records a payment to a third party
// @Summary      Pay a third party
// @Description  Debit amount plus fee from the source account and classify the payment by category.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        payment  body      paymentBody  true  "Payment contents"
// @Success      201      {object}  Response{data=models.Transfer}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /transferencia/pago-tercero [post]
// @Security     BearerAuth
func CreatePayment(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	createTransfer(w, r, body.Datos.TransferInput())
}

// ReceiveMoney records money received from a third party
// @Summary      Receive money
// @Description  Credit the amount to the destination account.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        receipt  body      receiveBody  true  "Receipt contents"
// @Success      201      {object}  Response{data=models.Transfer}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /transferencia/recibir-dinero [post]
// @Security     BearerAuth
func ReceiveMoney(w http.ResponseWriter, r *http.Request) {
	var body receiveBody
	if !decodeJSON(w, r, &body) {
		return
	}
	createTransfer(w, r, body.Datos.TransferInput())
}

func createTransfer(w http.ResponseWriter, r *http.Request, in models.TransferInput) {
	if in.UserID != 0 && !authorize(w, r, in.UserID) {
		return
	}
	t, err := Ledger.Transfer(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTransfers lists a user's transfer history
// @Summary      Transfer history
// @Description  All transfers initiated by the user, newest first, with account, bank and category labels.
// @Tags         transfers
// @Produce      json
// @Param        id_usuario  path      int  true  "User ID"
// @Success      200         {object}  Response{data=[]models.TransferDetail}
// @Router       /transferencia/usuario/{id_usuario} [get]
// @Security     BearerAuth
func ListTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id_usuario")
	if !ok || !authorize(w, r, userID) {
		return
	}
	history, err := Ledger.History(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// GetSummary returns spending by category
// @Summary      Spending by category
// @Description  Sum of amount plus fee of the user's payments per category, with each category's share of the total.
// @Tags         transfers
// @Produce      json
// @Param        id_usuario  path      int     true   "User ID"
// @Param        desde       query     string  false  "From date, inclusive (YYYY-MM-DD)"
// @Param        hasta       query     string  false  "To date, inclusive (YYYY-MM-DD)"
// @Success      200         {object}  Response{data=models.Breakdown}
// @Failure      400         {object}  Response{error=string}
// @Router       /transferencia/usuario/{id_usuario}/resumen [get]
// @Security     BearerAuth
func GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id_usuario")
	if !ok || !authorize(w, r, userID) {
		return
	}
	from, ok := queryDate(w, r, "desde")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "hasta")
	if !ok {
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		writeError(w, http.StatusBadRequest, "hasta must not be before desde")
		return
	}

	summary, err := Ledger.Summary(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// queryDate parses an optional YYYY-MM-DD query parameter as a UTC day.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a date (YYYY-MM-DD)")
		return nil, false
	}
	return &d, true
}
