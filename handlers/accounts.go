package handlers

import (
	"net/http"

	"github.com/satheeshds/cashpilot/models"
)

// ownAccount loads an account and checks that it belongs to the caller.
// Someone else's account is reported as missing.
func ownAccount(w http.ResponseWriter, r *http.Request) (models.Account, bool) {
	id, ok := pathID(w, r, "id_cuenta")
	if !ok {
		return models.Account{}, false
	}
	a, err := Accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return models.Account{}, false
	}
	if a.UserID != currentUserID(r) {
		writeError(w, http.StatusNotFound, "account not found")
		return models.Account{}, false
	}
	return a, true
}

// ListAccounts lists a user's accounts
// @Summary      List accounts
// @Description  Get the active accounts of a user with their current balances.
// @Tags         accounts
// @Produce      json
// @Param        id_usuario  path      int  true  "User ID"
// @Success      200         {object}  Response{data=[]models.Account}
// @Failure      403         {object}  Response{error=string}
// @Router       /cuentas/usuario/{id_usuario} [get]
// @Security     BearerAuth
func ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id_usuario")
	if !ok || !authorize(w, r, userID) {
		return
	}
	accounts, err := Accounts.ListAccounts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// GetAccount retrieves a single account by ID
// @Summary      Get account
// @Description  Get details and current balance of a specific account.
// @Tags         accounts
// @Produce      json
// @Param        id_cuenta  path      int  true  "Account ID"
// @Success      200        {object}  Response{data=models.Account}
// @Failure      404        {object}  Response{error=string}
// @Router       /cuentas/{id_cuenta} [get]
// @Security     BearerAuth
func GetAccount(w http.ResponseWriter, r *http.Request) {
	a, ok := ownAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateAccount creates a new account
// @Summary      Create account
// @Description  Add a bank account, card, cash or wallet with an optional opening balance.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        account  body      models.AccountInput  true  "Account contents"
// @Success      201      {object}  Response{data=models.Account}
// @Failure      400      {object}  Response{error=string}
// @Router       /cuentas [post]
// @Security     BearerAuth
func CreateAccount(w http.ResponseWriter, r *http.Request) {
	var input models.AccountInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !authorize(w, r, input.UserID) {
		return
	}
	a, err := Accounts.CreateAccount(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAccount updates an existing account
// @Summary      Update account
// @Description  Edit the description, bank, type or color of an account. The balance only changes through transfers.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id_cuenta  path      int                   true  "Account ID"
// @Param        account    body      models.AccountUpdate  true  "Account contents"
// @Success      200        {object}  Response{data=models.Account}
// @Failure      400        {object}  Response{error=string}
// @Failure      404        {object}  Response{error=string}
// @Router       /cuentas/{id_cuenta} [put]
// @Security     BearerAuth
func UpdateAccount(w http.ResponseWriter, r *http.Request) {
	current, ok := ownAccount(w, r)
	if !ok {
		return
	}
	var input models.AccountUpdate
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	a, err := Accounts.UpdateAccount(r.Context(), current.ID, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAccount deactivates an account
// @Summary      Delete account
// @Description  Deactivate an account. Its transfers stay in the history.
// @Tags         accounts
// @Param        id_cuenta  path  int  true  "Account ID"
// @Success      204
// @Failure      404  {object}  Response{error=string}
// @Router       /cuentas/{id_cuenta} [delete]
// @Security     BearerAuth
func DeleteAccount(w http.ResponseWriter, r *http.Request) {
	a, ok := ownAccount(w, r)
	if !ok {
		return
	}
	if err := Accounts.DeactivateAccount(r.Context(), a.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
