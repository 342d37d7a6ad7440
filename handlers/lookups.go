package handlers

import (
	"net/http"

	"github.com/satheeshds/cashpilot/models"
)

// ListBanks lists the known banks
// @Summary      List banks
// @Tags         lookups
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Lookup}
// @Router       /bancos [get]
func ListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := Accounts.ListBanks(r.Context())
	writeLookups(w, r, banks, err)
}

// ListAccountTypes lists the account types
// @Summary      List account types
// @Tags         lookups
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Lookup}
// @Router       /tipos-cuenta [get]
func ListAccountTypes(w http.ResponseWriter, r *http.Request) {
	types, err := Accounts.ListAccountTypes(r.Context())
	writeLookups(w, r, types, err)
}

func writeLookups(w http.ResponseWriter, r *http.Request, rows []models.Lookup, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.Lookup{}
	}
	writeJSON(w, http.StatusOK, rows)
}
