package handlers

import (
	"net/http"

	"github.com/satheeshds/cashpilot/models"
)

// ListCategories lists the categories visible to a user
// @Summary      List categories
// @Description  Global categories plus the user's own, ordered by description.
// @Tags         categories
// @Produce      json
// @Param        id_usuario  query     int  true  "User ID"
// @Success      200         {object}  Response{data=[]models.Category}
// @Router       /transferencia/categorias [get]
// @Security     BearerAuth
func ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(w, r, "id_usuario")
	if !ok || !authorize(w, r, userID) {
		return
	}
	cats, err := Ledger.Categories(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory creates a user category
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        category  body      models.CategoryInput  true  "Category contents"
// @Success      201       {object}  Response{data=models.Category}
// @Failure      400       {object}  Response{error=string}
// @Failure      409       {object}  Response{error=string}
// @Router       /transferencia/categorias [post]
// @Security     BearerAuth
func CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input models.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.UserID != 0 && !authorize(w, r, input.UserID) {
		return
	}
	c, err := Ledger.CreateCategory(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory renames a user category
// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id_categoria  path      int                   true  "Category ID"
// @Param        category      body      models.CategoryInput  true  "Category contents"
// @Success      200           {object}  Response{data=models.Category}
// @Failure      400           {object}  Response{error=string}
// @Failure      404           {object}  Response{error=string}
// @Failure      409           {object}  Response{error=string}
// @Router       /transferencia/categorias/{id_categoria} [put]
// @Security     BearerAuth
func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id_categoria")
	if !ok {
		return
	}
	var input models.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.UserID != 0 && !authorize(w, r, input.UserID) {
		return
	}
	c, err := Ledger.UpdateCategory(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory deletes a user category
// @Summary      Delete category
// @Description  Refused with 409 while transfers still reference the category.
// @Tags         categories
// @Param        id_categoria  path  int  true  "Category ID"
// @Param        id_usuario    query int  true  "User ID"
// @Success      204
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /transferencia/categorias/{id_categoria} [delete]
// @Security     BearerAuth
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id_categoria")
	if !ok {
		return
	}
	userID, ok := queryID(w, r, "id_usuario")
	if !ok || !authorize(w, r, userID) {
		return
	}
	if err := Ledger.DeleteCategory(r.Context(), id, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
