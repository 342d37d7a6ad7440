package handlers

import (
	"net/http"

	"github.com/satheeshds/cashpilot/models"
)

// GetUser returns a user's profile
// @Summary      Get profile
// @Tags         users
// @Produce      json
// @Param        id_usuario  path      int  true  "User ID"
// @Success      200         {object}  Response{data=models.User}
// @Failure      403         {object}  Response{error=string}
// @Failure      404         {object}  Response{error=string}
// @Router       /usuarios/{id_usuario} [get]
// @Security     BearerAuth
func GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id_usuario")
	if !ok || !authorize(w, r, id) {
		return
	}
	u, err := Users.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateUser edits a user's profile
// @Summary      Update profile
// @Description  Change the display name and email. Username and password are not editable here.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id_usuario  path      int                  true  "User ID"
// @Param        profile     body      models.ProfileInput  true  "Profile contents"
// @Success      200         {object}  Response{data=models.User}
// @Failure      400         {object}  Response{error=string}
// @Failure      409         {object}  Response{error=string}
// @Router       /usuarios/{id_usuario} [put]
// @Security     BearerAuth
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id_usuario")
	if !ok || !authorize(w, r, id) {
		return
	}
	var input models.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	u, err := Users.UpdateProfile(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
